package animotion

import (
	"fmt"
	"strconv"

	"github.com/lixenwraith/animotion/clip"
	"github.com/lixenwraith/animotion/clip/category"
	"github.com/lixenwraith/animotion/host"
	"github.com/lixenwraith/animotion/sched/events"
)

// newCategoryClip is the shared construction path every plain category
// factory uses: resolve the bank entry, layer configs per
// clip.ResolveConfig's precedence (spec.md Design Note §9), construct,
// and bind its generator.
func (r *Root) newCategoryClip(cat category.Tag, element host.Element, effect string, args []any, authored clip.Config) (*clip.Clip, error) {
	entry, ok := r.bank.Lookup(cat, effect)
	if !ok {
		return nil, fmt.Errorf("animotion: no %s effect registered for category %s", effect, cat)
	}
	cfg := clip.ResolveConfig(r.cfg.ClassDefaults, entry, authored)

	c, err := clip.New(cat, element, effect, args, cfg)
	if err != nil {
		return nil, err
	}
	if err := c.BindGenerator(entry); err != nil {
		return nil, err
	}
	r.wireClipEvents(c, cat)

	if cat == category.Scroller && effect == "scroll-self" {
		r.wireScrollAnchor(c, element)
	}
	return c, nil
}

// wireClipEvents pushes ClipStarted/ClipFinished/RoadblockStalled onto
// the Root's event queue so animotion-debugger (or any other consumer
// of Root.Events()) can observe playback without participating in it,
// and counts in-progress clips and roadblock stalls in the status
// registry (spec.md §4.5 "added").
func (r *Root) wireClipEvents(c *clip.Clip, cat category.Tag) {
	payload := func() *events.ClipPayload {
		return &events.ClipPayload{ClipID: strconv.FormatUint(c.ID, 10), Category: cat.String()}
	}
	started := func() {
		r.status.Ints.Get("clip.in_progress").Add(1)
		r.queue.Push(events.Event{Type: events.ClipStarted, Payload: payload()})
	}
	finished := func() {
		r.status.Ints.Get("clip.in_progress").Add(-1)
		r.queue.Push(events.Event{Type: events.ClipFinished, Payload: payload()})
	}
	c.OnForwardStart(started)
	c.OnBackwardStart(started)
	c.OnForwardFinish(finished)
	c.OnBackwardFinish(finished)
	c.OnStall(func() {
		r.status.Ints.Get("clip.roadblock_stalls").Add(1)
		r.queue.Push(events.Event{Type: events.RoadblockStalled, Payload: payload()})
	})
}

// wireScrollAnchor pushes element on forward start and pops it on
// backward finish (spec.md §4.5). The pop only updates the stack:
// rewinding a ~scroll-self clip does not scroll back to the prior anchor.
func (r *Root) wireScrollAnchor(c *clip.Clip, element host.Element) {
	c.OnForwardStart(func() { r.scroll.push(element) })
	c.OnBackwardFinish(func() { r.scroll.pop() })
}

func (r *Root) NewEntrance(element host.Element, effect string, args []any, cfg clip.Config) (*clip.Clip, error) {
	return r.newCategoryClip(category.Entrance, element, effect, args, cfg)
}

func (r *Root) NewExit(element host.Element, effect string, args []any, cfg clip.Config) (*clip.Clip, error) {
	return r.newCategoryClip(category.Exit, element, effect, args, cfg)
}

func (r *Root) NewEmphasis(element host.Element, effect string, args []any, cfg clip.Config) (*clip.Clip, error) {
	return r.newCategoryClip(category.Emphasis, element, effect, args, cfg)
}

func (r *Root) NewMotion(element host.Element, effect string, args []any, cfg clip.Config) (*clip.Clip, error) {
	return r.newCategoryClip(category.Motion, element, effect, args, cfg)
}

func (r *Root) NewTransition(element host.Element, effect string, args []any, cfg clip.Config) (*clip.Clip, error) {
	return r.newCategoryClip(category.Transition, element, effect, args, cfg)
}

func (r *Root) NewScroller(element host.Element, effect string, args []any, cfg clip.Config) (*clip.Clip, error) {
	return r.newCategoryClip(category.Scroller, element, effect, args, cfg)
}

// Endpoint names one end of a connector (spec.md §6 "Connector element
// contract").
type Endpoint struct {
	Element  host.Element
	X, Y     string
}

// NewConnectorSetter builds a zero-duration clip that restashes a
// connector's endpoints (spec.md §4.2 "ConnectorSetterClip"; the
// factory shape diverges from the other categories per spec.md §6:
// ConnectorSetter(connectorElem, pointA, pointB, connectorConfig?)).
// The returned clip owns conn; pass it to NewConnectorEntrance/Exit for
// the same logical connector.
func (r *Root) NewConnectorSetter(connectorElem host.Element, pointA, pointB Endpoint, cfg clip.Config) (*clip.Clip, *clip.Connector, error) {
	conn := clip.NewConnector(pointA.Element, pointA.X, pointA.Y, pointB.Element, pointB.X, pointB.Y, nil)

	c, err := clip.New(category.ConnectorSetter, connectorElem, "connector-setter", nil, cfg)
	if err != nil {
		return nil, nil, err
	}
	c.SetConnector(conn)

	// ConnectorSetter has no author-supplied effect (spec.md §6); bind a
	// no-op keyframe pair purely to stand up the host animation pair
	// addBlock/phase tracking relies on.
	noop := clip.BankEntry{Shape: clip.ShapeKeyframes, Keyframes: func(*clip.Clip, []any) ([]host.Keyframe, []host.Keyframe) {
		return nil, nil
	}}
	if err := c.BindGenerator(noop); err != nil {
		return nil, nil, err
	}
	r.wireClipEvents(c, category.ConnectorSetter)
	return c, conn, nil
}

func (r *Root) NewConnectorEntrance(conn *clip.Connector, element host.Element, effect string, args []any, cfg clip.Config) (*clip.Clip, error) {
	c, err := r.newCategoryClip(category.ConnectorEntrance, element, effect, args, cfg)
	if err != nil {
		return nil, err
	}
	c.SetConnector(conn)
	return c, nil
}

func (r *Root) NewConnectorExit(conn *clip.Connector, element host.Element, effect string, args []any, cfg clip.Config) (*clip.Clip, error) {
	c, err := r.newCategoryClip(category.ConnectorExit, element, effect, args, cfg)
	if err != nil {
		return nil, err
	}
	c.SetConnector(conn)
	return c, nil
}
