package clip

import (
	"sync"
	"time"

	"github.com/lixenwraith/animotion/clip/category"
	"github.com/lixenwraith/animotion/host"
	"github.com/lixenwraith/animotion/sched/core"
)

// connectorTrackInterval is the polling period for continuous endpoint
// tracking, matched to pollInterval's RAF-equivalent granularity.
const connectorTrackInterval = pollInterval

// Connector is the default category.Connector implementation: two
// tracked endpoints plus an optional continuous-update loop (spec.md
// §6 "Connector element contract"). Host UI code supplies the actual
// SVG line element and is responsible for rendering; this struct only
// tracks the state the scheduler reads and writes.
type Connector struct {
	mu sync.Mutex

	pointAEl              host.Element
	pointAX, pointAY      string
	pointBEl              host.Element
	pointBX, pointBY      string
	trackingEnabled       bool
	stopTracking          chan struct{}
	onUpdate              func()
}

// NewConnector creates a connector with both endpoints set.
func NewConnector(aEl host.Element, aX, aY string, bEl host.Element, bX, bY string, onUpdate func()) *Connector {
	return &Connector{
		pointAEl: aEl, pointAX: aX, pointAY: aY,
		pointBEl: bEl, pointBX: bX, pointBY: bY,
		onUpdate: onUpdate,
	}
}

func (c *Connector) PointA() (host.Element, string, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pointAEl, c.pointAX, c.pointAY
}

func (c *Connector) PointB() (host.Element, string, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pointBEl, c.pointBX, c.pointBY
}

func (c *Connector) SetPointA(el host.Element, x, y string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pointAEl, c.pointAX, c.pointAY = el, x, y
}

func (c *Connector) SetPointB(el host.Element, x, y string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pointBEl, c.pointBX, c.pointBY = el, x, y
}

func (c *Connector) PointTrackingEnabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.trackingEnabled
}

func (c *Connector) SetPointTrackingEnabled(v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.trackingEnabled = v
}

// UpdateEndpoints recomputes the connector's line from its two current
// bounding boxes. The actual geometry math is the host UI's job
// (spec.md Non-goals "layout measurement"); this calls back through
// onUpdate, which the host-side connector widget supplies.
func (c *Connector) UpdateEndpoints() {
	c.mu.Lock()
	fn := c.onUpdate
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// ContinuouslyUpdateEndpoints begins a background loop calling
// UpdateEndpoints on every host animation frame tick until
// CancelContinuousUpdates is called.
func (c *Connector) ContinuouslyUpdateEndpoints() {
	c.mu.Lock()
	if c.stopTracking != nil {
		c.mu.Unlock()
		return
	}
	stop := make(chan struct{})
	c.stopTracking = stop
	c.mu.Unlock()

	core.Go(func() {
		ticker := time.NewTicker(connectorTrackInterval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				c.UpdateEndpoints()
			}
		}
	})
}

func (c *Connector) CancelContinuousUpdates() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopTracking != nil {
		close(c.stopTracking)
		c.stopTracking = nil
	}
}

var _ category.Connector = (*Connector)(nil)
