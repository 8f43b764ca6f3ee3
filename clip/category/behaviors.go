package category

import (
	"errors"

	"github.com/lixenwraith/animotion/host"
)

// Sentinel errors a Behavior returns; Clip wraps these into the
// location-carrying animerr types before surfacing them to callers.
var (
	ErrInvalidEntrance  = errors.New("element is not hidden by a recognized hide class")
	ErrInvalidExit      = errors.New("element is already hidden")
	ErrInvalidConnector = errors.New("clip target is not a connector element")
)

const stashHideClass = "hideClass"

// plainBehavior covers Emphasis and Scroller: "no category-specific
// lifecycle beyond modifiers" (spec.md §4.2).
type plainBehavior struct{}

func (plainBehavior) Initialize(Context) error          { return nil }
func (plainBehavior) OnStartForward(Context) error       { return nil }
func (plainBehavior) OnFinishForward(Context) error      { return nil }
func (plainBehavior) OnStartBackward(Context) error      { return nil }
func (plainBehavior) OnFinishBackward(Context) error     { return nil }
func (plainBehavior) ForceDurationZero() bool            { return false }
func (plainBehavior) ForceStartsNextClipToo() bool        { return false }
func (plainBehavior) DefaultComposite() host.Composite   { return host.CompositeReplace }

// entranceBehavior removes the hiding class at forward-start and
// restores it at backward-finish (spec.md §4.2).
type entranceBehavior struct{}

func (entranceBehavior) Initialize(ctx Context) error {
	switch ctx.HideNowType() {
	case HideDisplayNone:
		ctx.AddClass(DisplayNoneClass)
	case HideVisibilityHidden:
		ctx.AddClass(VisibilityHiddenClass)
	}
	return nil
}

func (entranceBehavior) OnStartForward(ctx Context) error {
	switch {
	case ctx.HasClass(DisplayNoneClass):
		ctx.SetStash(stashHideClass, DisplayNoneClass)
		ctx.RemoveClass(DisplayNoneClass)
	case ctx.HasClass(VisibilityHiddenClass):
		ctx.SetStash(stashHideClass, VisibilityHiddenClass)
		ctx.RemoveClass(VisibilityHiddenClass)
	default:
		return ErrInvalidEntrance
	}
	return nil
}

func (entranceBehavior) OnFinishForward(Context) error { return nil }

func (entranceBehavior) OnStartBackward(Context) error { return nil }

func (entranceBehavior) OnFinishBackward(ctx Context) error {
	if cls, ok := ctx.Stash(stashHideClass); ok {
		ctx.AddClass(cls)
	}
	return nil
}

func (entranceBehavior) ForceDurationZero() bool          { return false }
func (entranceBehavior) ForceStartsNextClipToo() bool     { return false }
func (entranceBehavior) DefaultComposite() host.Composite { return host.CompositeReplace }

// exitBehavior is symmetric to entranceBehavior: it hides at
// forward-finish and unhides at backward-start.
type exitBehavior struct{}

func (exitBehavior) Initialize(Context) error { return nil }

func (exitBehavior) OnStartForward(ctx Context) error {
	if ctx.HasClass(DisplayNoneClass) || ctx.HasClass(VisibilityHiddenClass) {
		return ErrInvalidExit
	}
	return nil
}

func (exitBehavior) OnFinishForward(ctx Context) error {
	switch ctx.ExitHideType() {
	case HideDisplayNone:
		ctx.AddClass(DisplayNoneClass)
	case HideVisibilityHidden:
		ctx.AddClass(VisibilityHiddenClass)
	}
	return nil
}

func (exitBehavior) OnStartBackward(ctx Context) error {
	switch ctx.ExitHideType() {
	case HideDisplayNone:
		ctx.RemoveClass(DisplayNoneClass)
	case HideVisibilityHidden:
		ctx.RemoveClass(VisibilityHiddenClass)
	}
	return nil
}

func (exitBehavior) OnFinishBackward(Context) error { return nil }

func (exitBehavior) ForceDurationZero() bool          { return false }
func (exitBehavior) ForceStartsNextClipToo() bool     { return false }
func (exitBehavior) DefaultComposite() host.Composite { return host.CompositeReplace }

const (
	stashPointAOffset = "pointA"
	stashPointBOffset = "pointB"
	stashTracking     = "tracking"
)

// connectorSetterBehavior backs a zero-duration clip that only mutates
// pointer state (spec.md §4.2). Forward start stashes the connector's
// endpoint offsets and its point-tracking flag; backward start restores
// the tracking flag only. The endpoints are never restored, and the
// endpoint elements are not stashed.
type connectorSetterBehavior struct{}

func (connectorSetterBehavior) Initialize(Context) error { return nil }

func (connectorSetterBehavior) OnStartForward(ctx Context) error {
	conn := ctx.Connector()
	if conn == nil {
		return ErrInvalidConnector
	}
	aEl, aX, aY := conn.PointA()
	bEl, bX, bY := conn.PointB()
	_ = aEl
	_ = bEl
	ctx.SetStash(stashPointAOffset, aX+","+aY)
	ctx.SetStash(stashPointBOffset, bX+","+bY)
	if conn.PointTrackingEnabled() {
		ctx.SetStash(stashTracking, "1")
	} else {
		ctx.SetStash(stashTracking, "0")
	}
	return nil
}

func (connectorSetterBehavior) OnFinishForward(Context) error { return nil }

func (connectorSetterBehavior) OnStartBackward(ctx Context) error {
	conn := ctx.Connector()
	if conn == nil {
		return ErrInvalidConnector
	}
	if tracking, ok := ctx.Stash(stashTracking); ok {
		conn.SetPointTrackingEnabled(tracking == "1")
	}
	return nil
}

func (connectorSetterBehavior) OnFinishBackward(Context) error { return nil }

func (connectorSetterBehavior) ForceDurationZero() bool          { return true }
func (connectorSetterBehavior) ForceStartsNextClipToo() bool     { return true }
func (connectorSetterBehavior) DefaultComposite() host.Composite { return host.CompositeReplace }

// connectorEnterBehavior unhides the connector and begins continuous
// endpoint tracking when entering; cancels tracking and hides when
// rewound past (spec.md §4.2).
type connectorEnterBehavior struct{}

func (connectorEnterBehavior) Initialize(Context) error { return nil }

func (connectorEnterBehavior) OnStartForward(ctx Context) error {
	conn := ctx.Connector()
	if conn == nil {
		return ErrInvalidConnector
	}
	ctx.RemoveClass(DisplayNoneClass)
	conn.UpdateEndpoints()
	if conn.PointTrackingEnabled() {
		conn.ContinuouslyUpdateEndpoints()
	}
	return nil
}

func (connectorEnterBehavior) OnFinishForward(Context) error { return nil }

func (connectorEnterBehavior) OnStartBackward(Context) error { return nil }

func (connectorEnterBehavior) OnFinishBackward(ctx Context) error {
	conn := ctx.Connector()
	if conn != nil {
		conn.CancelContinuousUpdates()
	}
	ctx.AddClass(DisplayNoneClass)
	return nil
}

func (connectorEnterBehavior) ForceDurationZero() bool          { return false }
func (connectorEnterBehavior) ForceStartsNextClipToo() bool     { return false }
func (connectorEnterBehavior) DefaultComposite() host.Composite { return host.CompositeReplace }

// connectorExitBehavior is symmetric to connectorEnterBehavior.
type connectorExitBehavior struct{}

func (connectorExitBehavior) Initialize(Context) error { return nil }

func (connectorExitBehavior) OnStartForward(Context) error { return nil }

func (connectorExitBehavior) OnFinishForward(ctx Context) error {
	conn := ctx.Connector()
	if conn != nil {
		conn.CancelContinuousUpdates()
	}
	ctx.AddClass(DisplayNoneClass)
	return nil
}

func (connectorExitBehavior) OnStartBackward(ctx Context) error {
	conn := ctx.Connector()
	if conn == nil {
		return ErrInvalidConnector
	}
	ctx.RemoveClass(DisplayNoneClass)
	conn.UpdateEndpoints()
	if conn.PointTrackingEnabled() {
		conn.ContinuouslyUpdateEndpoints()
	}
	return nil
}

func (connectorExitBehavior) OnFinishBackward(Context) error { return nil }

func (connectorExitBehavior) ForceDurationZero() bool          { return false }
func (connectorExitBehavior) ForceStartsNextClipToo() bool     { return false }
func (connectorExitBehavior) DefaultComposite() host.Composite { return host.CompositeReplace }

// transitionBehavior optionally clears the inline style properties a
// keyframe touched once the forward active phase finishes.
type transitionBehavior struct{}

func (transitionBehavior) Initialize(Context) error     { return nil }
func (transitionBehavior) OnStartForward(Context) error { return nil }

func (transitionBehavior) OnFinishForward(ctx Context) error {
	if ctx.RemoveInlineStylesOnFinish() {
		ctx.ClearInlineStyle(ctx.KeyframeProperties())
	}
	return nil
}

func (transitionBehavior) OnStartBackward(Context) error  { return nil }
func (transitionBehavior) OnFinishBackward(Context) error { return nil }

func (transitionBehavior) ForceDurationZero() bool          { return false }
func (transitionBehavior) ForceStartsNextClipToo() bool     { return false }
func (transitionBehavior) DefaultComposite() host.Composite { return host.CompositeReplace }

// motionBehavior defaults to accumulate compositing so translations
// stack (spec.md §4.2).
type motionBehavior struct{}

func (motionBehavior) Initialize(Context) error      { return nil }
func (motionBehavior) OnStartForward(Context) error  { return nil }
func (motionBehavior) OnFinishForward(Context) error { return nil }
func (motionBehavior) OnStartBackward(Context) error { return nil }
func (motionBehavior) OnFinishBackward(Context) error { return nil }

func (motionBehavior) ForceDurationZero() bool          { return false }
func (motionBehavior) ForceStartsNextClipToo() bool     { return false }
func (motionBehavior) DefaultComposite() host.Composite { return host.CompositeAccumulate }
