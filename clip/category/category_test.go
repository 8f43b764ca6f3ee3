package category

import (
	"testing"

	"github.com/lixenwraith/animotion/host"
)

type fakeCtx struct {
	classes    map[string]bool
	stash      map[string]string
	hideNow    HideType
	exitHide   HideType
	removeOnFinish bool
	conn       Connector
	keyframeProps []string
}

func newFakeCtx() *fakeCtx {
	return &fakeCtx{classes: map[string]bool{}, stash: map[string]string{}}
}

func (f *fakeCtx) Element() host.Element { return nil }
func (f *fakeCtx) HasClass(name string) bool { return f.classes[name] }
func (f *fakeCtx) AddClass(name string)      { f.classes[name] = true }
func (f *fakeCtx) RemoveClass(name string)   { delete(f.classes, name) }
func (f *fakeCtx) Stash(key string) (string, bool) { v, ok := f.stash[key]; return v, ok }
func (f *fakeCtx) SetStash(key, value string)      { f.stash[key] = value }
func (f *fakeCtx) EffectArgs() []any { return nil }
func (f *fakeCtx) HideNowType() HideType { return f.hideNow }
func (f *fakeCtx) ExitHideType() HideType { return f.exitHide }
func (f *fakeCtx) RemoveInlineStylesOnFinish() bool { return f.removeOnFinish }
func (f *fakeCtx) KeyframeProperties() []string { return f.keyframeProps }
func (f *fakeCtx) ClearInlineStyle(properties []string) {}
func (f *fakeCtx) Connector() Connector { return f.conn }

func TestEntranceBehaviorRequiresHideClass(t *testing.T) {
	b := For(Entrance)
	ctx := newFakeCtx()
	if err := b.OnStartForward(ctx); err != ErrInvalidEntrance {
		t.Fatalf("expected ErrInvalidEntrance, got %v", err)
	}
}

func TestEntranceBehaviorRestoresStashedClass(t *testing.T) {
	b := For(Entrance)
	ctx := newFakeCtx()
	ctx.AddClass(DisplayNoneClass)

	if err := b.OnStartForward(ctx); err != nil {
		t.Fatalf("OnStartForward: %v", err)
	}
	if ctx.HasClass(DisplayNoneClass) {
		t.Fatal("expected class removed")
	}

	if err := b.OnFinishBackward(ctx); err != nil {
		t.Fatalf("OnFinishBackward: %v", err)
	}
	if !ctx.HasClass(DisplayNoneClass) {
		t.Fatal("expected class restored")
	}
}

func TestExitBehaviorRejectsAlreadyHidden(t *testing.T) {
	b := For(Exit)
	ctx := newFakeCtx()
	ctx.AddClass(VisibilityHiddenClass)

	if err := b.OnStartForward(ctx); err != ErrInvalidExit {
		t.Fatalf("expected ErrInvalidExit, got %v", err)
	}
}

func TestMotionDefaultComposite(t *testing.T) {
	b := For(Motion)
	if b.DefaultComposite() != host.CompositeAccumulate {
		t.Fatalf("expected accumulate, got %v", b.DefaultComposite())
	}
}

func TestConnectorSetterForcesTimingFlags(t *testing.T) {
	b := For(ConnectorSetter)
	if !b.ForceDurationZero() || !b.ForceStartsNextClipToo() {
		t.Fatal("expected ConnectorSetter to force duration=0 and startsNextClipToo=true")
	}
}

func TestPlainBehaviorNoopForEmphasisAndScroller(t *testing.T) {
	for _, tag := range []Tag{Emphasis, Scroller} {
		b := For(tag)
		ctx := newFakeCtx()
		if err := b.OnStartForward(ctx); err != nil {
			t.Fatalf("%v: unexpected error %v", tag, err)
		}
	}
}
