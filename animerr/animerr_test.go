package animerr

import (
	"errors"
	"strings"
	"testing"
)

func TestLocationStringOmitsEmptySections(t *testing.T) {
	loc := Location{ClipCategory: "Entrance", ClipEffectName: "fade-in"}
	s := loc.String()
	if !strings.Contains(s, "clip[Entrance effect=\"fade-in\"]") {
		t.Fatalf("String() = %q, missing clip section", s)
	}
	if strings.Contains(s, "timeline=") {
		t.Fatalf("String() = %q, want no timeline section when unset", s)
	}
}

func TestCommitStylesErrorUnwraps(t *testing.T) {
	inner := errors.New("boom")
	err := &CommitStylesError{Err: inner}

	if !errors.Is(err, inner) {
		t.Fatal("expected errors.Is to find the wrapped error")
	}
}

func TestTimeParadoxErrorMessage(t *testing.T) {
	err := &TimeParadoxError{
		Loc:            Location{TimelineName: "main", StepNumber: 2},
		RequestedAt:    1,
		LoadedSeqIndex: 3,
	}
	msg := err.Error()
	if !strings.Contains(msg, "index 1") || !strings.Contains(msg, "loadedSeqIndex 3") {
		t.Fatalf("Error() = %q, missing expected indices", msg)
	}
}
