package clip

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lixenwraith/animotion/animerr"
)

// Position is a parsed time-position literal (spec.md §6): the
// beginning or end of a phase, an absolute millisecond offset into it,
// or a percentage of its length.
type Position struct {
	kind    positionKind
	ms      int64
	percent float64
}

type positionKind int

const (
	posBeginning positionKind = iota
	posEnd
	posMillis
	posPercent
)

// ParsePosition accepts "beginning", "end", a non-negative integer
// (milliseconds), or a "<n>%" string with n in [0, 100].
func ParsePosition(raw string, loc animerr.Location) (Position, error) {
	switch raw {
	case "beginning":
		return Position{kind: posBeginning}, nil
	case "end":
		return Position{kind: posEnd}, nil
	}

	if strings.HasSuffix(raw, "%") {
		numStr := strings.TrimSuffix(raw, "%")
		n, err := strconv.ParseFloat(numStr, 64)
		if err != nil || n < 0 || n > 100 {
			return Position{}, &animerr.InvalidPhasePositionError{Loc: loc, Literal: raw}
		}
		return Position{kind: posPercent, percent: n}, nil
	}

	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 {
		return Position{}, &animerr.InvalidPhasePositionError{Loc: loc, Literal: raw}
	}
	return Position{kind: posMillis, ms: n}, nil
}

// Resolve converts the position into an absolute offset (milliseconds)
// into a phase of the given length, validating percent/ms bounds.
func (p Position) Resolve(phaseLen int64, loc animerr.Location) (int64, error) {
	switch p.kind {
	case posBeginning:
		return 0, nil
	case posEnd:
		return phaseLen, nil
	case posMillis:
		if p.ms > phaseLen {
			return 0, &animerr.InvalidPhasePositionError{Loc: loc, Literal: fmt.Sprintf("%dms", p.ms)}
		}
		return p.ms, nil
	case posPercent:
		return int64(p.percent / 100 * float64(phaseLen)), nil
	default:
		return 0, fmt.Errorf("clip: unknown position kind %d", p.kind)
	}
}
