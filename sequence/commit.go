package sequence

import "github.com/lixenwraith/animotion/clip"

// group is a committed parallelism group: a run of clips that start
// together (spec.md §4.3 "Commit algorithm").
type group struct {
	clips []*clip.Clip

	// activeFinishOrder: ascending by activeFinishTime.
	activeFinishOrder []*clip.Clip
	// endDelayFinishOrder: ascending by fullFinishTime.
	endDelayFinishOrder []*clip.Clip
	// backwardActiveFinishOrder: endDelayFinishOrder reversed, then
	// stable-sorted ascending by activeStartTime (spec.md §4.3).
	backwardActiveFinishOrder []*clip.Clip
}

// commit rebuilds the grouping and start-time plan from the clips'
// sequencing flags and timings. Called at the start of every play and
// rewind (spec.md §4.3 "Responsibility").
func (s *Sequence) commit() {
	s.mu.Lock()
	clips := make([]*clip.Clip, len(s.clips))
	copy(clips, s.clips)
	s.mu.Unlock()

	groups := groupClips(clips)
	assignStartTimes(groups)
	for i := range groups {
		groups[i].activeFinishOrder = sortedByKey(groups[i].clips, (*clip.Clip).ActiveFinishTime)
		groups[i].endDelayFinishOrder = sortedByKey(groups[i].clips, (*clip.Clip).FullFinishTime)
		groups[i].backwardActiveFinishOrder = backwardOrder(groups[i].endDelayFinishOrder)
	}

	s.mu.Lock()
	s.groups = groups
	s.mu.Unlock()
}

// groupClips partitions clips in insertion order: a new group begins at
// clip i when it does not start with its predecessor and its
// predecessor did not force it to (spec.md §4.3 "Commit algorithm").
func groupClips(clips []*clip.Clip) []group {
	var groups []group
	var cur []*clip.Clip
	for i, c := range clips {
		joins := i > 0 && (c.StartsWithPrevious() || clips[i-1].StartsNextClipToo())
		if i > 0 && !joins {
			groups = append(groups, group{clips: cur})
			cur = nil
		}
		cur = append(cur, c)
	}
	if len(cur) > 0 {
		groups = append(groups, group{clips: cur})
	}
	return groups
}

// assignStartTimes computes fullStartTime for every clip: clip 0 starts
// at 0; a clip joining its group starts at its predecessor's
// activeStartTime (delays stack); a clip opening a new group starts at
// the max fullFinishTime of the previous group (spec.md §4.3 "Start
// times are assigned as follows").
func assignStartTimes(groups []group) {
	var prevGroupFinish int64
	first := true
	for gi := range groups {
		g := groups[gi]
		for i, c := range g.clips {
			switch {
			case first:
				c.SetFullStartTime(0)
				first = false
			case i == 0:
				c.SetFullStartTime(prevGroupFinish)
			default:
				c.SetFullStartTime(g.clips[i-1].ActiveStartTime())
			}
		}
		var maxFinish int64
		for _, c := range g.clips {
			if f := c.FullFinishTime(); f > maxFinish {
				maxFinish = f
			}
		}
		prevGroupFinish = maxFinish
	}
}

func sortedByKey(clips []*clip.Clip, key func(*clip.Clip) int64) []*clip.Clip {
	out := make([]*clip.Clip, len(clips))
	copy(out, clips)
	// insertion sort: groups are small and this keeps ties in a stable,
	// predictable (insertion) order without pulling in sort for a
	// handful of elements.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && key(out[j-1]) > key(out[j]); j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

// backwardOrder reverses endDelayFinishOrder, then stable-sorts the
// result ascending by activeStartTime so later-starting clips finish
// rewinding their active phases first (spec.md §4.3).
func backwardOrder(endDelayFinishOrder []*clip.Clip) []*clip.Clip {
	reversed := make([]*clip.Clip, len(endDelayFinishOrder))
	for i, c := range endDelayFinishOrder {
		reversed[len(reversed)-1-i] = c
	}
	return sortedByKey(reversed, (*clip.Clip).ActiveStartTime)
}
