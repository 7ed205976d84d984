package scene

import (
	"slices"

	"github.com/Conceptual-Machines/magda-harmony/internal/mathx"
	"github.com/Conceptual-Machines/magda-harmony/internal/song"
)

// Command is a scene transition
type Command interface {
	sceneCommand()
}

type (
	// SelectPart selects a part, replacing the selection unless Add is set
	SelectPart struct {
		Index int
		Add   bool
	}

	ClearSelection struct{}

	// QueuePart schedules a part to start when the current one ends
	QueuePart struct{ Index int }

	// JumpToPart moves the cursor to the start of a part and clears the queue
	JumpToPart struct{ Index int }

	// SetLoopRange loops between two parts (inclusive, either order)
	SetLoopRange struct{ Start, End int }

	ClearLoopRange struct{}

	// ToggleLoopMode cycles off, part, range (only with a loop range set) and song
	ToggleLoopMode struct{}

	// SetZoom sets the timeline zoom, clamped to 0.25-4
	SetZoom struct{ Zoom float64 }

	// Advance moves the cursor forward, crossing part boundaries as the loop mode and
	// queue dictate
	Advance struct{ Ticks int }

	// AddPart inserts a part at Index; a negative or out of range Index appends
	AddPart struct {
		Part  song.SongPart
		Index int
	}

	// RemovePart removes a part; the last remaining part is never removed
	RemovePart struct{ Index int }

	// DuplicatePart inserts a copy of a part right after it
	DuplicatePart struct{ Index int }

	// UpdatePart replaces the part at Index
	UpdatePart struct {
		Index int
		Part  song.SongPart
	}

	// MovePart reorders a part
	MovePart struct{ From, To int }
)

func (SelectPart) sceneCommand()     {}
func (ClearSelection) sceneCommand() {}
func (QueuePart) sceneCommand()      {}
func (JumpToPart) sceneCommand()     {}
func (SetLoopRange) sceneCommand()   {}
func (ClearLoopRange) sceneCommand() {}
func (ToggleLoopMode) sceneCommand() {}
func (SetZoom) sceneCommand()        {}
func (Advance) sceneCommand()        {}
func (AddPart) sceneCommand()        {}
func (RemovePart) sceneCommand()     {}
func (DuplicatePart) sceneCommand()  {}
func (UpdatePart) sceneCommand()     {}
func (MovePart) sceneCommand()       {}

// Reduce applies cmd to the view and structure. Structural edits return the edited structure
// with TotalBars recomputed and the view's part indexes remapped; other commands return the
// structure unchanged. Invalid indexes and unknown commands are no-ops.
func Reduce(v View, s song.SongStructure, cmd Command) (View, song.SongStructure) {
	switch c := cmd.(type) {
	case SelectPart:
		if !valid(s, c.Index) {
			return v, s
		}
		next := v.clone()
		if c.Add {
			if !next.IsSelected(c.Index) {
				next.SelectedParts = append(next.SelectedParts, c.Index)
				slices.Sort(next.SelectedParts)
			}
		} else {
			next.SelectedParts = []int{c.Index}
		}
		return next, s

	case ClearSelection:
		next := v.clone()
		next.SelectedParts = nil
		return next, s

	case QueuePart:
		if !valid(s, c.Index) {
			return v, s
		}
		next := v.clone()
		next.QueuedPartIndex = c.Index
		return next, s

	case JumpToPart:
		if !valid(s, c.Index) {
			return v, s
		}
		return jump(v, c.Index), s

	case SetLoopRange:
		if !valid(s, c.Start) || !valid(s, c.End) {
			return v, s
		}
		next := v.clone()
		next.LoopRange = &Range{Start: min(c.Start, c.End), End: max(c.Start, c.End)}
		next.LoopMode = LoopRange
		return next, s

	case ClearLoopRange:
		next := v.clone()
		next.LoopRange = nil
		if next.LoopMode == LoopRange {
			next.LoopMode = LoopOff
		}
		return next, s

	case ToggleLoopMode:
		next := v.clone()
		next.LoopMode = nextLoopMode(v.LoopMode, v.LoopRange != nil)
		return next, s

	case SetZoom:
		next := v.clone()
		next.Zoom = mathx.Clamp(c.Zoom, MinZoom, MaxZoom)
		return next, s

	case Advance:
		if c.Ticks <= 0 || s.Len() == 0 {
			return v, s
		}
		return advance(v, s, c.Ticks), s

	case AddPart:
		index := c.Index
		if index < 0 || index > s.Len() {
			index = s.Len()
		}
		edited := s.WithPartInserted(index, c.Part)
		return remap(v, edited, insertMapping(index)), edited

	case RemovePart:
		edited, ok := s.WithPartRemoved(c.Index)
		if !ok {
			return v, s
		}
		return remap(v, edited, removeMapping(c.Index)), edited

	case DuplicatePart:
		edited, ok := s.WithPartDuplicated(c.Index)
		if !ok {
			return v, s
		}
		return remap(v, edited, insertMapping(c.Index+1)), edited

	case UpdatePart:
		edited, ok := s.WithPartUpdated(c.Index, c.Part)
		if !ok {
			return v, s
		}
		return remap(v, edited, func(i int) int { return i }), edited

	case MovePart:
		edited, ok := s.WithPartMoved(c.From, c.To)
		if !ok {
			return v, s
		}
		return remap(v, edited, moveMapping(c.From, c.To)), edited
	}
	return v, s
}

func valid(s song.SongStructure, index int) bool {
	return index >= 0 && index < s.Len()
}

func jump(v View, index int) View {
	next := v.clone()
	next.CurrentPartIndex = index
	next.PositionInPart = 0
	next.QueuedPartIndex = NoPart
	return next
}

func nextLoopMode(mode LoopMode, hasRange bool) LoopMode {
	switch mode {
	case LoopOff:
		return LoopPart
	case LoopPart:
		if hasRange {
			return LoopRange
		}
		return LoopSong
	case LoopRange:
		return LoopSong
	default:
		return LoopOff
	}
}

// advance moves the cursor, resolving each part boundary it crosses
func advance(v View, s song.SongStructure, ticks int) View {
	next := v.clone()
	next.PositionInPart += ticks
	for {
		p, ok := s.Part(next.CurrentPartIndex)
		if !ok {
			next.CurrentPartIndex = mathx.Clamp(next.CurrentPartIndex, 0, s.Len()-1)
			next.PositionInPart = 0
			return next
		}
		length := partTicks(p)
		if length <= 0 {
			// an empty part holds the cursor at its start
			next.PositionInPart = 0
			return next
		}
		if next.PositionInPart < length {
			return next
		}
		following, ok := nextPart(next, s)
		if !ok {
			next.PositionInPart = length
			return next
		}
		overflow := next.PositionInPart - length
		next = jump(next, following)
		next.PositionInPart = overflow
	}
}

// nextPart picks the part that follows the current one at a boundary; false means the song
// has ended
func nextPart(v View, s song.SongStructure) (int, bool) {
	if v.HasQueued() && valid(s, v.QueuedPartIndex) {
		return v.QueuedPartIndex, true
	}
	cur := v.CurrentPartIndex
	switch v.LoopMode {
	case LoopPart:
		return cur, true
	case LoopRange:
		if v.LoopRange != nil && v.LoopRange.Contains(cur) {
			if cur >= v.LoopRange.End {
				return v.LoopRange.Start, true
			}
			return cur + 1, true
		}
	case LoopSong:
		return (cur + 1) % s.Len(), true
	}
	if cur+1 < s.Len() {
		return cur + 1, true
	}
	return 0, false
}

// insertMapping shifts indexes at or after index up by one
func insertMapping(index int) func(int) int {
	return func(i int) int {
		if i >= index {
			return i + 1
		}
		return i
	}
}

// removeMapping drops index (NoPart) and shifts later indexes down
func removeMapping(index int) func(int) int {
	return func(i int) int {
		switch {
		case i == index:
			return NoPart
		case i > index:
			return i - 1
		}
		return i
	}
}

func moveMapping(from, to int) func(int) int {
	return func(i int) int {
		switch {
		case i == from:
			return to
		case from < to && i > from && i <= to:
			return i - 1
		case from > to && i >= to && i < from:
			return i + 1
		}
		return i
	}
}

// remap rewrites the view's part references after a structural edit so they keep pointing
// at the same parts. A removed current part leaves the cursor at the start of the part that
// took its place.
func remap(v View, s song.SongStructure, mapping func(int) int) View {
	next := v.clone()

	cur := mapping(v.CurrentPartIndex)
	if cur == NoPart {
		cur = mathx.Clamp(v.CurrentPartIndex, 0, s.Len()-1)
		next.PositionInPart = 0
	}
	next.CurrentPartIndex = cur
	if p, ok := s.Part(cur); ok {
		next.PositionInPart = min(next.PositionInPart, partTicks(p)-1)
		next.PositionInPart = max(next.PositionInPart, 0)
	}

	var selected []int
	for _, i := range v.SelectedParts {
		if m := mapping(i); m != NoPart {
			selected = append(selected, m)
		}
	}
	slices.Sort(selected)
	next.SelectedParts = slices.Compact(selected)

	if v.HasQueued() {
		next.QueuedPartIndex = mapping(v.QueuedPartIndex)
	}

	if v.LoopRange != nil {
		start, end := mapping(v.LoopRange.Start), mapping(v.LoopRange.End)
		if start == NoPart {
			start = mathx.Clamp(v.LoopRange.Start, 0, s.Len()-1)
		}
		if end == NoPart {
			end = mathx.Clamp(v.LoopRange.End-1, 0, s.Len()-1)
		}
		next.LoopRange = &Range{Start: min(start, end), End: max(start, end)}
	}
	return next
}
