package live

import (
	"slices"
	"sync"
	"time"

	"gitlab.com/gomidi/midi/v2"

	"github.com/Conceptual-Machines/magda-harmony/internal/models"
)

// DrumChannel is the General MIDI percussion channel (zero based)
const DrumChannel = 9

// Tracker keeps the set of held keys from a MIDI input. Handle may be called from a driver
// callback goroutine while another goroutine reads Notes.
type Tracker struct {
	mu      sync.RWMutex
	held    map[uint8]struct{}
	channel int // -1 accepts every channel
}

// NewTracker listens on channel (zero based); a negative channel accepts all channels
func NewTracker(channel int) *Tracker {
	return &Tracker{held: map[uint8]struct{}{}, channel: channel}
}

// Handle applies a message and reports whether the held set changed
func (t *Tracker) Handle(msg midi.Message) bool {
	var ch, key, vel uint8
	switch {
	case msg.GetNoteStart(&ch, &key, &vel):
		if !t.accepts(ch) {
			return false
		}
		t.mu.Lock()
		defer t.mu.Unlock()
		if _, ok := t.held[key]; ok {
			return false
		}
		t.held[key] = struct{}{}
		return true
	case msg.GetNoteEnd(&ch, &key):
		if !t.accepts(ch) {
			return false
		}
		t.mu.Lock()
		defer t.mu.Unlock()
		if _, ok := t.held[key]; !ok {
			return false
		}
		delete(t.held, key)
		return true
	}
	return false
}

func (t *Tracker) accepts(ch uint8) bool {
	return t.channel < 0 || int(ch) == t.channel
}

// Notes returns the held keys in ascending order
func (t *Tracker) Notes() []int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]int, 0, len(t.held))
	for k := range t.held {
		out = append(out, int(k))
	}
	slices.Sort(out)
	return out
}

// Reset releases every held key
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	clear(t.held)
}

// TimedMessage is a MIDI message scheduled at a tick
type TimedMessage struct {
	Tick int
	Msg  midi.Message
}

// ToMessages renders note and drum events into note-on/note-off messages ordered by tick.
// At equal ticks note-offs come first so repeated notes retrigger. A note that overlaps a
// later strike of the same key is released at that strike.
func ToMessages(notes []models.NoteEvent, drums []models.DrumEvent) []TimedMessage {
	out := make([]TimedMessage, 0, 2*(len(notes)+len(drums)))
	add := func(channel, key, velocity, start, duration int) {
		ch, k := uint8(channel&0x0f), uint8(key&0x7f)
		out = append(out,
			TimedMessage{Tick: start, Msg: midi.NoteOn(ch, k, uint8(velocity&0x7f))},
			TimedMessage{Tick: start + max(duration, 1), Msg: midi.NoteOff(ch, k)},
		)
	}
	strikes := map[[2]int][]int{}
	for _, n := range notes {
		k := [2]int{n.Channel, n.Note}
		strikes[k] = append(strikes[k], n.StartTick)
	}
	for _, starts := range strikes {
		slices.Sort(starts)
	}
	for _, n := range notes {
		duration := n.Duration
		starts := strikes[[2]int{n.Channel, n.Note}]
		if i, _ := slices.BinarySearch(starts, n.StartTick+1); i < len(starts) {
			duration = min(duration, starts[i]-n.StartTick)
		}
		add(n.Channel, n.Note, n.Velocity, n.StartTick, duration)
	}
	for _, d := range drums {
		add(DrumChannel, d.Note, d.Velocity, d.StartTick, d.Duration)
	}
	slices.SortStableFunc(out, func(a, b TimedMessage) int {
		if a.Tick != b.Tick {
			return a.Tick - b.Tick
		}
		return noteOffFirst(a.Msg) - noteOffFirst(b.Msg)
	})
	return out
}

func noteOffFirst(msg midi.Message) int {
	var ch, key uint8
	if msg.GetNoteEnd(&ch, &key) {
		return 0
	}
	return 1
}

// TickDuration returns the wall-clock length of one tick at bpm
func TickDuration(bpm int) time.Duration {
	if bpm <= 0 {
		return 0
	}
	return time.Minute / time.Duration(bpm*models.PPQ)
}
