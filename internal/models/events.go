package models

// PPQ is the engine's tick resolution (pulses per quarter note)
const PPQ = 480

// TicksPerBar is one 4/4 bar
const TicksPerBar = 4 * PPQ

// VoiceType classifies an accompaniment voice
type VoiceType string

const (
	VoiceBass   VoiceType = "bass"
	VoiceChord  VoiceType = "chord"
	VoicePad    VoiceType = "pad"
	VoiceArp    VoiceType = "arp"
	VoiceMelody VoiceType = "melody"
	VoiceDrums  VoiceType = "drums"
)

// NoteEvent is a single pitched note produced by the accompaniment generators
type NoteEvent struct {
	VoiceID   string    `json:"voiceId"`
	VoiceType VoiceType `json:"voiceType"`
	StartTick int       `json:"startTick"`
	Note      int       `json:"note"`
	Duration  int       `json:"duration"`
	Velocity  int       `json:"velocity"`
	Channel   int       `json:"channel"`
}

// DrumEvent is a single drum hit
type DrumEvent struct {
	VoiceID    string `json:"voiceId"`
	Instrument string `json:"instrument"`
	StartTick  int    `json:"startTick"`
	Note       int    `json:"note"`
	Duration   int    `json:"duration"`
	Velocity   int    `json:"velocity"`
}

// ChordEvent marks a chord change on the timeline
type ChordEvent struct {
	ChordSymbol string `json:"chordSymbol"`
	StartTick   int    `json:"startTick"`
	Duration    int    `json:"duration"`
}
