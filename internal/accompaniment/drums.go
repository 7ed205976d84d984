package accompaniment

import (
	"slices"

	"github.com/Conceptual-Machines/magda-harmony/internal/catalog"
	"github.com/Conceptual-Machines/magda-harmony/internal/mathx"
	"github.com/Conceptual-Machines/magda-harmony/internal/models"
)

const drumVoiceID = "drums"

// Grid step velocities
const (
	accentVelocity = 120
	hitVelocity    = 100
	ghostVelocity  = 50
)

// General MIDI drum notes used by fills and endings
const (
	noteKick    = 36
	noteSnare   = 38
	noteTomLow  = 45
	noteTomMid  = 47
	noteTomHigh = 50
	noteCrash   = 49
)

// DrumRequest describes a drum rendering pass
type DrumRequest struct {
	Pattern   catalog.DrumPattern
	Energy    int
	Swing     float64
	StartTick int
	Bars      int
}

// GenerateDrums renders a grid pattern. Low energy thins the groove: energy 2 drops ghost
// notes, energy 1 also keeps only on-beat hits and accented eighths.
func GenerateDrums(req DrumRequest) []models.DrumEvent {
	energy := mathx.Clamp(req.Energy, minEnergy, maxEnergy)
	steps := req.Pattern.Steps
	if steps <= 0 {
		return nil
	}
	stepTicks := models.TicksPerBar / steps
	bars := max(req.Bars, 1)
	scale := 0.7 + 0.075*float64(energy)

	var out []models.DrumEvent
	for bar := range bars {
		barStart := req.StartTick + bar*models.TicksPerBar
		for _, track := range req.Pattern.Tracks {
			for step, ch := range track.Grid {
				var vel int
				switch ch {
				case 'X':
					vel = accentVelocity
				case 'x':
					vel = hitVelocity
				case 'o':
					if energy <= 2 {
						continue
					}
					vel = ghostVelocity
				default:
					continue
				}
				tick := step * stepTicks
				if energy == minEnergy && tick%(models.PPQ/2) != 0 {
					continue
				}
				if energy == minEnergy && tick%models.PPQ != 0 && ch != 'X' {
					continue
				}
				out = append(out, models.DrumEvent{
					VoiceID:    drumVoiceID,
					Instrument: track.Instrument,
					StartTick:  barStart + tick + swingDelay(tick, req.Swing),
					Note:       track.Note,
					Duration:   max(stepTicks/2, 1),
					Velocity:   mathx.Clamp(int(float64(vel)*scale), 1, 127),
				})
			}
		}
	}
	sortDrums(out)
	return out
}

func sortDrums(events []models.DrumEvent) {
	slices.SortStableFunc(events, func(a, b models.DrumEvent) int {
		return a.StartTick - b.StartTick
	})
}

// FillType selects a drum fill
type FillType string

const (
	SnareRoll  FillType = "snare-roll"
	TomCascade FillType = "tom-cascade"
	KickBuild  FillType = "kick-build"
	Break      FillType = "break"
)

// FillForEnergy picks the default fill for an energy level
func FillForEnergy(energy int) FillType {
	switch mathx.Clamp(energy, minEnergy, maxEnergy) {
	case 1:
		return Break
	case 2, 3:
		return SnareRoll
	case 4:
		return TomCascade
	default:
		return KickBuild
	}
}

// FillRequest describes a fill over the last Beats beats before the next downbeat
type FillRequest struct {
	Type      FillType
	Energy    int
	StartTick int
	Beats     int
}

// GenerateFill renders a fill. Hits crescendo towards the end; at energy 3 and above a
// crash lands on the downbeat after the fill.
func GenerateFill(req FillRequest) []models.DrumEvent {
	energy := mathx.Clamp(req.Energy, minEnergy, maxEnergy)
	beats := req.Beats
	if beats <= 0 {
		beats = 1
	}
	length := beats * models.PPQ
	end := req.StartTick + length

	sub := models.PPQ / 2
	switch {
	case energy >= 5:
		sub = models.PPQ / 8
	case energy >= 3:
		sub = models.PPQ / 4
	}

	var out []models.DrumEvent
	if req.Type != Break {
		count := length / sub
		toms := []int{noteTomHigh, noteTomMid, noteTomLow}
		for i := range count {
			note, instrument := noteSnare, "snare"
			switch req.Type {
			case TomCascade:
				group := i * len(toms) / count
				note, instrument = toms[group], "tom"
			case KickBuild:
				if i%2 == 0 {
					note, instrument = noteKick, "kick"
				}
			}
			vel := 60 + (120-60)*i/max(count-1, 1)
			out = append(out, models.DrumEvent{
				VoiceID:    drumVoiceID,
				Instrument: instrument,
				StartTick:  req.StartTick + i*sub,
				Note:       note,
				Duration:   max(sub/2, 1),
				Velocity:   mathx.Clamp(vel, 1, 127),
			})
		}
	}
	if energy >= 3 || req.Type == Break {
		out = append(out, models.DrumEvent{
			VoiceID:    drumVoiceID,
			Instrument: "crash",
			StartTick:  end,
			Note:       noteCrash,
			Duration:   models.PPQ,
			Velocity:   accentVelocity,
		})
	}
	sortDrums(out)
	return out
}
