package live

import (
	"fmt"

	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/Conceptual-Machines/magda-harmony/internal/models"
)

// ToSMF lays rendered messages out as a two-track standard MIDI file: a tempo track and one
// performance track. Messages must be ordered by tick, as ToMessages returns them.
func ToSMF(bpm int, msgs []TimedMessage) (*smf.SMF, error) {
	sm := smf.New()
	sm.TimeFormat = smf.MetricTicks(models.PPQ)

	var tempo smf.Track
	tempo.Add(0, smf.MetaMeter(4, 4))
	tempo.Add(0, smf.MetaTempo(float64(bpm)))
	tempo.Close(0)
	if err := sm.Add(tempo); err != nil {
		return nil, fmt.Errorf("error adding tempo track: %w", err)
	}

	var track smf.Track
	last := 0
	for _, m := range msgs {
		if m.Tick < last {
			return nil, fmt.Errorf("message at tick %d precedes tick %d", m.Tick, last)
		}
		track.Add(uint32(m.Tick-last), m.Msg)
		last = m.Tick
	}
	// close on the next bar line
	end := (last + models.TicksPerBar - 1) / models.TicksPerBar * models.TicksPerBar
	track.Close(uint32(end - last))
	if err := sm.Add(track); err != nil {
		return nil, fmt.Errorf("error adding performance track: %w", err)
	}
	return sm, nil
}

// WriteSMF renders msgs to a MIDI file at path
func WriteSMF(path string, bpm int, msgs []TimedMessage) error {
	sm, err := ToSMF(bpm, msgs)
	if err != nil {
		return err
	}
	if err := sm.WriteFile(path); err != nil {
		return fmt.Errorf("error writing MIDI file: %w", err)
	}
	return nil
}
