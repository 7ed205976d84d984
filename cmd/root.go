package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Conceptual-Machines/magda-harmony/internal/config"
	"github.com/Conceptual-Machines/magda-harmony/internal/engine"
	"github.com/Conceptual-Machines/magda-harmony/internal/logger"
)

// app carries what every subcommand needs; the engine is built lazily before the first run
type app struct {
	cfg *config.Config
	eng *engine.Engine
}

func (a *app) engine() (*engine.Engine, error) {
	if a.eng != nil {
		return a.eng, nil
	}
	e, err := engine.FromConfig(a.cfg)
	if err != nil {
		return nil, err
	}
	a.eng = e
	return e, nil
}

func newRootCmd(cfg *config.Config, version string) *cobra.Command {
	a := &app{cfg: cfg}
	root := &cobra.Command{
		Use:   "magda-harmony",
		Short: "Automatic accompaniment engine",
		Long: `magda-harmony recognizes chords, voice-leads and reharmonizes progressions,
and renders style-based accompaniment over song structures.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := a.engine()
			return err
		},
	}
	root.AddCommand(
		newRecognizeCmd(a),
		newVoiceleadCmd(a),
		newReharmCmd(a),
		newSongCmd(a),
		newStylesCmd(a),
		newDemoCmd(a),
	)
	return root
}

// Execute runs the CLI; cobra has already printed any returned error
func Execute(cfg *config.Config, version string) error {
	return execute(newRootCmd(cfg, version))
}

// execute runs root and reports a failed command to the log and Sentry
func execute(root *cobra.Command) error {
	c, err := root.ExecuteC()
	if err != nil {
		command := root.Name()
		if c != nil {
			command = c.CommandPath()
		}
		logger.Error("Command failed", err, logger.Fields{"command": command})
	}
	return err
}
