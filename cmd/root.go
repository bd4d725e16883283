package cmd

import (
	"fmt"
	"os"

	"github.com/icco/midikeys/internal/config"
	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "midikeys",
	Short: "A terminal MIDI keyboard controller",
	Long: `midikeys turns your computer keyboard into a MIDI controller.

Key presses become note on/off messages on the selected channel, and each of the
16 channels remembers its own program (instrument). Output goes to a hardware
MIDI port, a virtual port, the built-in tone generator, or a recorded MIDI file.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.config/midikeys/config.json)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies the flags the user set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if flags.Changed("port") {
		cfg.Output.Port = outputFlags.port
	}
	if flags.Changed("virtual") {
		cfg.Output.Virtual = outputFlags.virtual
	}
	if flags.Changed("synth") {
		cfg.Output.Synth = outputFlags.synth
	}
	if flags.Changed("record") {
		cfg.Output.Record = outputFlags.record
	}
	if flags.Changed("velocity") {
		cfg.Keyboard.Velocity = outputFlags.velocity
	}
	if flags.Changed("octave") {
		cfg.Keyboard.Octave = outputFlags.octave
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
