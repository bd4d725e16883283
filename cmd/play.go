package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/icco/midikeys/internal/logging"
	"github.com/icco/midikeys/internal/transport"
	"github.com/icco/midikeys/internal/tui"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play MIDI from the computer keyboard",
	Long: `Play MIDI from the computer keyboard with an interactive TUI.

The two letter rows form a piano: a s d f g h j k l ; ' are the white keys and
w e t y u o p the black keys. Use [ and ] to change channel, - and = to step
through programs, and tab to pick an output port.

Example:
  midikeys play --port "IAC Driver Bus 1"
  midikeys play --synth --record session.mid
`,
	RunE: runPlay,
}

func init() {
	addOutputFlags(playCmd)
	playCmd.Flags().IntVar(&outputFlags.octave, "octave", 4, "Starting octave (-1 to 8)")
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// The TUI owns the terminal, so logs go to a file.
	if cfg.Log.Path == "" {
		cfg.Log.Path = logging.DefaultPath()
	}
	log, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	messages := tui.NewMessageLog()
	s, err := openSession(cfg, log, transport.NewMonitor(messages.Add))
	if err != nil {
		return fmt.Errorf("failed to open outputs: %w", err)
	}

	m := tui.New(tui.Options{
		Controller: s.ctrl,
		Output:     s.port,
		Ports:      transport.SystemPorts{},
		Log:        messages,
		Octave:     cfg.Keyboard.Octave,
		Hold:       time.Duration(cfg.Keyboard.HoldMillis) * time.Millisecond,
	})
	p := tea.NewProgram(m, tea.WithAltScreen())

	// Handle graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(c)
	go func() {
		<-c
		p.Send(tea.Quit())
	}()

	log.Info("keyboard started", zap.String("output", s.port.String()))
	_, runErr := p.Run()

	s.ctrl.AllNotesOff()
	err = s.Close()
	if runErr != nil {
		return multierr.Append(fmt.Errorf("error running program: %w", runErr), err)
	}
	return err
}
