package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/icco/midikeys/internal/config"
	"github.com/icco/midikeys/internal/controller"
	"github.com/icco/midikeys/internal/logging"
	"github.com/icco/midikeys/internal/transport"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var sendFlags struct {
	file        string
	dryRun      bool
	allNotesOff bool
}

var sendCmd = &cobra.Command{
	Use:   "send [event...]",
	Short: "Send a script of keyboard events",
	Long: `Send a script of keyboard events without the TUI.

Events are given as arguments, read from --file, or read from standard input:

  ch=N      select channel N (wraps at 16)
  on=K      key K down
  off=K     key K up
  prog=+D   change the program by D and send it
  set=P     record program P without sending
  send      send the current program
  wait=DUR  pause, e.g. wait=250ms

Example:
  midikeys send --port "IAC Driver Bus 1" ch=3 prog=+5 on=60 wait=500ms off=60
  midikeys send --dry-run ch=3 prog=+5
`,
	RunE: runSend,
}

func init() {
	addOutputFlags(sendCmd)
	sendCmd.Flags().StringVarP(&sendFlags.file, "file", "f", "", "Read events from this file (- for stdin)")
	sendCmd.Flags().BoolVar(&sendFlags.dryRun, "dry-run", false, "Print messages as hex instead of sending them")
	sendCmd.Flags().BoolVar(&sendFlags.allNotesOff, "all-notes-off", false, "Send All Notes Off on every channel when done")
	rootCmd.AddCommand(sendCmd)
}

func runSend(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	script, err := readScript(cmd, args)
	if err != nil {
		return err
	}
	events, err := controller.ParseScript(script)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return errors.New("no events to send")
	}

	log, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	var extra []transport.Transport
	if sendFlags.dryRun {
		cfg.Output = config.OutputConfig{}
		extra = append(extra, transport.NewHexDump(cmd.OutOrStdout()))
	} else if cfg.Output.Port == "" && cfg.Output.Virtual == "" && !cfg.Output.Synth && cfg.Output.Record == "" {
		log.Warn("no output configured, messages will be dropped")
	}

	s, err := openSession(cfg, log, extra...)
	if err != nil {
		return fmt.Errorf("failed to open outputs: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runErr := playEvents(ctx, s.ctrl, events)
	if sendFlags.allNotesOff || runErr != nil {
		s.ctrl.AllNotesOff()
	}
	log.Debug("script finished", zap.Int("events", len(events)), zap.Error(runErr))
	return multierr.Append(runErr, s.Close())
}

// readScript joins args, or reads the --file or stdin when there are none.
func readScript(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 && sendFlags.file != "" {
		return "", errors.New("give events as arguments or --file, not both")
	}
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}

	var r io.Reader = cmd.InOrStdin()
	if sendFlags.file != "" && sendFlags.file != "-" {
		f, err := os.Open(sendFlags.file)
		if err != nil {
			return "", fmt.Errorf("failed to open script: %w", err)
		}
		defer f.Close()
		r = f
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read script: %w", err)
	}
	return string(data), nil
}

// playEvents applies events in order, sleeping on waits. It stops early when
// ctx is done.
func playEvents(ctx context.Context, ctrl *controller.Controller, events []controller.Event) error {
	for _, ev := range events {
		if ev.Kind != controller.EventWait {
			ctrl.Apply(ev)
			continue
		}

		t := time.NewTimer(ev.Wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
	return nil
}
