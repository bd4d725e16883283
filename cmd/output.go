package cmd

import (
	"github.com/icco/midikeys/internal/audio"
	"github.com/icco/midikeys/internal/config"
	"github.com/icco/midikeys/internal/controller"
	"github.com/icco/midikeys/internal/transport"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// outputFlags are shared by the commands that produce MIDI. Only flags the
// user sets override the config file.
var outputFlags struct {
	port     string
	virtual  string
	synth    bool
	record   string
	velocity int
	octave   int
}

func addOutputFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&outputFlags.port, "port", "p", "", "MIDI output port to send to")
	f.StringVar(&outputFlags.virtual, "virtual", "", "Create a virtual MIDI output with this name")
	f.BoolVar(&outputFlags.synth, "synth", false, "Play through the built-in tone generator")
	f.StringVarP(&outputFlags.record, "record", "r", "", "Record the session to this MIDI file")
	f.IntVar(&outputFlags.velocity, "velocity", controller.DefaultVelocity, "Note velocity (1-127)")
}

// session is a controller and the transports it drives.
type session struct {
	ctrl   *controller.Controller
	port   *transport.Switch
	output *transport.Fanout
	log    *zap.Logger
}

// openSession opens the outputs named in cfg plus any extra sinks, starts
// them, and returns a controller sending to all of them.
func openSession(cfg *config.Config, log *zap.Logger, extra ...transport.Transport) (*session, error) {
	port := transport.NewSwitch()
	if err := connect(port, cfg.Output); err != nil {
		return nil, err
	}
	if p := port.Current(); p != nil {
		log.Info("MIDI output connected", zap.String("port", p.String()))
	}

	sinks := []transport.Transport{port}
	if cfg.Output.Synth {
		sinks = append(sinks, audio.NewSynth())
	}
	if cfg.Output.Record != "" {
		sinks = append(sinks, transport.NewRecorder(cfg.Output.Record))
	}
	sinks = append(sinks, extra...)

	output := transport.NewFanout(sinks...)
	if err := output.Start(); err != nil {
		return nil, multierr.Append(err, port.Stop())
	}
	log.Debug("outputs started", zap.Stringer("outputs", output))

	ctrl := controller.New(output,
		controller.WithVelocity(cfg.Keyboard.Velocity),
		controller.WithLogger(log),
	)
	return &session{ctrl: ctrl, port: port, output: output, log: log}, nil
}

// connect puts the virtual or hardware port from out into the switch.
func connect(sw *transport.Switch, out config.OutputConfig) error {
	switch {
	case out.Virtual != "":
		p, err := transport.OpenVirtual(out.Virtual)
		if err != nil {
			return err
		}
		return sw.Set(p)
	case out.Port != "":
		p, err := transport.OpenPort(out.Port)
		if err != nil {
			return err
		}
		return sw.Set(p)
	}
	return nil
}

// Close stops every output.
func (s *session) Close() error {
	err := s.output.Stop()
	if err != nil {
		s.log.Error("closing outputs", zap.Error(err))
	}
	return err
}
