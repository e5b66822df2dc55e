package control

import (
	"context"
	"os"
	"os/signal"

	"go.uber.org/zap"
)

// Signals maps OS signals to actions.
type Signals struct {
	log     *zap.SugaredLogger
	actions map[os.Signal]Action
}

// NewSignals uses the platform's default signal table.
func NewSignals(log *zap.SugaredLogger) *Signals {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Signals{log: log, actions: signalActions()}
}

func (s *Signals) Name() string { return "signals" }

func (s *Signals) Listen(ctx context.Context, p *Plane) error {
	ch := make(chan os.Signal, 4)
	sigs := make([]os.Signal, 0, len(s.actions))
	for sig := range s.actions {
		sigs = append(sigs, sig)
	}
	signal.Notify(ch, sigs...)
	defer signal.Stop(ch)

	for {
		select {
		case <-ctx.Done():
			return nil
		case sig := <-ch:
			action := s.actions[sig]
			s.log.Infof("📡 Received %s, applying %s", sig, action)
			_ = p.Apply(action)
		}
	}
}
