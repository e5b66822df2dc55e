package control

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"go-jobsearch-rpa/internal/telegram"
)

// CommandFeed is the part of the Telegram bot the command source needs.
type CommandFeed interface {
	Commands(ctx context.Context) <-chan telegram.Command
	SendStatus(ctx context.Context, message string) error
}

// Telegram accepts /pause, /resume, /restart, /kill and /status from the
// bot's chat.
type Telegram struct {
	feed CommandFeed
	log  *zap.SugaredLogger
}

func NewTelegram(feed CommandFeed, log *zap.SugaredLogger) *Telegram {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Telegram{feed: feed, log: log}
}

func (t *Telegram) Name() string { return "telegram" }

func (t *Telegram) Listen(ctx context.Context, p *Plane) error {
	for cmd := range t.feed.Commands(ctx) {
		if cmd.Name == "status" {
			t.reply(ctx, formatState(p.State()))
			continue
		}
		action, err := ParseAction(cmd.Name)
		if err != nil {
			t.reply(ctx, "Unknown command /"+cmd.Name+". Try /pause, /resume, /restart, /kill or /status.")
			continue
		}
		t.log.Infof("💬 Telegram %s", action)
		if action != ActionKill {
			t.reply(ctx, fmt.Sprintf("%s accepted", action))
		}
		_ = p.Apply(action)
	}
	return nil
}

func (t *Telegram) reply(ctx context.Context, msg string) {
	if err := t.feed.SendStatus(ctx, msg); err != nil {
		t.log.Warnf("⚠️ Failed to answer telegram command: %v", err)
	}
}

func formatState(s Snapshot) string {
	return fmt.Sprintf("paused=%t kill=%t restart=%t", s.Paused, s.KillRequested, s.RestartRequested)
}
