package notify

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Messenger is the part of the Telegram bot the notifier needs.
type Messenger interface {
	Send(ctx context.Context, text string) (int, error)
	Delete(ctx context.Context, messageID int) error
}

const sendTimeout = 15 * time.Second

// Telegram mirrors notifications to a chat. Overlays are messages that are
// deleted on dismiss.
type Telegram struct {
	bot Messenger
	log *zap.SugaredLogger
}

func NewTelegram(bot Messenger, log *zap.SugaredLogger) *Telegram {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Telegram{bot: bot, log: log}
}

func (t *Telegram) Notify(ctx context.Context, title, message string) error {
	_, err := t.bot.Send(ctx, "🔔 "+title+"\n"+message)
	return err
}

func (t *Telegram) Overlay(text string) Handle {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	id, err := t.bot.Send(ctx, "⏸ "+text)
	if err != nil {
		t.log.Warnf("⚠️ Failed to send overlay message: %v", err)
		return HandleFunc(nil)
	}
	return HandleFunc(func() {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		if err := t.bot.Delete(ctx, id); err != nil {
			t.log.Warnf("⚠️ Failed to remove overlay message: %v", err)
		}
	})
}
