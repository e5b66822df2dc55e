package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"

	"go-jobsearch-rpa/internal/models"
)

// api is the subset of *tgbotapi.BotAPI the bot uses.
type api interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Command is a bot command received from the configured chat.
type Command struct {
	Name string
	Args string
}

type Bot struct {
	api     api
	chatID  int64
	limiter *rate.Limiter
}

func NewBot(token string, chatID int64) (*Bot, error) {
	botAPI, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, errors.Wrap(err, "failed to init telegram bot")
	}
	return newBot(botAPI, chatID), nil
}

func newBot(a api, chatID int64) *Bot {
	return &Bot{
		api:    a,
		chatID: chatID,
		// Telegram allows roughly one message per second per chat.
		limiter: rate.NewLimiter(rate.Every(time.Second), 3),
	}
}

func (b *Bot) escapeMarkdown(text string) string {
	replacer := strings.NewReplacer(
		"_", "\\_", "*", "\\*", "[", "\\[", "]", "\\]", "(", "\\(",
		")", "\\)", "~", "\\~", "`", "\\`", ">", "\\>", "#", "\\#",
		"+", "\\+", "-", "\\-", "=", "\\=", "|", "\\|", "{", "\\{",
		"}", "\\}", ".", "\\.", "!", "\\!",
	)
	return replacer.Replace(text)
}

func (b *Bot) send(ctx context.Context, msg tgbotapi.MessageConfig) (int, error) {
	if err := b.limiter.Wait(ctx); err != nil {
		return 0, err
	}
	sent, err := b.api.Send(msg)
	if err != nil {
		return 0, errors.Wrap(err, "telegram send")
	}
	return sent.MessageID, nil
}

// Send posts plain text and returns the message id.
func (b *Bot) Send(ctx context.Context, text string) (int, error) {
	return b.send(ctx, tgbotapi.NewMessage(b.chatID, text))
}

// Delete removes a message previously sent by the bot.
func (b *Bot) Delete(ctx context.Context, messageID int) error {
	if err := b.limiter.Wait(ctx); err != nil {
		return err
	}
	if _, err := b.api.Request(tgbotapi.NewDeleteMessage(b.chatID, messageID)); err != nil {
		return errors.Wrapf(err, "telegram delete %d", messageID)
	}
	return nil
}

func (b *Bot) SendJob(ctx context.Context, job models.JobRecord) error {
	//build message chunks
	msgText := fmt.Sprintf("💼 *%s*\n", b.escapeMarkdown(job.Title))
	msgText += fmt.Sprintf("🏢 %s\n", b.escapeMarkdown(orNA(job.Company)))
	msgText += fmt.Sprintf("📍 %s\n", b.escapeMarkdown(orNA(job.Location)))

	desc := job.Description
	if r := []rune(desc); len(r) > 300 {
		desc = string(r[:300]) + "…"
	}
	if desc != "" {
		msgText += fmt.Sprintf("📄 %s\n", b.escapeMarkdown(desc))
	}
	msgText += "🔖 Source: Glassdoor"

	msg := tgbotapi.NewMessage(b.chatID, msgText)
	msg.ParseMode = "MarkdownV2"

	_, err := b.send(ctx, msg)
	return err
}

func (b *Bot) SendError(ctx context.Context, err error) error {
	_, sendErr := b.Send(ctx, fmt.Sprintf("❌ Error: %v", err))
	return sendErr
}

func (b *Bot) SendStatus(ctx context.Context, message string) error {
	_, err := b.Send(ctx, "ℹ️ "+message)
	return err
}

// Commands streams bot commands sent from the configured chat until ctx is
// done. Messages from other chats and plain text are dropped.
func (b *Bot) Commands(ctx context.Context) <-chan Command {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	out := make(chan Command)
	go func() {
		defer close(out)
		defer b.api.StopReceivingUpdates()
		for {
			select {
			case <-ctx.Done():
				return
			case upd, ok := <-updates:
				if !ok {
					return
				}
				msg := upd.Message
				if msg == nil || msg.Chat == nil || msg.Chat.ID != b.chatID || !msg.IsCommand() {
					continue
				}
				cmd := Command{Name: strings.ToLower(msg.Command()), Args: msg.CommandArguments()}
				select {
				case out <- cmd:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
