package services

import (
	"context"
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	"lamah/internal/datastore/redis_store"
	"lamah/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/sirupsen/logrus"
	tele "gopkg.in/telebot.v3"
)

type Bot struct {
	token string
}

func NewBot(token string) (*Bot, error) {
	return &Bot{token}, nil
}

func (bot *Bot) SendMsg(chatID int64, text string) error {
	pref := tele.Settings{
		Token:  bot.token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		return err
	}

	_, err = b.Send(tele.ChatID(chatID), text, &tele.SendOptions{
		ParseMode: tele.ModeHTML,
	})
	if err != nil {
		return err
	}

	return nil
}

// ModeratorNotifier tells the moderator chat about new submissions. Each
// submitter triggers at most one message per cooldown window.
type ModeratorNotifier struct {
	container *do.Injector
	bot       *Bot
	config    *ServiceConfig
	redis     redis.UniversalClient
	logger    logrus.FieldLogger
}

func NewModeratorNotifier(container *do.Injector) (*ModeratorNotifier, error) {
	bot, err := do.Invoke[*Bot](container)
	if err != nil {
		return nil, err
	}

	config, err := do.Invoke[*ServiceConfig](container)
	if err != nil {
		return nil, err
	}

	dbRedis, err := do.InvokeNamed[redis.UniversalClient](container, "redis-progress")
	if err != nil {
		return nil, err
	}

	logger, err := do.Invoke[*logrus.Entry](container)
	if err != nil {
		return nil, err
	}

	return &ModeratorNotifier{container, bot, config, dbRedis, logger}, nil
}

func (notifier *ModeratorNotifier) NotifyPendingSubmission(ctx context.Context, pending *models.PendingQuestion) error {
	chat, err := notifier.config.GetStringConfig(ctx, CONFIG_ADMIN_CHAT_ID, "")
	if err != nil {
		return err
	}
	if chat == "" {
		return nil
	}
	chatID, err := strconv.ParseInt(chat, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", CONFIG_ADMIN_CHAT_ID, err)
	}

	first, err := redis_store.MarkPendingNotified(ctx, notifier.redis, pending.SubmittedBy)
	if err != nil {
		return err
	}
	if !first {
		notifier.logger.WithField("submitter", pending.SubmittedBy).Debug("moderator notification on cooldown")
		return nil
	}

	return notifier.bot.SendMsg(chatID, pendingMessage(pending))
}

func pendingMessage(pending *models.PendingQuestion) string {
	var sb strings.Builder
	sb.WriteString("<b>New question awaiting review</b>\n")
	fmt.Fprintf(&sb, "Category: <code>%s</code>\n", html.EscapeString(pending.CategoryID))
	fmt.Fprintf(&sb, "Question: %s\n", html.EscapeString(pending.Text))
	fmt.Fprintf(&sb, "Answer: %s\n", html.EscapeString(pending.Answer))
	fmt.Fprintf(&sb, "Difficulty: %s\n", pending.Difficulty)
	if len(pending.Options) > 0 {
		fmt.Fprintf(&sb, "Options: %s\n", html.EscapeString(strings.Join(pending.Options, " | ")))
	}
	fmt.Fprintf(&sb, "ID: <code>%s</code>", pending.ID)
	return sb.String()
}
