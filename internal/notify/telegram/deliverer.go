// Package telegram delivers milestone notifications as Telegram chat messages.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/goodnatureofminers/txconfirm-backend/internal/clock"
	"github.com/goodnatureofminers/txconfirm-backend/internal/model"
	"go.uber.org/zap"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	MessageSender interface {
		SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	}
	Pacer interface {
		Wait(ctx context.Context, owner string) error
	}
)

const (
	maxAttempts = 3
	baseBackoff = time.Second
)

// ErrUndeliverable marks chats that will never accept the message (blocked bot, deleted chat).
var ErrUndeliverable = errors.New("chat is undeliverable")

// Deliverer sends formatted milestone messages. Owners are Telegram chat ids.
type Deliverer struct {
	sender MessageSender
	pacer  Pacer
	logger *zap.Logger
	sleep  clock.SleepFunc
}

// NewDeliverer builds a Deliverer.
func NewDeliverer(sender MessageSender, pacer Pacer, logger *zap.Logger) (*Deliverer, error) {
	if sender == nil {
		return nil, errors.New("telegram sender is required")
	}
	if pacer == nil {
		return nil, errors.New("telegram pacer is required")
	}
	return &Deliverer{
		sender: sender,
		pacer:  pacer,
		logger: logger.Named("telegram"),
		sleep:  clock.Sleep,
	}, nil
}

// RequestNotify sends the message, retrying transient failures with backoff and honoring 429 retry hints.
func (d *Deliverer) RequestNotify(ctx context.Context, owner string, milestone model.Milestone, n model.Notification) error {
	chatID, err := strconv.ParseInt(owner, 10, 64)
	if err != nil {
		return fmt.Errorf("owner %q is not a chat id: %w", owner, ErrUndeliverable)
	}
	params := &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      Format(milestone, n),
		ParseMode: models.ParseModeHTML,
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err := d.pacer.Wait(ctx, owner); err != nil {
			return err
		}
		_, err := d.sender.SendMessage(ctx, params)
		if err == nil {
			return nil
		}
		lastErr = err

		if errors.Is(err, bot.ErrorForbidden) || errors.Is(err, bot.ErrorNotFound) {
			d.logger.Warn("chat unreachable", zap.Int64("chat", chatID), zap.Error(err))
			return fmt.Errorf("%w: %v", ErrUndeliverable, err)
		}

		delay := baseBackoff << attempt
		var tooMany *bot.TooManyRequestsError
		if errors.As(err, &tooMany) && tooMany.RetryAfter > 0 {
			delay = time.Duration(tooMany.RetryAfter) * time.Second
		}
		if attempt == maxAttempts-1 {
			break
		}
		d.logger.Warn("send failed, retrying",
			zap.Int64("chat", chatID),
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
		if err := d.sleep(ctx, delay); err != nil {
			return err
		}
	}
	return fmt.Errorf("send to chat %d: %w", chatID, lastErr)
}
