package services

import (
	"context"
	"log"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
)

type MessageManager struct {
	tg       TelegramAPI
	maxRetry int
}

func NewMessageManager(tg TelegramAPI) *MessageManager {
	return &MessageManager{
		tg:       tg,
		maxRetry: 2,
	}
}

func (m *MessageManager) SendWithRetry(ctx context.Context, params *bot.SendMessageParams) (*tgmodels.Message, error) {
	var lastErr error
	for attempt := 0; attempt < m.maxRetry; attempt++ {
		msg, err := m.tg.SendMessage(ctx, params)
		if err == nil {
			return msg, nil
		}
		lastErr = err
	}
	log.Printf("[MSG] Failed to send message to %v after %d attempts: %v", params.ChatID, m.maxRetry, lastErr)
	return nil, lastErr
}

func (m *MessageManager) SendPhotoWithRetry(ctx context.Context, params *bot.SendPhotoParams) (*tgmodels.Message, error) {
	var lastErr error
	for attempt := 0; attempt < m.maxRetry; attempt++ {
		msg, err := m.tg.SendPhoto(ctx, params)
		if err == nil {
			return msg, nil
		}
		lastErr = err
	}
	log.Printf("[MSG] Failed to send photo to %v after %d attempts: %v", params.ChatID, m.maxRetry, lastErr)
	return nil, lastErr
}
