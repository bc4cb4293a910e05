package services

import (
	"context"

	"github.com/ad/go-telegram-blog/internal/models"
	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
)

// TelegramAPI is the slice of the bot API the services and handlers use,
// so tests can record outbound calls instead of hitting the network.
type TelegramAPI interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*tgmodels.Message, error)
	SendPhoto(ctx context.Context, params *bot.SendPhotoParams) (*tgmodels.Message, error)
	EditMessageText(ctx context.Context, params *bot.EditMessageTextParams) (*tgmodels.Message, error)
	AnswerCallbackQuery(ctx context.Context, params *bot.AnswerCallbackQueryParams) (bool, error)
	GetFile(ctx context.Context, params *bot.GetFileParams) (*tgmodels.File, error)
}

var _ TelegramAPI = (*bot.Bot)(nil)

// BlogAPI is the outbound publishing surface, implemented by blog.Client.
type BlogAPI interface {
	Meta(ctx context.Context) (*models.BlogMeta, error)
	CreatePost(ctx context.Context, draft *models.Draft, image []byte) (string, error)
}
