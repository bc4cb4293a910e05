package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/ad/go-telegram-blog/internal/models"
	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
)

const fileDownloadTimeout = 30 * time.Second

// Publisher finalizes a completed draft: it pushes the post to the blog
// API and, when a channel is configured, announces it there.
type Publisher struct {
	tg         TelegramAPI
	msgMgr     *MessageManager
	blog       BlogAPI
	botToken   string
	channelID  string
	fileBase   string
	httpClient *http.Client
}

func NewPublisher(tg TelegramAPI, msgMgr *MessageManager, blogAPI BlogAPI, botToken, channelID string) *Publisher {
	return &Publisher{
		tg:         tg,
		msgMgr:     msgMgr,
		blog:       blogAPI,
		botToken:   botToken,
		channelID:  channelID,
		fileBase:   "https://api.telegram.org/file/bot",
		httpClient: &http.Client{Timeout: fileDownloadTimeout},
	}
}

// ChannelConfigured reports whether announcements go anywhere.
func (p *Publisher) ChannelConfigured() bool {
	return p.channelID != ""
}

// Publish pushes the draft to the blog API and returns the post URL.
// When the draft carries a cover image, the bytes are fetched from
// Telegram first; a download failure counts as a publish failure.
func (p *Publisher) Publish(ctx context.Context, draft *models.Draft) (string, error) {
	var image []byte
	if draft.HasPhoto() {
		data, err := p.downloadPhoto(ctx, draft.PhotoFileID)
		if err != nil {
			return "", fmt.Errorf("failed to fetch cover image: %w", err)
		}
		image = data
	}

	url, err := p.blog.CreatePost(ctx, draft, image)
	if err != nil {
		return "", err
	}

	log.Printf("[PUBLISHER] Published %q for user %d: %s", draft.Title, draft.UserID, url)
	return url, nil
}

// Announce posts the announcement to the configured channel. It is a
// no-op when no channel is configured.
func (p *Publisher) Announce(ctx context.Context, draft *models.Draft, url string) error {
	if p.channelID == "" {
		return nil
	}

	caption := fmt.Sprintf("🆕 %s\n\n%s\n\n%s", draft.Title, draft.Preview(), url)

	var err error
	if draft.HasPhoto() {
		_, err = p.msgMgr.SendPhotoWithRetry(ctx, &bot.SendPhotoParams{
			ChatID:  p.channelID,
			Photo:   &tgmodels.InputFileString{Data: draft.PhotoFileID},
			Caption: caption,
		})
	} else {
		_, err = p.msgMgr.SendWithRetry(ctx, &bot.SendMessageParams{
			ChatID: p.channelID,
			Text:   caption,
		})
	}
	if err != nil {
		log.Printf("[PUBLISHER] Channel announcement failed for %q: %v", draft.Title, err)
	}
	return err
}

func (p *Publisher) downloadPhoto(ctx context.Context, fileID string) ([]byte, error) {
	file, err := p.tg.GetFile(ctx, &bot.GetFileParams{FileID: fileID})
	if err != nil {
		return nil, err
	}

	url := p.fileBase + p.botToken + "/" + file.FilePath
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("file download returned %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
