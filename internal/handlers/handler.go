package handlers

import (
	"context"
	"fmt"
	"log"
	"runtime/debug"
	"strings"

	"github.com/ad/go-telegram-blog/internal/db"
	"github.com/ad/go-telegram-blog/internal/fsm"
	"github.com/ad/go-telegram-blog/internal/models"
	"github.com/ad/go-telegram-blog/internal/services"
	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
)

// BotHandler is the dispatcher: it routes every incoming update to
// command handling, the current draft step, or a callback action.
type BotHandler struct {
	tg        services.TelegramAPI
	drafts    *db.DraftRepository
	pubs      *db.PublicationRepository
	msgMgr    *services.MessageManager
	publisher *services.Publisher
	blog      services.BlogAPI
}

func NewBotHandler(
	tg services.TelegramAPI,
	drafts *db.DraftRepository,
	pubs *db.PublicationRepository,
	msgMgr *services.MessageManager,
	publisher *services.Publisher,
	blogAPI services.BlogAPI,
) *BotHandler {
	return &BotHandler{
		tg:        tg,
		drafts:    drafts,
		pubs:      pubs,
		msgMgr:    msgMgr,
		publisher: publisher,
		blog:      blogAPI,
	}
}

// HandleUpdate is the single entry point registered with the bot.
func (h *BotHandler) HandleUpdate(ctx context.Context, _ *bot.Bot, update *tgmodels.Update) {
	defer h.recoverPanic(ctx, update)

	if update.Message != nil {
		h.handleMessage(ctx, update.Message)
	} else if update.CallbackQuery != nil {
		h.handleCallback(ctx, update.CallbackQuery)
	}
}

func (h *BotHandler) recoverPanic(ctx context.Context, update *tgmodels.Update) {
	r := recover()
	if r == nil {
		return
	}

	log.Printf("[HANDLER] Panic while handling update: %v\n%s", r, debug.Stack())

	var chatID int64
	if update.Message != nil {
		chatID = update.Message.Chat.ID
	} else if update.CallbackQuery != nil && update.CallbackQuery.Message.Message != nil {
		chatID = update.CallbackQuery.Message.Message.Chat.ID
	}
	if chatID != 0 {
		h.msgMgr.SendWithRetry(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "⚠️ Something went wrong, please try again.",
		})
	}
}

func (h *BotHandler) handleMessage(ctx context.Context, msg *tgmodels.Message) {
	if msg.From == nil {
		return
	}

	userID := msg.From.ID
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)

	switch commandOf(text) {
	case "/start", "/new":
		h.handleNew(ctx, userID, chatID)
		return
	case "/status":
		h.handleStatus(ctx, userID, chatID)
		return
	case "/cancel":
		h.handleCancel(ctx, userID, chatID)
		return
	case "/back":
		h.handleBack(ctx, userID, chatID)
		return
	case "/skip":
		h.handleSkip(ctx, userID, chatID)
		return
	}

	if len(msg.Photo) > 0 {
		h.handlePhoto(ctx, userID, chatID, msg.Photo)
		return
	}

	if msg.MediaGroupID != "" {
		return
	}

	if text != "" {
		h.handleText(ctx, userID, chatID, text)
	}
}

// commandOf maps slash commands and their reply-keyboard synonyms onto a
// canonical command; it returns "" for free text.
func commandOf(text string) string {
	switch text {
	case services.ButtonNewPost:
		return "/new"
	case services.ButtonStatus:
		return "/status"
	case services.ButtonBack:
		return "/back"
	case services.ButtonSkip:
		return "/skip"
	case services.ButtonCancel:
		return "/cancel"
	}
	if strings.HasPrefix(text, "/") {
		cmd := text
		if i := strings.IndexAny(cmd, " @"); i > 0 {
			cmd = cmd[:i]
		}
		switch cmd {
		case "/start", "/new", "/status", "/cancel", "/back", "/skip":
			return cmd
		}
	}
	return ""
}

// handleNew starts a fresh draft. A draft already in progress is reset.
func (h *BotHandler) handleNew(ctx context.Context, userID, chatID int64) {
	draft := &models.Draft{UserID: userID, Step: fsm.StepTitle}
	if err := h.drafts.Save(draft); err != nil {
		h.sendError(ctx, chatID, "Failed to start a new post")
		return
	}

	h.msgMgr.SendWithRetry(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        "📝 New post. Send the title.",
		ReplyMarkup: services.MainReplyKeyboard(),
	})
}

func (h *BotHandler) handleStatus(ctx context.Context, userID, chatID int64) {
	draft, err := h.drafts.Get(userID)
	if err != nil {
		h.sendError(ctx, chatID, "Failed to look up your draft")
		return
	}

	var text string
	if draft == nil {
		published, _ := h.pubs.CountByUser(userID)
		text = fmt.Sprintf("No draft in progress. Posts published: %d. Send /new to start.", published)
	} else {
		text = "Current step: " + fsm.StepName(draft.Step)
	}

	h.msgMgr.SendWithRetry(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ReplyMarkup: services.MainReplyKeyboard(),
	})
}

func (h *BotHandler) handleCancel(ctx context.Context, userID, chatID int64) {
	if err := h.drafts.Clear(userID); err != nil {
		h.sendError(ctx, chatID, "Failed to cancel the draft")
		return
	}

	h.msgMgr.SendWithRetry(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        "Cancelled. Start again with /new.",
		ReplyMarkup: services.MainReplyKeyboard(),
	})
}

func (h *BotHandler) handleBack(ctx context.Context, userID, chatID int64) {
	draft, err := h.drafts.Get(userID)
	if err != nil || draft == nil {
		h.sendIdleHint(ctx, chatID)
		return
	}

	draft.Step = fsm.PrevStep(draft.Step)
	if err := h.drafts.Save(draft); err != nil {
		h.sendError(ctx, chatID, "Failed to step back")
		return
	}

	h.msgMgr.SendWithRetry(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        "Went back. Current step: " + fsm.StepName(draft.Step),
		ReplyMarkup: services.MainReplyKeyboard(),
	})
}

func (h *BotHandler) handleSkip(ctx context.Context, userID, chatID int64) {
	draft, err := h.drafts.Get(userID)
	if err != nil || draft == nil {
		h.sendIdleHint(ctx, chatID)
		return
	}

	if draft.Step != fsm.StepImage {
		h.msgMgr.SendWithRetry(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "Skip only applies at the cover image step.",
		})
		return
	}

	draft.PhotoFileID = ""
	h.advanceToCategory(ctx, chatID, draft, "Image skipped. Choose a category:")
}

func (h *BotHandler) handleText(ctx context.Context, userID, chatID int64, text string) {
	draft, err := h.drafts.Get(userID)
	if err != nil {
		h.sendError(ctx, chatID, "Failed to look up your draft")
		return
	}
	if draft == nil {
		h.sendIdleHint(ctx, chatID)
		return
	}

	switch draft.Step {
	case fsm.StepTitle:
		draft.Title = text
		draft.Step = fsm.StepBody
		h.saveAndPrompt(ctx, chatID, draft, "✅ Title saved. Now send the body.")
	case fsm.StepBody:
		draft.Body = text
		draft.Step = fsm.StepDesc
		h.saveAndPrompt(ctx, chatID, draft, "✅ Body saved. Now send a short description.")
	case fsm.StepDesc:
		draft.Description = text
		draft.Step = fsm.StepImage
		h.saveAndPrompt(ctx, chatID, draft, "✅ Description saved. Send a cover photo, or /skip.")
	case fsm.StepImage:
		h.msgMgr.SendWithRetry(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "📷 Send a photo for the cover, or /skip.",
		})
	case fsm.StepCategory:
		h.msgMgr.SendWithRetry(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "Pick a category with the buttons above.",
		})
	case fsm.StepTags:
		h.msgMgr.SendWithRetry(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "Toggle tags with the buttons above, then press ✅ Done.",
		})
	}
}

func (h *BotHandler) handlePhoto(ctx context.Context, userID, chatID int64, photos []tgmodels.PhotoSize) {
	draft, err := h.drafts.Get(userID)
	if err != nil || draft == nil {
		h.sendIdleHint(ctx, chatID)
		return
	}

	if draft.Step != fsm.StepImage {
		h.msgMgr.SendWithRetry(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "📷 A photo isn't expected at this step.",
		})
		return
	}

	// The last PhotoSize is the largest rendition.
	draft.PhotoFileID = photos[len(photos)-1].FileID
	h.advanceToCategory(ctx, chatID, draft, "✅ Photo saved. Choose a category:")
}

func (h *BotHandler) advanceToCategory(ctx context.Context, chatID int64, draft *models.Draft, prompt string) {
	draft.Step = fsm.StepCategory
	if err := h.drafts.Save(draft); err != nil {
		h.sendError(ctx, chatID, "Failed to save the draft")
		return
	}

	meta, err := h.blog.Meta(ctx)
	if err != nil {
		log.Printf("[HANDLER] Meta fetch failed for user %d: %v", draft.UserID, err)
		h.sendError(ctx, chatID, "Failed to load categories, send /back to retry or /cancel")
		return
	}

	h.msgMgr.SendWithRetry(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        prompt,
		ReplyMarkup: services.CategoryKeyboard(meta.Categories),
	})
}

func (h *BotHandler) saveAndPrompt(ctx context.Context, chatID int64, draft *models.Draft, text string) {
	if err := h.drafts.Save(draft); err != nil {
		h.sendError(ctx, chatID, "Failed to save the draft")
		return
	}
	h.msgMgr.SendWithRetry(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
}

func (h *BotHandler) sendIdleHint(ctx context.Context, chatID int64) {
	h.msgMgr.SendWithRetry(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        "No post in progress. Send /new to start one.",
		ReplyMarkup: services.MainReplyKeyboard(),
	})
}

func (h *BotHandler) sendError(ctx context.Context, chatID int64, text string) {
	h.msgMgr.SendWithRetry(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   "❌ " + text,
	})
}

func (h *BotHandler) handleCallback(ctx context.Context, callback *tgmodels.CallbackQuery) {
	defer h.tg.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callback.ID,
	})

	msg := callback.Message.Message
	if msg == nil {
		return
	}

	userID := callback.From.ID
	chatID := msg.Chat.ID
	data := callback.Data

	switch {
	case strings.HasPrefix(data, "cat:"):
		h.handleCategoryCallback(ctx, userID, chatID, msg.ID, strings.TrimPrefix(data, "cat:"))
	case data == "tag:done":
		h.handleDoneCallback(ctx, userID, chatID, msg.ID)
	case strings.HasPrefix(data, "tag:"):
		h.handleTagCallback(ctx, userID, chatID, msg.ID, strings.TrimPrefix(data, "tag:"))
	}
}

func (h *BotHandler) handleCategoryCallback(ctx context.Context, userID, chatID int64, messageID int, slug string) {
	draft, err := h.drafts.Get(userID)
	if err != nil || draft == nil || draft.Step != fsm.StepCategory {
		return
	}

	draft.CategorySlug = slug
	draft.Step = fsm.StepTags
	draft.SelectedTags = nil

	meta, err := h.blog.Meta(ctx)
	if err != nil {
		log.Printf("[HANDLER] Meta fetch failed for user %d: %v", userID, err)
		// Leave the category keyboard in place so the user can tap again.
		h.sendError(ctx, chatID, "Failed to load tags, tap the category again")
		return
	}
	draft.MetaTags = meta.Tags

	if err := h.drafts.Save(draft); err != nil {
		h.sendError(ctx, chatID, "Failed to save the draft")
		return
	}

	h.editMessage(ctx, chatID, messageID, "Select tags:", services.TagKeyboard(draft.MetaTags, nil))
}

func (h *BotHandler) handleTagCallback(ctx context.Context, userID, chatID int64, messageID int, slug string) {
	draft, err := h.drafts.Get(userID)
	if err != nil || draft == nil || draft.Step != fsm.StepTags {
		return
	}

	draft.ToggleTag(slug)
	if err := h.drafts.Save(draft); err != nil {
		h.sendError(ctx, chatID, "Failed to save the draft")
		return
	}

	h.editMessage(ctx, chatID, messageID, "Select tags:", services.TagKeyboard(draft.MetaTags, draft.SelectedTags))
}

func (h *BotHandler) handleDoneCallback(ctx context.Context, userID, chatID int64, messageID int) {
	draft, err := h.drafts.Get(userID)
	if err != nil || draft == nil || draft.Step != fsm.StepTags {
		return
	}

	h.editMessage(ctx, chatID, messageID, "⏳ Publishing...", nil)
	h.finalize(ctx, userID, chatID, draft)
}

// finalize publishes the draft and clears it. The draft is discarded on
// failure too; a failed publish is reported, never retried.
func (h *BotHandler) finalize(ctx context.Context, userID, chatID int64, draft *models.Draft) {
	url, err := h.publisher.Publish(ctx, draft)
	if err != nil {
		log.Printf("[HANDLER] Publish failed for user %d: %v", userID, err)
		if clearErr := h.drafts.Clear(userID); clearErr != nil {
			log.Printf("[HANDLER] Failed to clear draft for user %d: %v", userID, clearErr)
		}
		h.msgMgr.SendWithRetry(ctx, &bot.SendMessageParams{
			ChatID:      chatID,
			Text:        fmt.Sprintf("❌ Publish failed: %v\nThe draft was discarded, start again with /new.", err),
			ReplyMarkup: services.MainReplyKeyboard(),
		})
		return
	}

	announceErr := h.publisher.Announce(ctx, draft, url)

	if err := h.pubs.Add(userID, draft.Title, url); err != nil {
		log.Printf("[HANDLER] Failed to record publication for user %d: %v", userID, err)
	}
	if err := h.drafts.Clear(userID); err != nil {
		log.Printf("[HANDLER] Failed to clear draft for user %d: %v", userID, err)
	}

	text := "✅ Post published: " + url
	if h.publisher.ChannelConfigured() {
		if announceErr != nil {
			text += "\n⚠️ Channel announcement failed, the post itself is live."
		} else {
			text += "\n📣 Announced to the channel."
		}
	}

	h.msgMgr.SendWithRetry(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ReplyMarkup: services.MainReplyKeyboard(),
	})
}

func (h *BotHandler) editMessage(ctx context.Context, chatID int64, messageID int, text string, keyboard *tgmodels.InlineKeyboardMarkup) {
	params := &bot.EditMessageTextParams{
		ChatID:    chatID,
		MessageID: messageID,
		Text:      text,
	}
	if keyboard != nil {
		params.ReplyMarkup = keyboard
	}
	if _, err := h.tg.EditMessageText(ctx, params); err != nil {
		log.Printf("[HANDLER] Failed to edit message %d in chat %d: %v", messageID, chatID, err)
	}
}
