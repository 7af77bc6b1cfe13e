package handlers

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vladimiradmaev/health-tracker/internal/bot/state"
	"github.com/vladimiradmaev/health-tracker/internal/logger"
)

// UpdateHandler handles telegram updates and coordinates other handlers
type UpdateHandler struct {
	api             BotAPI
	allowed         map[int64]struct{}
	callbackHandler *CallbackHandler
	commandHandler  *CommandHandler
	textHandler     *TextHandler
}

// NewUpdateHandler creates a new update handler. An empty allowedChatIDs
// lets every chat through.
func NewUpdateHandler(api BotAPI, deps Dependencies, stateManager state.StateManager, allowedChatIDs []int64) *UpdateHandler {
	allowed := make(map[int64]struct{}, len(allowedChatIDs))
	for _, id := range allowedChatIDs {
		allowed[id] = struct{}{}
	}
	return &UpdateHandler{
		api:             api,
		allowed:         allowed,
		callbackHandler: NewCallbackHandler(api, deps, stateManager),
		commandHandler:  NewCommandHandler(api, deps, stateManager),
		textHandler:     NewTextHandler(api, deps, stateManager),
	}
}

// Handle processes a telegram update
func (h *UpdateHandler) Handle(ctx context.Context, update tgbotapi.Update) error {
	chatID, ok := updateChatID(update)
	if !ok {
		return nil
	}
	if !h.chatAllowed(chatID) {
		logger.Warn("Ignoring update from chat outside the allow list", "chat_id", chatID)
		return nil
	}

	if update.CallbackQuery != nil {
		return h.callbackHandler.Handle(ctx, update.CallbackQuery)
	}

	if update.Message != nil {
		if update.Message.IsCommand() {
			return h.commandHandler.Handle(ctx, update.Message)
		}
		if update.Message.Text != "" {
			return h.textHandler.Handle(ctx, update.Message)
		}
	}

	return nil
}

// updateChatID reports the chat of a message or callback that has a sender
func updateChatID(update tgbotapi.Update) (int64, bool) {
	switch {
	case update.CallbackQuery != nil:
		q := update.CallbackQuery
		if q.From == nil || q.Message == nil || q.Message.Chat == nil {
			return 0, false
		}
		return q.Message.Chat.ID, true
	case update.Message != nil:
		m := update.Message
		if m.From == nil || m.Chat == nil {
			return 0, false
		}
		return m.Chat.ID, true
	default:
		return 0, false
	}
}

func (h *UpdateHandler) chatAllowed(chatID int64) bool {
	if len(h.allowed) == 0 {
		return true
	}
	_, ok := h.allowed[chatID]
	return ok
}
