package handler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/ElarizT/Mavericks/internal/domain"
	"github.com/ElarizT/Mavericks/internal/middleware"
	tg "github.com/ElarizT/Mavericks/internal/telegram"
)

// handleModel lists the configured models and marks the one messages go to.
func (h *Handler) handleModel(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	chatID := update.Message.Chat.ID
	configs, err := h.models.Configs(ctx)
	if err != nil {
		slog.Error("list model configs", "chat_id", chatID, "error", err)
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   userMessage(err),
		})
		return
	}

	var active *domain.ProviderConfig
	if ctrl := middleware.GetSession(ctx); ctrl != nil {
		active = ctrl.State().Model
	}

	if err := tg.SendLongMessage(ctx, b, chatID, modelsText(active, configs), nil); err != nil {
		slog.Error("send models", "chat_id", chatID, "error", err)
	}
}

func modelsText(active *domain.ProviderConfig, configs []domain.ProviderConfig) string {
	if len(configs) == 0 {
		return "🤖 No models are configured."
	}

	var sb strings.Builder
	sb.WriteString("🤖 *Models*\n")
	for i, p := range configs {
		sb.WriteString(fmt.Sprintf("\n%s\n", p.Provider))
		for j, m := range p.Configs {
			mark := "•"
			if active != nil && active.Provider == p.Provider && active.LLMName() == m.Name && i == 0 && j == 0 {
				mark = "✅"
			}
			line := fmt.Sprintf("%s %s", mark, m.Name)
			if m.Model != "" && m.Model != m.Name {
				line += fmt.Sprintf(" (%s)", m.Model)
			}
			sb.WriteString(line + "\n")
		}
	}
	if active == nil || !active.Usable() {
		sb.WriteString("\nNo model is active for this session.")
	}
	return strings.TrimRight(sb.String(), "\n")
}
