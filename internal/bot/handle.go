package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/roteirista/roteirista/internal/chunk"
	"github.com/roteirista/roteirista/internal/groq"
	"github.com/roteirista/roteirista/internal/log"
	"github.com/roteirista/roteirista/internal/session"
	"github.com/roteirista/roteirista/internal/telegram"
)

// handleMessage routes one inbound message. It never returns an error:
// every failure ends as a user-facing reply plus a log entry.
func (b *Bot) handleMessage(ctx context.Context, msg *telegram.Message) {
	chatID := msg.Chat.ID
	logger := b.logger.With(
		"correlation_id", uuid.NewString(),
		"chat_id", chatID,
	)

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}

	if !strings.HasPrefix(text, "/") {
		b.handleGenerate(ctx, logger, chatID, text)
		return
	}

	name, args, rest := parseCommand(text)
	switch name {
	case "/salvar":
		title := rest
		if title == "" {
			title = defaultTitle
		}
		b.handleSave(ctx, logger, chatID, title)
	case "/carregar":
		b.handleList(ctx, logger, chatID)
	case "/carregar_roteiro":
		b.handleLoad(ctx, logger, chatID, args)
	case "/help":
		b.reply(ctx, logger, chatID, helpText)
	default:
		// Not a recognized command: treat as a plain request.
		b.handleGenerate(ctx, logger, chatID, text)
	}
}

// parseCommand splits "/cmd arg1 arg2" into the command name (with any
// "@botname" suffix removed), the whitespace-separated arguments, and the
// raw remainder with inner spacing preserved.
func parseCommand(text string) (name string, args []string, rest string) {
	fields := strings.Fields(text)
	name = fields[0]
	if at := strings.IndexByte(name, '@'); at > 0 {
		name = name[:at]
	}
	args = fields[1:]
	rest = strings.TrimSpace(strings.TrimPrefix(text, fields[0]))
	return name, args, rest
}

// handleGenerate forwards the request to the generation client and, on
// success, overwrites the chat's draft and previews it in chunks.
// On failure the draft is left unchanged.
func (b *Bot) handleGenerate(ctx context.Context, logger log.Logger, chatID int64, request string) {
	script, err := b.generator.Generate(ctx, request)
	if err != nil {
		logger.Warn("generation failed", "error", err)
		b.reply(ctx, logger, chatID, generationErrorMessage(err))
		return
	}

	b.sessions.SetDraft(chatID, script)
	logger.Info("draft updated", "script_bytes", len(script))
	b.reply(ctx, logger, chatID, script)
}

// generationErrorMessage maps a generation failure to one user message.
func generationErrorMessage(err error) string {
	var provErr *groq.ProviderError
	switch {
	case errors.As(err, &provErr):
		return fmt.Sprintf("❌ Erro na API Groq: %d %s", provErr.StatusCode, provErr.Message)
	case errors.Is(err, groq.ErrEmptyResponse):
		return msgEmptyResponse
	default:
		return fmt.Sprintf("❌ Erro ao chamar API Groq: %v", err)
	}
}

// handleSave turns the chat's draft into a Notion page: one page create,
// then the draft appended as paragraph blocks. Blocks appended before a
// mid-sequence failure stay on the page; the user sees the first failure.
func (b *Bot) handleSave(ctx context.Context, logger log.Logger, chatID int64, title string) {
	draft, err := b.sessions.Draft(chatID)
	if err != nil {
		b.reply(ctx, logger, chatID, msgNoDraft)
		return
	}

	pageID, err := b.repo.CreatePage(ctx, title, b.now())
	if err != nil {
		logger.Warn("page creation failed", "error", err)
		b.reply(ctx, logger, chatID, fmt.Sprintf("❌ Erro ao salvar no Notion: %v", err))
		return
	}
	b.sessions.SetSavedPage(chatID, pageID)

	if err := b.repo.AppendParagraphs(ctx, pageID, draft); err != nil {
		logger.Warn("block append failed", "page_id", pageID, "error", err)
		b.reply(ctx, logger, chatID, fmt.Sprintf("❌ Erro ao salvar blocos no Notion: %v", err))
		return
	}

	logger.Info("script saved", "page_id", pageID, "title", title)
	b.reply(ctx, logger, chatID, fmt.Sprintf("✅ Roteiro salvo no Notion!\n🎬 Vídeo: %s", title))
}

// handleList queries the database and caches the listing, replacing any
// previous one. The cached listing is what /carregar_roteiro indexes
// into, so it is cached even when empty.
func (b *Bot) handleList(ctx context.Context, logger log.Logger, chatID int64) {
	pages, err := b.repo.Query(ctx)
	if err != nil {
		logger.Warn("listing query failed", "error", err)
		b.reply(ctx, logger, chatID, fmt.Sprintf("❌ Erro ao carregar: %v", err))
		return
	}

	listing := make([]session.RecordSummary, 0, len(pages))
	for _, p := range pages {
		listing = append(listing, session.RecordSummary{ID: p.ID, Title: p.Title()})
	}
	b.sessions.SetListing(chatID, listing)

	if len(listing) == 0 {
		b.reply(ctx, logger, chatID, msgNoVideos)
		return
	}

	var sb strings.Builder
	sb.WriteString(msgListingHeader)
	for i, rec := range listing {
		fmt.Fprintf(&sb, "\n%d. %s", i+1, rec.Title)
	}
	b.reply(ctx, logger, chatID, sb.String())
}

// handleLoad reads back the script selected by its 1-based listing index.
func (b *Bot) handleLoad(ctx context.Context, logger log.Logger, chatID int64, args []string) {
	listing, err := b.sessions.Listing(chatID)
	if err != nil {
		b.reply(ctx, logger, chatID, msgUseCarregar)
		return
	}

	if len(args) == 0 {
		b.reply(ctx, logger, chatID, msgMissingIndex)
		return
	}

	index, err := strconv.Atoi(args[0])
	if err != nil {
		b.reply(ctx, logger, chatID, msgInvalidIndex)
		return
	}
	if index < 1 || index > len(listing) {
		b.reply(ctx, logger, chatID, msgIndexOutOfList)
		return
	}

	rec := listing[index-1]
	content, err := b.repo.PageContent(ctx, rec.ID)
	if err != nil {
		logger.Warn("script read failed", "page_id", rec.ID, "error", err)
		b.reply(ctx, logger, chatID, fmt.Sprintf("❌ Erro ao carregar roteiro: %v", err))
		return
	}

	b.reply(ctx, logger, chatID, fmt.Sprintf("🎬 %s\n\n%s", rec.Title, content))
}

// reply sends text to the chat, split into transport-sized messages.
// Send failures are logged; there is nothing further to tell the user.
func (b *Bot) reply(ctx context.Context, logger log.Logger, chatID int64, text string) {
	for _, part := range chunk.Split(text, telegram.MaxMessageLen) {
		if err := b.transport.SendMessage(ctx, chatID, part); err != nil {
			logger.Warn("sending reply failed", "error", err)
			return
		}
	}
}
