// Package bot is the conversation controller.
//
// It routes inbound Telegram messages to the generation client, the
// session store and the Notion repository, and formats every outbound
// reply through the chunker so the transport never sees an oversized
// message.
//
// Per-chat state machine: a chat starts empty; the first successful
// generation gives it a draft; /salvar turns the draft into a saved
// Notion page; /carregar caches a listing that /carregar_roteiro indexes
// into. Every external failure becomes exactly one user-facing message
// and never terminates the process.
package bot

import (
	"context"
	"time"

	"github.com/roteirista/roteirista/internal/log"
	"github.com/roteirista/roteirista/internal/notion"
	"github.com/roteirista/roteirista/internal/session"
	"github.com/roteirista/roteirista/internal/telegram"
)

// Generator produces a script from the user's free-text request.
type Generator interface {
	Generate(ctx context.Context, userMessage string) (string, error)
}

// Repository stores and retrieves script pages.
type Repository interface {
	CreatePage(ctx context.Context, title string, createdAt time.Time) (string, error)
	AppendParagraphs(ctx context.Context, pageID, text string) error
	Query(ctx context.Context) ([]notion.Page, error)
	PageContent(ctx context.Context, pageID string) (string, error)
}

// Transport delivers inbound updates and accepts outbound sends.
type Transport interface {
	Updates(ctx context.Context, offset int64) ([]telegram.Update, error)
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// Bot wires the controller's collaborators together.
type Bot struct {
	transport Transport
	generator Generator
	repo      Repository
	sessions  *session.Store
	logger    log.Logger

	// now is stubbed in tests; production uses time.Now.
	now func() time.Time
}

// New creates the controller.
func New(transport Transport, generator Generator, repo Repository, sessions *session.Store, logger log.Logger) *Bot {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Bot{
		transport: transport,
		generator: generator,
		repo:      repo,
		sessions:  sessions,
		logger:    logger,
		now:       time.Now,
	}
}
