package bot

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/roteirista/roteirista/internal/groq"
	"github.com/roteirista/roteirista/internal/log"
	"github.com/roteirista/roteirista/internal/notion"
	"github.com/roteirista/roteirista/internal/session"
	"github.com/roteirista/roteirista/internal/telegram"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type sentMessage struct {
	chatID int64
	text   string
}

type fakeTransport struct {
	mu      sync.Mutex
	sent    []sentMessage
	updates chan []telegram.Update
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{updates: make(chan []telegram.Update, 8)}
}

func (f *fakeTransport) Updates(ctx context.Context, offset int64) ([]telegram.Update, error) {
	select {
	case batch := <-f.updates:
		return batch, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f *fakeTransport) SendMessage(ctx context.Context, chatID int64, text string) error {
	if len(text) > telegram.MaxMessageLen {
		return fmt.Errorf("message of %d bytes exceeds transport limit", len(text))
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{chatID: chatID, text: text})
	return nil
}

func (f *fakeTransport) sentTexts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	texts := make([]string, len(f.sent))
	for i, s := range f.sent {
		texts[i] = s.text
	}
	return texts
}

func (f *fakeTransport) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type fakeGenerator struct {
	text string
	err  error

	mu       sync.Mutex
	requests []string
}

func (f *fakeGenerator) Generate(ctx context.Context, userMessage string) (string, error) {
	f.mu.Lock()
	f.requests = append(f.requests, userMessage)
	f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

type fakeRepo struct {
	pages      []notion.Page
	content    string
	createErr  error
	appendErr  error
	queryErr   error
	contentErr error

	createCalls   int
	createdTitle  string
	createdAt     time.Time
	appendedPage  string
	appendedText  string
	contentPageID string
}

func (f *fakeRepo) CreatePage(ctx context.Context, title string, createdAt time.Time) (string, error) {
	f.createCalls++
	f.createdTitle = title
	f.createdAt = createdAt
	if f.createErr != nil {
		return "", f.createErr
	}
	return "page-new", nil
}

func (f *fakeRepo) AppendParagraphs(ctx context.Context, pageID, text string) error {
	f.appendedPage = pageID
	f.appendedText = text
	return f.appendErr
}

func (f *fakeRepo) Query(ctx context.Context) ([]notion.Page, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.pages, nil
}

func (f *fakeRepo) PageContent(ctx context.Context, pageID string) (string, error) {
	f.contentPageID = pageID
	if f.contentErr != nil {
		return "", f.contentErr
	}
	return f.content, nil
}

func newTestBot(gen *fakeGenerator, repo *fakeRepo) (*Bot, *fakeTransport) {
	transport := newFakeTransport()
	b := New(transport, gen, repo, session.New(0, log.NewNop()), log.NewNop())
	b.now = func() time.Time { return time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC) }
	return b, transport
}

func msg(chatID int64, text string) *telegram.Message {
	return &telegram.Message{MessageID: 1, Text: text, Chat: telegram.Chat{ID: chatID}}
}

func titledPage(id, title string) notion.Page {
	return notion.Page{
		ID: id,
		Properties: map[string]notion.Property{
			"Título": {Type: "title", Title: []notion.RichText{{PlainText: title}}},
		},
	}
}

func TestGenerate_PreviewChunking(t *testing.T) {
	script := strings.Repeat("r", 9000)
	gen := &fakeGenerator{text: script}
	b, transport := newTestBot(gen, &fakeRepo{})

	b.handleMessage(context.Background(), msg(1, "faça um short sobre gatos"))

	sent := transport.sentTexts()
	require.Len(t, sent, 3, "9000 bytes over 4000-byte messages")
	assert.Equal(t, script, strings.Join(sent, ""), "preview concatenates back to the script")

	draft, err := b.sessions.Draft(1)
	require.NoError(t, err)
	assert.Equal(t, script, draft)

	require.Len(t, gen.requests, 1)
	assert.Equal(t, "faça um short sobre gatos", gen.requests[0])
}

func TestGenerate_ErrorsLeaveDraftUnchanged(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantMsg string
	}{
		{
			"provider error",
			&groq.ProviderError{StatusCode: 429, Message: "rate limited"},
			"❌ Erro na API Groq: 429 rate limited",
		},
		{
			"empty response",
			groq.ErrEmptyResponse,
			msgEmptyResponse,
		},
		{
			"transport error",
			fmt.Errorf("calling groq API: connection refused"),
			"❌ Erro ao chamar API Groq: calling groq API: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, transport := newTestBot(&fakeGenerator{err: tt.err}, &fakeRepo{})
			b.sessions.SetDraft(1, "roteiro anterior")

			b.handleMessage(context.Background(), msg(1, "outro pedido"))

			sent := transport.sentTexts()
			require.Len(t, sent, 1, "exactly one error message")
			assert.Equal(t, tt.wantMsg, sent[0])

			draft, err := b.sessions.Draft(1)
			require.NoError(t, err)
			assert.Equal(t, "roteiro anterior", draft, "failed generation must not touch the draft")
		})
	}
}

func TestSave_WithoutDraft(t *testing.T) {
	repo := &fakeRepo{}
	b, transport := newTestBot(&fakeGenerator{}, repo)

	b.handleMessage(context.Background(), msg(1, "/salvar Meu Vídeo"))

	assert.Equal(t, []string{msgNoDraft}, transport.sentTexts())
	assert.Zero(t, repo.createCalls, "no page may be created without a draft")
}

func TestSave_Success(t *testing.T) {
	draft := strings.Repeat("s", 5000)
	repo := &fakeRepo{}
	b, transport := newTestBot(&fakeGenerator{}, repo)
	b.sessions.SetDraft(7, draft)

	b.handleMessage(context.Background(), msg(7, "/salvar Meu Short Incrível"))

	assert.Equal(t, 1, repo.createCalls)
	assert.Equal(t, "Meu Short Incrível", repo.createdTitle, "title keeps inner spacing")
	assert.Equal(t, b.now(), repo.createdAt)
	assert.Equal(t, "page-new", repo.appendedPage)
	assert.Equal(t, draft, repo.appendedText)
	assert.Equal(t, "page-new", b.sessions.SavedPage(7))

	sent := transport.sentTexts()
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0], "✅ Roteiro salvo no Notion!")
	assert.Contains(t, sent[0], "Meu Short Incrível")
}

func TestSave_DefaultTitle(t *testing.T) {
	repo := &fakeRepo{}
	b, _ := newTestBot(&fakeGenerator{}, repo)
	b.sessions.SetDraft(1, "roteiro")

	b.handleMessage(context.Background(), msg(1, "/salvar"))

	assert.Equal(t, defaultTitle, repo.createdTitle)
}

func TestSave_CreateFailure(t *testing.T) {
	repo := &fakeRepo{createErr: fmt.Errorf("notion API error (status 503): down")}
	b, transport := newTestBot(&fakeGenerator{}, repo)
	b.sessions.SetDraft(1, "roteiro")

	b.handleMessage(context.Background(), msg(1, "/salvar Título"))

	sent := transport.sentTexts()
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0], "❌ Erro ao salvar no Notion")
	assert.Empty(t, b.sessions.SavedPage(1), "saved page id only set after a successful create")
	assert.Empty(t, repo.appendedPage, "no append after create failure")
}

func TestSave_AppendFailure(t *testing.T) {
	repo := &fakeRepo{appendErr: fmt.Errorf("appending block 2/3: notion API error (status 502)")}
	b, transport := newTestBot(&fakeGenerator{}, repo)
	b.sessions.SetDraft(1, "roteiro")

	b.handleMessage(context.Background(), msg(1, "/salvar Título"))

	sent := transport.sentTexts()
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0], "❌ Erro ao salvar blocos no Notion")
	assert.Contains(t, sent[0], "appending block 2/3")
	// The create succeeded, so the page reference is kept despite the
	// partial append.
	assert.Equal(t, "page-new", b.sessions.SavedPage(1))
}

func TestList_NumberedTitles(t *testing.T) {
	repo := &fakeRepo{pages: []notion.Page{
		titledPage("p1", "Gatos"),
		{ID: "p2"}, // malformed title property
		titledPage("p3", "Lontras"),
	}}
	b, transport := newTestBot(&fakeGenerator{}, repo)

	b.handleMessage(context.Background(), msg(1, "/carregar"))

	sent := transport.sentTexts()
	require.Len(t, sent, 1)
	assert.Equal(t, msgListingHeader+"\n1. Gatos\n2. "+notion.UntitledFallback+"\n3. Lontras", sent[0])

	listing, err := b.sessions.Listing(1)
	require.NoError(t, err)
	require.Len(t, listing, 3)
	assert.Equal(t, session.RecordSummary{ID: "p1", Title: "Gatos"}, listing[0])
}

func TestList_EmptyDatabase(t *testing.T) {
	b, transport := newTestBot(&fakeGenerator{}, &fakeRepo{})

	b.handleMessage(context.Background(), msg(1, "/carregar"))
	assert.Equal(t, []string{msgNoVideos}, transport.sentTexts())

	// The empty listing is still cached: any index now fails bounds, not
	// the "use /carregar first" check.
	b.handleMessage(context.Background(), msg(1, "/carregar_roteiro 1"))
	assert.Equal(t, msgIndexOutOfList, transport.sentTexts()[1])
}

func TestList_QueryFailure(t *testing.T) {
	repo := &fakeRepo{queryErr: fmt.Errorf("notion API error (status 401): unauthorized")}
	b, transport := newTestBot(&fakeGenerator{}, repo)

	b.handleMessage(context.Background(), msg(1, "/carregar"))

	sent := transport.sentTexts()
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0], "❌ Erro ao carregar")

	_, err := b.sessions.Listing(1)
	assert.Error(t, err, "failed query must not cache a listing")
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		command string
		wantMsg string
	}{
		{"no listing cached", "/carregar_roteiro 1", msgUseCarregar},
		{"missing argument", "/carregar_roteiro", msgMissingIndex},
		{"unparseable index", "/carregar_roteiro abc", msgInvalidIndex},
		{"index zero", "/carregar_roteiro 0", msgIndexOutOfList},
		{"index past end", "/carregar_roteiro 3", msgIndexOutOfList},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeRepo{pages: []notion.Page{titledPage("p1", "A"), titledPage("p2", "B")}}
			b, transport := newTestBot(&fakeGenerator{}, repo)

			if tt.wantMsg != msgUseCarregar {
				b.handleMessage(context.Background(), msg(1, "/carregar"))
			}

			b.handleMessage(context.Background(), msg(1, tt.command))

			sent := transport.sentTexts()
			require.NotEmpty(t, sent)
			assert.Equal(t, tt.wantMsg, sent[len(sent)-1])
			assert.Empty(t, repo.contentPageID, "no content read on validation failure")
		})
	}
}

func TestLoad_Success(t *testing.T) {
	content := strings.Repeat("c", 6000)
	repo := &fakeRepo{
		pages:   []notion.Page{titledPage("p1", "Gatos"), titledPage("p2", "Lontras")},
		content: content,
	}
	b, transport := newTestBot(&fakeGenerator{}, repo)

	b.handleMessage(context.Background(), msg(1, "/carregar"))
	b.handleMessage(context.Background(), msg(1, "/carregar_roteiro 2"))

	assert.Equal(t, "p2", repo.contentPageID)

	sent := transport.sentTexts()
	require.Greater(t, len(sent), 1)
	full := strings.Join(sent[1:], "")
	assert.Equal(t, "🎬 Lontras\n\n"+content, full)
	for _, s := range sent {
		assert.LessOrEqual(t, len(s), telegram.MaxMessageLen)
	}
}

func TestHelp(t *testing.T) {
	b, transport := newTestBot(&fakeGenerator{}, &fakeRepo{})

	b.handleMessage(context.Background(), msg(1, "/help"))

	sent := transport.sentTexts()
	require.Len(t, sent, 1)
	assert.Equal(t, helpText, sent[0])
	assert.Contains(t, sent[0], "/salvar")
	assert.Contains(t, sent[0], "/carregar_roteiro")
}

func TestCommandWithBotMention(t *testing.T) {
	b, transport := newTestBot(&fakeGenerator{}, &fakeRepo{})

	b.handleMessage(context.Background(), msg(1, "/help@RoteiristaBot"))

	sent := transport.sentTexts()
	require.Len(t, sent, 1)
	assert.Equal(t, helpText, sent[0])
}

func TestUnrecognizedCommand_TreatedAsRequest(t *testing.T) {
	gen := &fakeGenerator{text: "roteiro gerado"}
	b, transport := newTestBot(gen, &fakeRepo{})

	b.handleMessage(context.Background(), msg(1, "/resumo sobre lontras"))

	require.Len(t, gen.requests, 1)
	assert.Equal(t, "/resumo sobre lontras", gen.requests[0])
	assert.Equal(t, []string{"roteiro gerado"}, transport.sentTexts())
}
