// Package session holds per-chat conversation state.
//
// A session tracks the latest generated script draft, the Notion page id
// of the last save, and the listing cached by the most recent /carregar.
// Sessions are created lazily on first use and live in memory only.
//
// # Concurrency
//
// Store is safe for concurrent use. The dispatcher serializes handling per
// chat id, so contention on the single mutex is limited to disjoint chats.
//
// # Bounding
//
// The store is capacity-limited: past capacity the least-recently-used
// session is evicted, and sessions idle longer than the stale threshold
// are dropped inline during access. An unbounded per-chat map would grow
// for the process lifetime of a long-running bot.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/roteirista/roteirista/internal/log"
)

// Sentinel errors for session state. Part of the Store's public API;
// check with errors.Is().
var (
	// ErrNoDraft indicates no script has been generated in this chat yet.
	ErrNoDraft = errors.New("no draft in session")

	// ErrNoListing indicates no listing has been cached in this chat yet.
	ErrNoListing = errors.New("no listing cached in session")
)

const (
	// DefaultCapacity is the default maximum number of live sessions.
	DefaultCapacity = 1024

	// staleThreshold is how long a session may sit idle before inline
	// cleanup drops it.
	staleThreshold = 24 * time.Hour

	// cleanupInterval is the minimum spacing between inline cleanups.
	cleanupInterval = 10 * time.Minute
)

// RecordSummary is a read-only projection of a saved script: the Notion
// page id and the display title. Listings are replaced wholesale on each
// /carregar, never mutated.
type RecordSummary struct {
	ID    string
	Title string
}

// state is the mutable per-chat record.
type state struct {
	draftText   string
	savedPageID string
	listing     []RecordSummary
	hasListing  bool
	lastSeen    time.Time
}

// Store manages per-chat sessions with capacity-bounded eviction.
// The zero value is not useful; use New.
type Store struct {
	mu          sync.Mutex
	sessions    map[int64]*state
	capacity    int
	lastCleanup time.Time
	logger      log.Logger
}

// New creates a session store. capacity <= 0 selects DefaultCapacity.
// A nil logger falls back to a no-op logger.
func New(capacity int, logger log.Logger) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Store{
		sessions:    make(map[int64]*state),
		capacity:    capacity,
		lastCleanup: time.Now(),
		logger:      logger,
	}
}

// SetDraft overwrites the chat's draft with the latest generated script.
func (s *Store) SetDraft(chatID int64, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getOrCreate(chatID).draftText = text
}

// Draft returns the chat's current draft.
// Returns ErrNoDraft if nothing has been generated yet.
func (s *Store) Draft(chatID int64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.sessions[chatID]
	if !ok || st.draftText == "" {
		return "", ErrNoDraft
	}
	st.lastSeen = time.Now()
	return st.draftText, nil
}

// SetSavedPage records the Notion page id of a successful save.
func (s *Store) SetSavedPage(chatID int64, pageID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getOrCreate(chatID).savedPageID = pageID
}

// SavedPage returns the page id of the chat's last save, or "" if the
// chat has not saved anything.
func (s *Store) SavedPage(chatID int64) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.sessions[chatID]
	if !ok {
		return ""
	}
	st.lastSeen = time.Now()
	return st.savedPageID
}

// SetListing replaces the chat's cached listing. Makes a defensive copy
// to prevent external modification.
func (s *Store) SetListing(chatID int64, listing []RecordSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.getOrCreate(chatID)
	st.listing = make([]RecordSummary, len(listing))
	copy(st.listing, listing)
	st.hasListing = true
}

// Listing returns a copy of the chat's cached listing.
// Returns ErrNoListing if no listing has been cached yet. An empty cached
// listing is a valid result, not an error.
func (s *Store) Listing(chatID int64) ([]RecordSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.sessions[chatID]
	if !ok || !st.hasListing {
		return nil, ErrNoListing
	}
	st.lastSeen = time.Now()

	listing := make([]RecordSummary, len(st.listing))
	copy(listing, st.listing)
	return listing, nil
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// getOrCreate returns the chat's session, creating it if absent.
// Caller must hold s.mu.
func (s *Store) getOrCreate(chatID int64) *state {
	now := time.Now()

	// Periodic cleanup of stale entries
	if now.Sub(s.lastCleanup) > cleanupInterval {
		for id, st := range s.sessions {
			if now.Sub(st.lastSeen) > staleThreshold {
				delete(s.sessions, id)
			}
		}
		s.lastCleanup = now
	}

	st, ok := s.sessions[chatID]
	if !ok {
		if len(s.sessions) >= s.capacity {
			s.evictOldest()
		}
		st = &state{}
		s.sessions[chatID] = st
	}
	st.lastSeen = now
	return st
}

// evictOldest removes the least-recently-used session.
// Caller must hold s.mu.
func (s *Store) evictOldest() {
	var (
		oldestID   int64
		oldestSeen time.Time
		found      bool
	)
	for id, st := range s.sessions {
		if !found || st.lastSeen.Before(oldestSeen) {
			oldestID = id
			oldestSeen = st.lastSeen
			found = true
		}
	}
	if found {
		delete(s.sessions, oldestID)
		s.logger.Debug("evicted session at capacity", "chat_id", oldestID)
	}
}
