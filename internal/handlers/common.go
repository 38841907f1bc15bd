// Package handlers exposes the counting engine over a JSON HTTP API for the
// serve mode: session lifecycle, scans, bulk runs and reports.
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ismailkaraca/kohasayim/internal/catalog"
	"github.com/ismailkaraca/kohasayim/internal/classify"
	"github.com/ismailkaraca/kohasayim/internal/ledger"
	"github.com/ismailkaraca/kohasayim/internal/models"
	"github.com/ismailkaraca/kohasayim/internal/store"
)

// session is one live counting session: its metadata plus the ledger and
// classifier operating on it.
type session struct {
	snapshot   models.SessionSnapshot
	ledger     *ledger.Ledger
	classifier *classify.Classifier
}

// Handler serves the counting API. The catalog index is read-only and shared
// by every session; each session owns its ledger.
type Handler struct {
	mu        sync.RWMutex
	index     *catalog.Index
	directory *classify.Directory
	store     *store.Store // nil disables persistence
	sessions  map[string]*session
}

// New creates a handler over a loaded catalog index and library directory.
// When a store is given, previously persisted sessions are restored.
func New(index *catalog.Index, directory *classify.Directory, st *store.Store) (*Handler, error) {
	h := &Handler{
		index:     index,
		directory: directory,
		store:     st,
		sessions:  make(map[string]*session),
	}

	if st != nil {
		listed, err := st.List(context.Background())
		if err != nil {
			return nil, err
		}
		for _, meta := range listed {
			snapshot, err := st.Load(context.Background(), meta.ID)
			if err != nil {
				return nil, err
			}
			h.sessions[snapshot.ID] = h.restoreSession(snapshot)
			slog.Info("Restored session", "id", snapshot.ID, "name", snapshot.Name, "events", len(snapshot.Events))
		}
	}

	return h, nil
}

func (h *Handler) restoreSession(snapshot *models.SessionSnapshot) *session {
	led := ledger.New()
	led.Restore(snapshot.Events)
	meta := *snapshot
	meta.Events = nil
	return &session{
		snapshot:   meta,
		ledger:     led,
		classifier: classify.New(snapshot.Scope(), h.index, led, h.directory),
	}
}

func (h *Handler) newSession(name string, scope models.Scope) *session {
	led := ledger.New()
	now := time.Now().UTC()
	return &session{
		snapshot: models.SessionSnapshot{
			ID:           uuid.NewString(),
			Name:         name,
			LibraryCode:  scope.LibraryCode,
			LocationCode: scope.LocationCode,
			CreatedAt:    now,
			UpdatedAt:    now,
		},
		ledger:     led,
		classifier: classify.New(scope, h.index, led, h.directory),
	}
}

// persist saves the session's current snapshot, best-effort: the in-memory
// session stays authoritative even when the disk write fails.
func (h *Handler) persist(ctx context.Context, s *session) {
	if h.store == nil {
		return
	}
	snapshot := s.snapshot
	snapshot.UpdatedAt = time.Now().UTC()
	snapshot.Events = s.ledger.Snapshot()
	if err := h.store.Save(ctx, &snapshot); err != nil {
		slog.Error("Failed to persist session", "id", snapshot.ID, "err", err)
	}
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message)
	http.Error(w, message, code)
}

// Session helpers
func (h *Handler) getSessionOrError(w http.ResponseWriter, sessionID string) (*session, bool) {
	h.mu.RLock()
	s, exists := h.sessions[sessionID]
	h.mu.RUnlock()
	if !exists {
		h.writeError(w, "Session not found", http.StatusNotFound)
		return nil, false
	}
	return s, true
}
