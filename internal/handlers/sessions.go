package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"github.com/ismailkaraca/kohasayim/internal/models"
)

type createSessionRequest struct {
	Name         string `json:"name"`
	LibraryCode  string `json:"library_code"`
	LocationCode string `json:"location_code,omitempty"`
}

// sessionSummary is the listing shape: metadata plus the event count.
type sessionSummary struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	LibraryCode  string `json:"library_code"`
	LocationCode string `json:"location_code,omitempty"`
	EventCount   int    `json:"event_count"`
}

func (h *Handler) HandleSessions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		h.mu.RLock()
		summaries := make([]sessionSummary, 0, len(h.sessions))
		for _, s := range h.sessions {
			summaries = append(summaries, sessionSummary{
				ID:           s.snapshot.ID,
				Name:         s.snapshot.Name,
				LibraryCode:  s.snapshot.LibraryCode,
				LocationCode: s.snapshot.LocationCode,
				EventCount:   s.ledger.Len(),
			})
		}
		h.mu.RUnlock()
		sort.Slice(summaries, func(i, j int) bool { return summaries[i].Name < summaries[j].Name })
		h.writeJSON(w, summaries)
	case "POST":
		var req createSessionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
			return
		}
		if req.LibraryCode == "" {
			h.writeError(w, "library_code is required", http.StatusBadRequest)
			return
		}

		s := h.newSession(req.Name, models.Scope{LibraryCode: req.LibraryCode, LocationCode: req.LocationCode})
		h.mu.Lock()
		h.sessions[s.snapshot.ID] = s
		h.mu.Unlock()
		h.persist(r.Context(), s)

		slog.Info("Created session", "id", s.snapshot.ID, "name", s.snapshot.Name, "library", req.LibraryCode)
		w.WriteHeader(http.StatusCreated)
		h.writeJSON(w, s.snapshot)
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleSessionDetail routes /api/sessions/{id} and its sub-resources.
func (h *Handler) HandleSessionDetail(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/sessions/")
	sessionID, sub, _ := strings.Cut(rest, "/")

	s, ok := h.getSessionOrError(w, sessionID)
	if !ok {
		return
	}

	switch {
	case sub == "":
		h.handleSession(w, r, s)
	case sub == "scans":
		h.handleScan(w, r, s)
	case strings.HasPrefix(sub, "scans/"):
		h.handleScanDetail(w, r, s, strings.TrimPrefix(sub, "scans/"))
	case sub == "bulk":
		h.handleBulk(w, r, s)
	case sub == "summary":
		h.handleSummary(w, r, s)
	case strings.HasPrefix(sub, "reports/"):
		h.handleReport(w, r, s, strings.TrimPrefix(sub, "reports/"))
	default:
		h.writeError(w, "Not found", http.StatusNotFound)
	}
}

func (h *Handler) handleSession(w http.ResponseWriter, r *http.Request, s *session) {
	switch r.Method {
	case "GET":
		snapshot := s.snapshot
		snapshot.Events = s.ledger.Snapshot()
		h.writeJSON(w, snapshot)
	case "DELETE":
		h.mu.Lock()
		delete(h.sessions, s.snapshot.ID)
		h.mu.Unlock()
		if h.store != nil {
			if err := h.store.Delete(context.Background(), s.snapshot.ID); err != nil {
				slog.Error("Failed to delete persisted session", "id", s.snapshot.ID, "err", err)
			}
		}
		slog.Info("Deleted session", "id", s.snapshot.ID)
		w.WriteHeader(http.StatusNoContent)
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
