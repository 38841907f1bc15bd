package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/ismailkaraca/kohasayim/internal/models"
	"github.com/ismailkaraca/kohasayim/internal/reconcile"
)

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request, s *session) {
	if r.Method != "GET" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.writeJSON(w, reconcile.Summarize(h.index, s.ledger))
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request, s *session, name string) {
	if r.Method != "GET" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	datasets := reconcile.BuildDatasets(h.index, s.ledger)
	rows, ok := datasets.ByName(name)
	if !ok {
		h.writeError(w, "Unknown report: "+name, http.StatusNotFound)
		return
	}
	if rows == nil {
		rows = []reconcile.Row{}
	}
	h.writeJSON(w, rows)
}

// HandleLibraries serves the library directory: listing and runtime
// registration of custom libraries, visible to classifications immediately.
func (h *Handler) HandleLibraries(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		h.writeJSON(w, h.directory.Libraries())
	case "POST":
		var library models.Library
		if err := json.NewDecoder(r.Body).Decode(&library); err != nil {
			h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
			return
		}
		if library.Code == "" || library.Name == "" {
			h.writeError(w, "code and name are required", http.StatusBadRequest)
			return
		}
		h.directory.Add(library)
		w.WriteHeader(http.StatusCreated)
		h.writeJSON(w, library)
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
