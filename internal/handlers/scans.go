package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ismailkaraca/kohasayim/internal/bulk"
	"github.com/ismailkaraca/kohasayim/internal/classify"
	"github.com/ismailkaraca/kohasayim/internal/models"
)

type scanRequest struct {
	Code string `json:"code"`
}

// scanResponse is the wire form of a classification outcome.
type scanResponse struct {
	Result  string            `json:"result"` // "ignored", "isbn" or "logged"
	Event   *models.ScanEvent `json:"event,omitempty"`
	Warning *models.Warning   `json:"warning,omitempty"`
	Logged  bool              `json:"logged"`
}

func outcomeResponse(outcome classify.Outcome) scanResponse {
	switch outcome.Kind {
	case classify.OutcomeISBN:
		warning := outcome.Warning
		return scanResponse{Result: "isbn", Warning: &warning}
	case classify.OutcomeLogged:
		return scanResponse{Result: "logged", Event: outcome.Event, Logged: true}
	default:
		return scanResponse{Result: "ignored"}
	}
}

func (h *Handler) handleScan(w http.ResponseWriter, r *http.Request, s *session) {
	switch r.Method {
	case "GET":
		h.writeJSON(w, s.ledger.Events())
	case "POST":
		var req scanRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
			return
		}

		outcome := s.classifier.Classify(req.Code)
		if outcome.Kind == classify.OutcomeLogged {
			h.persist(r.Context(), s)
		}
		h.writeJSON(w, outcomeResponse(outcome))
	case "DELETE":
		// Clears the scan log but keeps the session; every identifier can
		// be scanned cleanly again.
		s.ledger.Clear()
		h.persist(r.Context(), s)
		slog.Info("Cleared session scans", "id", s.snapshot.ID)
		w.WriteHeader(http.StatusNoContent)
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleScanDetail(w http.ResponseWriter, r *http.Request, s *session, seqText string) {
	if r.Method != "DELETE" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	seq, err := strconv.ParseInt(seqText, 10, 64)
	if err != nil {
		h.writeError(w, "Invalid scan sequence: "+seqText, http.StatusBadRequest)
		return
	}

	if !s.ledger.Remove(seq) {
		h.writeError(w, "Scan not found", http.StatusNotFound)
		return
	}
	h.persist(r.Context(), s)
	w.WriteHeader(http.StatusNoContent)
}

type bulkRequest struct {
	Codes []string `json:"codes"`
}

type bulkResponse struct {
	Processed int `json:"processed"`
	Logged    int `json:"logged"`
	ISBNs     int `json:"isbns"`
	Ignored   int `json:"ignored"`
}

func (h *Handler) handleBulk(w http.ResponseWriter, r *http.Request, s *session) {
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req bulkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	runner := bulk.New(s.classifier, bulk.DefaultChunkSize)
	progress, err := runner.Run(r.Context(), req.Codes, nil)
	if err != nil {
		h.writeError(w, "Bulk run failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	h.persist(r.Context(), s)
	h.writeJSON(w, bulkResponse{
		Processed: progress.Processed,
		Logged:    progress.Logged,
		ISBNs:     progress.ISBNs,
		Ignored:   progress.Ignored,
	})
}
