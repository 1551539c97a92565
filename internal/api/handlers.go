package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/loansplit/loansplit/internal/auth"
	"github.com/loansplit/loansplit/internal/event"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// queryDate reads the required "date" query parameter.
func queryDate(r *http.Request) (time.Time, error) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		return time.Time{}, errors.New("date query parameter is required")
	}
	date, err := time.Parse(dateLayout, raw)
	if err != nil {
		date, err = time.Parse(time.RFC3339, raw)
	}
	if err != nil {
		return time.Time{}, errors.New("date must be YYYY-MM-DD")
	}
	return date, nil
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "loansplit API is running"})
}

// handleCreateStream replays the posted event sequence into a new stream and
// returns its id.
func (s *Server) handleCreateStream(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	events, err := event.UnmarshalEvents(body)
	if err != nil {
		slog.Warn("rejected event payload", "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := s.store.Add(events)
	if err != nil {
		slog.Error("stream replay failed", "events", len(events), "error", err)
		if s.metrics != nil {
			s.metrics.ObserveReplay(0, 0, err)
		}
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if s.metrics != nil {
		if stream, ok := s.store.Get(id); ok {
			s.metrics.ObserveReplay(len(stream.Events()), len(stream.SystemEvents()), nil)
		}
	}

	slog.Info("created event stream", "id", id, "events", len(events))
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) stream(w http.ResponseWriter, r *http.Request) (*event.Stream, bool) {
	id := mux.Vars(r)["id"]
	stream, ok := s.store.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown event stream: "+id)
		return nil, false
	}
	return stream, true
}

// handleGetState serves the full entity state as of the requested date.
func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	stream, ok := s.stream(w, r)
	if !ok {
		return
	}
	date, err := queryDate(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	state, ok := stream.StateForDate(date)
	if !ok {
		writeError(w, http.StatusNotFound, "no events on or before "+date.Format(dateLayout))
		return
	}
	writeJSON(w, http.StatusOK, stateToJSON(state))
}

// handleLoanSummary serves the payment projection for one loan as of the
// requested date.
func (s *Server) handleLoanSummary(w http.ResponseWriter, r *http.Request) {
	stream, ok := s.stream(w, r)
	if !ok {
		return
	}
	date, err := queryDate(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	loanName := r.URL.Query().Get("loanName")
	if loanName == "" {
		writeError(w, http.StatusBadRequest, "loanName query parameter is required")
		return
	}

	state, ok := stream.StateForDate(date)
	if !ok {
		writeError(w, http.StatusNotFound, "no events on or before "+date.Format(dateLayout))
		return
	}
	loan, err := state.Loan(loanName)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, loanSummaryToJSON(loanName, loan, date))
}

// handleGetEvents serves every applied event, user and system-generated, up
// to the requested date in the same wire format the stream was created from.
func (s *Server) handleGetEvents(w http.ResponseWriter, r *http.Request) {
	stream, ok := s.stream(w, r)
	if !ok {
		return
	}
	date, err := queryDate(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	data, err := event.MarshalEvents(stream.EventsUpToDate(date))
	if err != nil {
		slog.Error("failed to marshal events", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to marshal events")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

type snapshotRequest struct {
	CutoffDate event.Date `json:"cutoffDate"`
}

// handleStateSnapshot serves the entity state grouped by kind as of the
// cutoff date in the request body.
func (s *Server) handleStateSnapshot(w http.ResponseWriter, r *http.Request) {
	stream, ok := s.stream(w, r)
	if !ok {
		return
	}

	var req snapshotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.CutoffDate.IsZero() {
		writeError(w, http.StatusBadRequest, "cutoffDate is required")
		return
	}

	state, ok := stream.StateForDate(req.CutoffDate.Time)
	if !ok {
		writeError(w, http.StatusNotFound, "no events on or before "+req.CutoffDate.Format(dateLayout))
		return
	}
	writeJSON(w, http.StatusOK, snapshotToJSON(state, req.CutoffDate.Time))
}

type tokenRequest struct {
	Password string `json:"password"`
}

// handleToken exchanges the admin password for a bearer token. Only routed
// when auth is enabled.
func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := auth.VerifyPassword(s.adminPasswordHash, req.Password); err != nil {
		slog.Warn("rejected token request")
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	token, err := s.jwt.Generate("admin")
	if err != nil {
		slog.Error("failed to generate token", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}
