package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ziadkadry99/venue-scout/internal/engine"
	"github.com/ziadkadry99/venue-scout/internal/forecast"
	"github.com/ziadkadry99/venue-scout/internal/intent"
)

var (
	errVenueNotFound        = errors.New("venue not found")
	errConversationNotFound = errors.New("conversation not found")
)

// clarificationMessage is what the user sees when a date mention could
// not be resolved. The engine refuses to guess; we relay that.
const clarificationMessage = "Je n'ai pas compris la date mentionnée. Pouvez-vous la reformuler, par exemple « le 15 mars » ou « 12/06/2026 » ?"

type askRequest struct {
	VenueID        string   `json:"venue_id"`
	ConversationID string   `json:"conversation_id,omitempty"`
	Question       string   `json:"question"`
	HintDates      []string `json:"hint_dates,omitempty"`
	// Anchor pins "today" for replays and tests (YYYY-MM-DD).
	Anchor string `json:"anchor,omitempty"`
}

type askResponse struct {
	ConversationID string `json:"conversation_id"`
	engine.Response
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := s.answer(r.Context(), req)
	switch {
	case err == nil:
		s.writeJSON(w, http.StatusOK, resp)
	case errors.Is(err, intent.ErrNeedClarification):
		s.writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"need_clarification": true,
			"message":            clarificationMessage,
		})
	case errors.Is(err, errVenueNotFound), errors.Is(err, errConversationNotFound):
		s.writeError(w, http.StatusNotFound, err.Error())
	case isBadRequest(err):
		s.writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.log.Error("ask failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "internal error")
	}
}

type badRequestError struct{ msg string }

func (e badRequestError) Error() string { return e.msg }

func isBadRequest(err error) bool {
	var bre badRequestError
	return errors.As(err, &bre)
}

// answer runs one turn end to end: load the venue and its forecast
// window, resolve the conversation, call the engine, persist the
// updated context. Shared by the HTTP and WebSocket paths.
func (s *Server) answer(ctx context.Context, req askRequest) (*askResponse, error) {
	if req.Question == "" {
		return nil, badRequestError{"question is required"}
	}

	venueID := req.VenueID
	if venueID == "" && req.ConversationID != "" {
		id, err := s.conversations.VenueFor(ctx, req.ConversationID)
		if err != nil {
			return nil, errConversationNotFound
		}
		venueID = id
	}
	if venueID == "" {
		return nil, badRequestError{"venue_id is required"}
	}

	venue, err := s.warehouse.Venue(ctx, venueID)
	if err != nil {
		return nil, err
	}
	if venue == nil {
		return nil, errVenueNotFound
	}

	anchor := s.now().UTC()
	if req.Anchor != "" {
		t, err := time.Parse("2006-01-02", req.Anchor)
		if err != nil {
			return nil, badRequestError{"anchor must be YYYY-MM-DD"}
		}
		anchor = t
	}

	from := anchor.Format("2006-01-02")
	to := anchor.AddDate(0, 0, s.cfg.WindowDays).Format("2006-01-02")
	win, err := s.warehouse.Window(ctx, venueID, from, to)
	if err != nil {
		return nil, err
	}

	convID := req.ConversationID
	cc := intent.NewContext()
	if convID == "" {
		convID, err = s.conversations.Create(ctx, venueID)
		if err != nil {
			return nil, err
		}
	} else {
		loaded, ok, err := s.conversations.Load(ctx, convID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errConversationNotFound
		}
		cc = loaded
	}

	resp, err := s.engine.Answer(ctx, engine.Query{
		Question:  req.Question,
		HintDates: req.HintDates,
		Context:   cc,
		Window:    win,
		Venue:     venue,
		Anchor:    anchor,
	})
	if err != nil {
		return nil, err
	}

	if err := s.conversations.Save(ctx, convID, resp.Context); err != nil {
		s.log.Warn("saving conversation context", zap.String("conversation", convID), zap.Error(err))
	}

	return &askResponse{ConversationID: convID, Response: *resp}, nil
}

func (s *Server) handleGetVenue(w http.ResponseWriter, r *http.Request) {
	venueID := chi.URLParam(r, "venueID")
	venue, err := s.warehouse.Venue(r.Context(), venueID)
	if err != nil {
		s.log.Error("loading venue", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if venue == nil {
		s.writeError(w, http.StatusNotFound, "venue not found")
		return
	}
	s.writeJSON(w, http.StatusOK, venue)
}

func (s *Server) handlePutVenue(w http.ResponseWriter, r *http.Request) {
	var venue forecast.VenueContext
	if err := json.NewDecoder(r.Body).Decode(&venue); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	venue.VenueID = chi.URLParam(r, "venueID")

	if err := s.warehouse.UpsertVenue(r.Context(), venue); err != nil {
		s.log.Error("upserting venue", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	s.writeJSON(w, http.StatusOK, venue)
}

func (s *Server) handleGetWindow(w http.ResponseWriter, r *http.Request) {
	venueID := chi.URLParam(r, "venueID")
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	for _, d := range []string{from, to} {
		if _, err := time.Parse("2006-01-02", d); err != nil {
			s.writeError(w, http.StatusBadRequest, "from and to must be YYYY-MM-DD")
			return
		}
	}

	win, err := s.warehouse.Window(r.Context(), venueID, from, to)
	if err != nil {
		s.log.Error("loading window", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	s.writeJSON(w, http.StatusOK, win)
}

func (s *Server) handlePutDays(w http.ResponseWriter, r *http.Request) {
	venueID := chi.URLParam(r, "venueID")

	var days []forecast.DayRecord
	if err := json.NewDecoder(r.Body).Decode(&days); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	for i := range days {
		days[i].VenueID = venueID
		if days[i].Date == "" {
			s.writeError(w, http.StatusBadRequest, "every day record needs a date")
			return
		}
		if err := s.warehouse.UpsertDay(r.Context(), days[i]); err != nil {
			s.log.Error("upserting day", zap.String("date", days[i].Date), zap.Error(err))
			s.writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
	}
	s.writeJSON(w, http.StatusOK, map[string]int{"imported": len(days)})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("encoding response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
