package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/susu3304/votebot/internal/poll"
)

type pollResponse struct {
	ID              int64               `json:"id"`
	Title           string              `json:"title"`
	Body            string              `json:"body"`
	CreatedAt       time.Time           `json:"created_at"`
	DurationSeconds int64               `json:"duration_seconds"`
	OrganizerID     string              `json:"organizer_id"`
	TotalVotes      int                 `json:"total_votes"`
	Results         []poll.OptionResult `json:"results"`
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, "Bot is running!")
}

func newPollResponse(p *poll.Poll) pollResponse {
	return pollResponse{
		ID:              p.ID,
		Title:           p.Title,
		Body:            p.Body,
		CreatedAt:       p.CreatedAt,
		DurationSeconds: p.DurationSeconds,
		OrganizerID:     p.OrganizerID,
		TotalVotes:      len(p.Ballots),
		Results:         poll.Results(p),
	}
}

func (a *API) handleGetPoll(w http.ResponseWriter, r *http.Request) {
	p, err := a.polls.ActivePoll(r.Context())
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newPollResponse(p))
}

const maxHistory = 50

// handleHistory lists closed polls, newest first. ?limit= caps the count.
func (a *API) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 1 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = min(n, maxHistory)
	}

	polls, err := a.polls.History(r.Context(), limit)
	if err != nil {
		a.writeError(w, err)
		return
	}
	out := make([]pollResponse, 0, len(polls))
	for _, p := range polls {
		out = append(out, newPollResponse(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *API) handleExport(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())

	doc, err := a.polls.VotesDocument(r.Context(), claims.Subject)
	if err != nil {
		a.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Name))
	w.Write(doc.Content)
}

func (a *API) handleClose(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())

	summary, err := a.polls.ClosePoll(r.Context(), claims.Subject)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.log.Info("poll closed via api", "user_id", claims.Subject)
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "poll closed",
		"summary": summary,
	})
}

func (a *API) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, poll.ErrNoActivePoll):
		http.Error(w, "no active poll", http.StatusNotFound)
	case errors.Is(err, poll.ErrNotAuthorized):
		http.Error(w, "forbidden", http.StatusForbidden)
	default:
		a.log.Error("api request failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
