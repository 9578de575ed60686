package history

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
)

// SessionFunc resolves the session id of a request.
type SessionFunc func(r *http.Request) string

// RegisterRoutes mounts GET /api/history on the given router. Results are
// limited to the caller's own session.
func RegisterRoutes(r chi.Router, store *Store, sessionOf SessionFunc) {
	r.Get("/api/history", handleList(store, sessionOf))
}

func handleList(store *Store, sessionOf SessionFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		filter := Filter{
			SessionID: sessionOf(r),
			Action:    q.Get("action"),
			Limit:     100,
		}
		if filter.SessionID == "" {
			writeJSON(w, http.StatusOK, []Edit{})
			return
		}

		if v := q.Get("since"); v != "" {
			if t, err := time.Parse(time.RFC3339, v); err == nil {
				filter.Since = &t
			}
		}
		if v := q.Get("until"); v != "" {
			if t, err := time.Parse(time.RFC3339, v); err == nil {
				filter.Until = &t
			}
		}
		if v := q.Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				filter.Limit = n
			}
		}
		if v := q.Get("offset"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				filter.Offset = n
			}
		}

		edits, err := store.List(r.Context(), filter)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		if edits == nil {
			edits = []Edit{}
		}
		writeJSON(w, http.StatusOK, edits)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
