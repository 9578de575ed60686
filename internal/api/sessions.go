// Package api exposes the proposal editing operations over HTTP. Every
// client works in its own workspace, identified by a session id.
package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ziadkadry99/proposal-engine/internal/history"
	"github.com/ziadkadry99/proposal-engine/internal/server"
	"github.com/ziadkadry99/proposal-engine/internal/session"
)

// CookieName is the cookie holding the session id for browser clients.
const CookieName = "proposal_session"

// Sessions maps session ids to open workspaces below one root directory.
type Sessions struct {
	root  string
	opts  session.Options
	store *history.Store

	mu      sync.Mutex
	engines map[string]*session.Engine
}

// NewSessions creates a registry keeping workspaces below root. opts are
// used for every workspace; the recorder is replaced by one writing to
// store.
func NewSessions(root string, opts session.Options, store *history.Store) *Sessions {
	return &Sessions{
		root:    root,
		opts:    opts,
		store:   store,
		engines: make(map[string]*session.Engine),
	}
}

// RequestID returns the session id sent by the client, or "" when it sent
// none or an invalid one.
func RequestID(r *http.Request) string {
	id := r.Header.Get(server.SessionHeader)
	if id == "" {
		if c, err := r.Cookie(CookieName); err == nil {
			id = c.Value
		}
	}
	if _, err := uuid.Parse(id); err != nil {
		return ""
	}
	return id
}

// Resolve returns the workspace of the request's session. A request without
// a known session gets a new, empty workspace. The id is sent back in a
// header and a cookie.
func (s *Sessions) Resolve(w http.ResponseWriter, r *http.Request) (string, *session.Engine, error) {
	id := RequestID(r)
	if id == "" {
		id = uuid.New().String()
	}
	e, err := s.Get(r.Context(), id)
	if err != nil {
		return "", nil, err
	}

	w.Header().Set(server.SessionHeader, id)
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id, e, nil
}

// Get opens the workspace of id, creating it when needed.
func (s *Sessions) Get(ctx context.Context, id string) (*session.Engine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Join(s.root, id)
	if err := s.store.Touch(ctx, id, dir); err != nil {
		return nil, err
	}
	if e, ok := s.engines[id]; ok {
		return e, nil
	}

	opts := s.opts
	opts.Recorder = s.store.Recorder(id)
	e, err := session.Open(dir, opts)
	if err != nil {
		return nil, fmt.Errorf("opening session %s: %w", id, err)
	}
	s.engines[id] = e
	return e, nil
}

// Sweep deletes the workspaces of sessions idle for longer than maxAge.
func (s *Sessions) Sweep(ctx context.Context, maxAge time.Duration) (int, error) {
	cutoff := time.Now().Add(-maxAge)
	stale, err := s.store.StaleSessions(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	return s.removeStale(ctx, stale, cutoff)
}

// removeStale deletes the listed sessions unless they were seen again at or
// after cutoff.
func (s *Sessions) removeStale(ctx context.Context, stale []history.Session, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, listed := range stale {
		sess, err := s.store.Session(ctx, listed.ID)
		if errors.Is(err, history.ErrSessionNotFound) {
			continue
		}
		if err != nil {
			return n, err
		}
		if !sess.LastSeen.Before(cutoff) {
			continue
		}

		delete(s.engines, sess.ID)
		if err := os.RemoveAll(sess.Dir); err != nil {
			log.Printf("api: removing workspace %s: %v", sess.Dir, err)
			continue
		}
		if err := s.store.DeleteSession(ctx, sess.ID); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// RunSweeper calls Sweep every interval until ctx is done.
func (s *Sessions) RunSweeper(ctx context.Context, interval, maxAge time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.Sweep(ctx, maxAge)
			if err != nil {
				log.Printf("api: sweeping sessions: %v", err)
			} else if n > 0 {
				log.Printf("api: removed %d idle sessions", n)
			}
		}
	}
}
