package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/proposal-engine/internal/history"
	"github.com/ziadkadry99/proposal-engine/internal/server"
	"github.com/ziadkadry99/proposal-engine/internal/session"
)

// DefaultMaxUpload limits the size of uploaded files and templates.
const DefaultMaxUpload = 32 << 20

// Handler serves the editing API.
type Handler struct {
	Sessions *Sessions
	History  *history.Store
	// Builder turns page images into pages. Nil disables /api/extract.
	Builder session.PageBuilder
	// Defaults fill export fields the client leaves empty.
	Defaults  session.Fields
	MaxUpload int64
}

type ctxKey struct{}

// RegisterRoutes mounts the editing endpoints under /api.
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Group(func(r chi.Router) {
		r.Use(h.withSession)

		r.Get("/api/session", h.getSession)
		r.Get("/api/template", h.getTemplate)
		r.Put("/api/template", h.putTemplate)

		r.Get("/api/pages", h.listPages)
		r.Post("/api/pages", h.addPage)
		r.Post("/api/pages/markdown", h.addMarkdownPage)
		r.Put("/api/pages/{index}/enabled", h.setPageEnabled)
		r.Post("/api/pages/{index}/move", h.movePage)
		r.Post("/api/pages/{index}/duplicate", h.duplicatePage)
		r.Delete("/api/pages/{index}", h.deletePage)
		r.Get("/api/pages/{index}/blocks", h.listBlocks)
		r.Post("/api/pages/{index}/blocks", h.addBlock)

		r.Get("/api/blocks/{id}", h.getBlock)
		r.Put("/api/blocks/{id}", h.saveBlock)
		r.Delete("/api/blocks/{id}", h.deleteBlock)

		r.Get("/api/tables", h.listTables)
		r.Get("/api/tables/{n}", h.getTable)
		r.Put("/api/tables/{n}", h.setTable)
		r.Get("/api/icons", h.listIconGroups)
		r.Get("/api/icons/{key}", h.getIconGroup)
		r.Put("/api/icons/{key}", h.setIconGroup)

		r.Get("/api/layout", h.getLayout)
		r.Put("/api/layout", h.setLayout)

		r.Get("/api/slots", h.listSlots)
		r.Put("/api/slots/{key}", h.uploadSlot)
		r.Delete("/api/slots/{key}", h.clearSlot)

		r.Get("/api/attachments", h.listAttachments)
		r.Post("/api/attachments", h.uploadAttachments)
		r.Delete("/api/attachments/{name}", h.deleteAttachment)

		r.Post("/api/extract", h.extract)
		r.Post("/api/export", h.export)

		history.RegisterRoutes(r, h.History, RequestID)
	})
}

// withSession resolves the caller's workspace and stores it in the request
// context.
func (h *Handler) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, e, err := h.Sessions.Resolve(w, r)
		if err != nil {
			writeError(w, err)
			return
		}
		// The history route reads the id from the request.
		r.Header.Set(server.SessionHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, e)))
	})
}

func engineOf(r *http.Request) *session.Engine {
	return r.Context().Value(ctxKey{}).(*session.Engine)
}

func (h *Handler) maxUpload() int64 {
	if h.MaxUpload > 0 {
		return h.MaxUpload
	}
	return DefaultMaxUpload
}

// statusOf maps engine errors to HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, session.ErrUnknownSlot),
		errors.Is(err, session.ErrPageIndex),
		errors.Is(err, session.ErrInvalidColor),
		errors.Is(err, session.ErrUnknownLayoutKey),
		errors.Is(err, session.ErrBadImage),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrBlockNotFound),
		errors.Is(err, session.ErrTableNotFound),
		errors.Is(err, session.ErrIconGroupNotFound),
		errors.Is(err, session.ErrAttachmentNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrTemplateNotFound):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		log.Printf("api: %v", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// decodeJSON reads a JSON request body into v. An empty body leaves v
// unchanged when allowEmpty is set.
func decodeJSON(r *http.Request, v any, allowEmpty bool) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) && allowEmpty {
		return nil
	}
	if err != nil {
		return badRequest("invalid request body: %v", err)
	}
	return nil
}

func writeOK(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
