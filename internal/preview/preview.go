// Package preview serves the browser editor page and a websocket that
// renders live previews of a session's proposal.
package preview

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ziadkadry99/proposal-engine/internal/api"
	"github.com/ziadkadry99/proposal-engine/internal/server"
	"github.com/ziadkadry99/proposal-engine/internal/session"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Workspaces opens the workspace of a session id.
type Workspaces interface {
	Get(ctx context.Context, id string) (*session.Engine, error)
}

// Preview renders proposals for connected editors.
type Preview struct {
	workspaces Workspaces
	defaults   session.Fields
}

// New creates a Preview. defaults fill export fields a request leaves empty.
func New(w Workspaces, defaults session.Fields) *Preview {
	return &Preview{workspaces: w, defaults: defaults}
}

// RegisterRoutes mounts the editor page and the preview websocket.
func (p *Preview) RegisterRoutes(r chi.Router) {
	r.Get("/", ServeIndex)
	r.Get("/ws/preview", p.handleWebSocket)
}

// request is the incoming WebSocket message format.
type request struct {
	Type   string         `json:"type"` // "render" or "pages"
	Fields session.Fields `json:"fields"`
}

// response is the outgoing WebSocket message format.
type response struct {
	Type     string             `json:"type"` // "html", "pages" or "error"
	Content  string             `json:"content,omitempty"`
	Warnings []string           `json:"warnings,omitempty"`
	Pages    []session.PageInfo `json:"pages,omitempty"`
}

// sessionID returns the id sent in the header, cookie or "session" query
// parameter. Browsers cannot set headers on websocket requests.
func sessionID(r *http.Request) string {
	if id := api.RequestID(r); id != "" {
		return id
	}
	if id := r.URL.Query().Get("session"); id != "" {
		if _, err := uuid.Parse(id); err == nil {
			return id
		}
	}
	return uuid.New().String()
}

func (p *Preview) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)
	e, err := p.workspaces.Get(r.Context(), id)
	if err != nil {
		log.Printf("preview: opening session %s: %v", id, err)
		http.Error(w, "session unavailable", http.StatusInternalServerError)
		return
	}

	conn, err := upgrader.Upgrade(w, r, http.Header{server.SessionHeader: []string{id}})
	if err != nil {
		log.Printf("preview: websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("preview: websocket read: %v", err)
			}
			return
		}

		var req request
		if err := json.Unmarshal(msg, &req); err != nil {
			sendError(conn, "invalid message format")
			continue
		}

		switch req.Type {
		case "render":
			p.render(conn, e, req.Fields)
		case "pages":
			pages, err := e.Pages()
			if err != nil {
				sendError(conn, errorText(err))
				continue
			}
			send(conn, response{Type: "pages", Pages: pages})
		default:
			sendError(conn, "unknown message type: "+req.Type)
		}
	}
}

func (p *Preview) render(conn *websocket.Conn, e *session.Engine, f session.Fields) {
	out, err := e.Export(api.MergeFields(f, p.defaults), nil)
	if err != nil {
		sendError(conn, errorText(err))
		return
	}
	send(conn, response{Type: "html", Content: out.HTML, Warnings: out.Warnings})
}

func errorText(err error) string {
	if errors.Is(err, session.ErrTemplateNotFound) {
		return "no template loaded for this session"
	}
	return err.Error()
}

func send(conn *websocket.Conn, resp response) {
	if err := conn.WriteJSON(resp); err != nil {
		log.Printf("preview: websocket write: %v", err)
	}
}

func sendError(conn *websocket.Conn, message string) {
	send(conn, response{Type: "error", Content: message})
}
