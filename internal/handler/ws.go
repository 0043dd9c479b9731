package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"hepevd/internal/render"
	"hepevd/internal/service"
	"hepevd/internal/view"
)

// Message types sent to session clients
const (
	MessageInit   = "init"
	MessageReload = "reload"
	MessageUpdate = "update"
	MessageError  = "error"
)

// ActionSync asks for the current state without changing anything. A
// client sends it after an event_loaded notification to pick up the new
// event.
const ActionSync = "sync"

// SessionObserver is told about sessions and the actions they apply
type SessionObserver interface {
	SessionOpened()
	SessionClosed()
	Action(action string, changed bool)
}

// SessionMessage is one server to client message on /ws
type SessionMessage struct {
	Type       string          `json:"type"`
	Session    string          `json:"session,omitempty"`
	Version    uint64          `json:"version"`
	Changed    bool            `json:"changed"`
	Snapshot   *view.Snapshot  `json:"snapshot,omitempty"`
	Groups     []*render.Group `json:"groups,omitempty"`
	Visibility map[string]bool `json:"visibility,omitempty"`
	Error      string          `json:"error,omitempty"`
}

// SessionHandler runs one pair of views per websocket connection
type SessionHandler struct {
	svc      *service.EventService
	opts     view.Options
	observer SessionObserver
	upgrader websocket.Upgrader
}

// NewSessionHandler creates a websocket session handler
func NewSessionHandler(svc *service.EventService, opts view.Options) *SessionHandler {
	return &SessionHandler{
		svc:  svc,
		opts: opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 64 * 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// SetObserver attaches a session observer
func (h *SessionHandler) SetObserver(o SessionObserver) {
	h.observer = o
}

// client is the per-connection state
type client struct {
	conn    *websocket.Conn
	scene   *render.Scene
	session *view.Session
}

func (h *SessionHandler) open(c *client) {
	ev, version := h.svc.Current()
	c.scene = render.NewScene()
	c.session = view.NewSession(ev, version, c.scene, h.opts)
}

// message captures the scene state after a change
func (c *client) message(kind string, changed bool) SessionMessage {
	snap := c.session.Snapshot()
	return SessionMessage{
		Type:       kind,
		Session:    c.session.ID,
		Version:    c.session.Version,
		Changed:    changed,
		Snapshot:   &snap,
		Groups:     c.scene.Drain(),
		Visibility: c.scene.Visibility(),
	}
}

func (c *client) send(msg SessionMessage) error {
	if err := c.conn.WriteJSON(msg); err != nil {
		log.Printf("ws: failed to write to session %s: %v", c.session.ID, err)
		return err
	}
	return nil
}

// ServeHTTP upgrades the connection and applies client actions until it
// closes. When the current event changes, the next action first rebuilds
// the views against it and sends a reload message.
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws: upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	c := &client{conn: conn}
	h.open(c)
	defer func() { c.session.Close() }()

	if h.observer != nil {
		h.observer.SessionOpened()
		defer h.observer.SessionClosed()
	}
	log.Printf("ws: session %s opened", c.session.ID)

	if err := c.send(c.message(MessageInit, false)); err != nil {
		return
	}

	for {
		var a view.Action
		if err := conn.ReadJSON(&a); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("ws: session %s read error: %v", c.session.ID, err)
			}
			log.Printf("ws: session %s closed", c.session.ID)
			return
		}

		if h.svc.Version() != c.session.Version {
			c.session.Close()
			h.open(c)
			if err := c.send(c.message(MessageReload, true)); err != nil {
				return
			}
		}

		if a.Action == ActionSync {
			if err := c.send(c.message(MessageUpdate, false)); err != nil {
				return
			}
			continue
		}

		changed, err := c.session.Apply(a)
		if err != nil {
			msg := SessionMessage{Type: MessageError, Session: c.session.ID, Version: c.session.Version, Error: err.Error()}
			if !errors.Is(err, view.ErrUnknownAction) && !errors.Is(err, view.ErrUnknownDimension) {
				log.Printf("ws: session %s: %v", c.session.ID, err)
			}
			if err := c.send(msg); err != nil {
				return
			}
			continue
		}
		if h.observer != nil {
			h.observer.Action(a.Action, changed)
		}

		if err := c.send(c.message(MessageUpdate, changed)); err != nil {
			return
		}
	}
}
