// Package wsedge is the WebSocket edge (C6): it guards the upgrade with
// cookie-based session auth, then runs a connection's read pump, write
// pump, and supervisor as three cooperative goroutines spliced into a
// wsclient.Client.
package wsedge

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/streamspace-dev/chatcore/internal/apperr"
	"github.com/streamspace-dev/chatcore/internal/friendship"
	"github.com/streamspace-dev/chatcore/internal/hub"
	"github.com/streamspace-dev/chatcore/internal/logger"
	"github.com/streamspace-dev/chatcore/internal/session"
	"github.com/streamspace-dev/chatcore/internal/store"
	"github.com/streamspace-dev/chatcore/internal/wsclient"
)

const (
	pingInterval    = 20 * time.Second
	readDeadline    = 60 * time.Second
	writeWait       = 10 * time.Second
	outboundBuffer  = 128
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// Origin checking is delegated to the cookie-based session guard: a
	// forged cross-site request still needs a valid sess cookie value.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Edge wires the Hub, Store, friendship machine, and session registry
// needed to authenticate and drive one connection.
type Edge struct {
	hub         *hub.Hub
	store       *store.Store
	friendships *friendship.Machine
	sessions    *session.Registry
	log         *zerolog.Logger
}

// New builds an Edge.
func New(h *hub.Hub, s *store.Store, fm *friendship.Machine, sessions *session.Registry) *Edge {
	return &Edge{hub: h, store: s, friendships: fm, sessions: sessions, log: logger.Edge()}
}

// ServeHTTP is the /ws handler: authenticate via cookies, upgrade, then
// run the connection until either pump exits.
func (e *Edge) ServeHTTP(c *gin.Context) {
	userID, err := e.authenticate(c)
	if err != nil {
		appErr, ok := err.(*apperr.AppError)
		if !ok {
			appErr = apperr.InternalServer(err.Error())
		}
		c.JSON(appErr.StatusCode, appErr.ToResponse())
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		e.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	e.run(c.Request.Context(), conn, userID)
}

// authenticate extracts and verifies the id/sess cookie pair without
// refreshing the session's last-used timestamp (an unauthenticated
// upgrade attempt should not extend a session's lifetime).
func (e *Edge) authenticate(c *gin.Context) (int64, error) {
	idCookie, err := c.Cookie("id")
	if err != nil {
		return 0, apperr.Unauthorized("missing id cookie")
	}
	sessCookie, err := c.Cookie("sess")
	if err != nil {
		return 0, apperr.Unauthorized("missing sess cookie")
	}

	userID, err := strconv.ParseInt(idCookie, 10, 64)
	if err != nil {
		return 0, apperr.Unauthorized("malformed id cookie")
	}

	if _, err := e.sessions.Verify(c.Request.Context(), userID, sessCookie, false); err != nil {
		return 0, err
	}
	return userID, nil
}

// run splices the read pump, write pump, and supervisor around one
// upgraded connection and blocks until the connection ends.
func (e *Edge) run(ctx context.Context, conn *websocket.Conn, userID int64) {
	tx := make(hub.Outbound, outboundBuffer)
	client := wsclient.New(userID, e.hub, e.store, e.friendships, tx)

	connCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := client.Register(connCtx); err != nil {
		e.log.Warn().Err(err).Int64("user", userID).Msg("failed to register client session")
		conn.Close()
		return
	}

	var once sync.Once
	unregister := func() { once.Do(client.Unregister) }
	defer unregister()

	done := make(chan struct{}, 2)
	go e.writePump(conn, tx, done)
	go e.readPump(connCtx, conn, client, done)

	// Supervisor: when either pump finishes, tear the connection down so
	// the other exits on its next I/O attempt, then unregister exactly once.
	<-done
	cancel()
	conn.Close()
	<-done
}

func (e *Edge) writePump(conn *websocket.Conn, tx hub.Outbound, done chan<- struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		done <- struct{}{}
	}()

	for {
		select {
		case frame, ok := <-tx:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
				return
			}
			ticker.Reset(pingInterval)
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (e *Edge) readPump(ctx context.Context, conn *websocket.Conn, client *wsclient.Client, done chan<- struct{}) {
	defer func() { done <- struct{}{} }()

	conn.SetReadDeadline(time.Now().Add(readDeadline))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readDeadline))
		return nil
	})

	for {
		msgType, frame, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if msgType == websocket.CloseMessage {
			return
		}
		if msgType != websocket.BinaryMessage {
			continue
		}

		if err := client.Dispatch(ctx, frame); err != nil {
			if apperr.IsSendError(err) {
				return
			}
			e.log.Info().Err(err).Int64("user", client.UserID).Msg("dispatch error, session continues")
		}
	}
}
