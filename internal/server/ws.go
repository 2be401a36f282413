package server

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

const (
	maxFrameBytes  = 4096
	sendBufferSize = 64
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 45 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// client is one live connection: the registered participant identity,
// the write pump's buffered outbox and the inbound rate limiter. The
// room pointer is touched only from the connection's read loop.
//
// sendMu serializes every enqueue with the channel close, so a push
// racing a disconnect degrades to a dropped frame, never a send on a
// closed channel.
type client struct {
	id      string
	name    string
	avatar  string
	socket  *websocket.Conn
	send    chan []byte
	limiter *rate.Limiter

	sendMu     sync.Mutex
	sendClosed bool
	room       *Room
}

// enqueue hands a frame to the write pump. Returns false when the
// outbox is closed or full; the caller decides whether that evicts.
func (c *client) enqueue(data []byte) bool {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.sendClosed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *client) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.sendClosed {
		return
	}
	c.sendClosed = true
	close(c.send)
}

type connectRequest struct {
	Name   string `form:"name" binding:"required,playername"`
	Avatar string `form:"avatar" binding:"omitempty,max=16"`
}

var connectBindMessages = bindMessages{
	"Name": {
		"required":   "name is required",
		"playername": "name is invalid",
	},
	"Avatar": {
		"max": "avatar is too long",
	},
}

func (s *Server) handleSocket(ctx *gin.Context) {
	var req connectRequest
	if !bindQuery(ctx, &req, connectBindMessages, "invalid connection parameters") {
		return
	}
	name, err := validateName(req.Name)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	avatar := req.Avatar
	if avatar == "" {
		avatar = defaultAvatar
	}

	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		log.Printf("ws upgrade failed remote=%s error=%v", ctx.ClientIP(), err)
		return
	}

	c := &client{
		id:      uuid.NewString(),
		name:    name,
		avatar:  avatar,
		socket:  conn,
		send:    make(chan []byte, sendBufferSize),
		limiter: rate.NewLimiter(rate.Limit(s.cfg.CommandRatePerSecond), s.cfg.CommandBurst),
	}
	s.registry.Register(c)
	log.Printf("ws connected connection_id=%s player=%s remote=%s", c.id, name, ctx.ClientIP())

	go c.writePump()
	go s.sendInitialLeaderboard(c)

	s.readLoop(c)
}

// readLoop is the connection's single command thread. It exits on read
// error, which is also the only disconnect signal there is.
func (s *Server) readLoop(c *client) {
	defer s.disconnect(c)

	c.socket.SetReadLimit(maxFrameBytes)
	_ = c.socket.SetReadDeadline(time.Now().Add(pongWait))
	c.socket.SetPongHandler(func(string) error {
		return c.socket.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.socket.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("ws read error connection_id=%s error=%v", c.id, err)
			}
			return
		}
		if !c.limiter.Allow() {
			s.hub.SendError(c, "", "rate limited")
			continue
		}
		s.dispatch(c, data)
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.socket.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.socket.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.socket.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.socket.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// disconnect runs the leave cascade: a dropped connection is a leave,
// never a suspended membership.
func (s *Server) disconnect(c *client) {
	s.registry.Unregister(c.id)
	s.leaveRoom(c)
	c.closeSend()
	log.Printf("ws disconnected connection_id=%s player=%s", c.id, c.name)
}

func (s *Server) sendInitialLeaderboard(c *client) {
	entries, err := s.scores.Leaderboard(context.Background())
	if err != nil || entries == nil {
		return
	}
	s.hub.Send(c, ServerMessage{Type: msgLeaderboardUpdate, Payload: entries})
}

// pushLeaderboard fans the refreshed standings out to every connection.
func (s *Server) pushLeaderboard() {
	entries, err := s.scores.Leaderboard(context.Background())
	if err != nil || entries == nil {
		return
	}
	msg := ServerMessage{Type: msgLeaderboardUpdate, Payload: entries}
	for _, c := range s.registry.Clients() {
		s.hub.Send(c, msg)
	}
}
