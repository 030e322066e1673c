package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"DipWatch/internal/analysis"
	"DipWatch/internal/model"
)

const (
	writeWait      = 2 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	minInterval    = time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// streamMessage is one frame of the auto-refresh stream.
type streamMessage struct {
	Type      string          `json:"type"` // "analysis" or "error"
	SessionID string          `json:"session_id"`
	Input     string          `json:"input"`
	Analysis  *model.Analysis `json:"analysis,omitempty"`
	Rows      []model.Row     `json:"rows,omitempty"`
	Error     string          `json:"error,omitempty"`
	Kind      string          `json:"kind,omitempty"`
	Time      time.Time       `json:"time"`
}

// clientRequest changes what a stream is watching.
type clientRequest struct {
	Q string `json:"q"`
}

// Client is one WebSocket viewer. Its passes run one at a time on refreshLoop.
type Client struct {
	srv       *Server
	conn      *websocket.Conn
	send      chan streamMessage
	inputs    chan string
	done      chan struct{}
	sessionID string
	interval  time.Duration
}

func (s *Server) handleWebSocket(c *gin.Context) {
	interval := s.RefreshInterval
	if v := c.Query("interval"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d >= minInterval {
			interval = d
		}
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WARN] websocket upgrade: %v", err)
		return
	}

	client := &Client{
		srv:       s,
		conn:      conn,
		send:      make(chan streamMessage, 8),
		inputs:    make(chan string, 1),
		done:      make(chan struct{}),
		sessionID: sessionID(c),
		interval:  interval,
	}
	s.mu.Lock()
	s.clients[client] = struct{}{}
	s.mu.Unlock()

	go client.writePump()
	go client.refreshLoop(c.Query("q"))
	go client.readPump()
}

// readPump watches the connection and accepts {"q": "..."} to switch symbol.
func (c *Client) readPump() {
	defer func() {
		close(c.done)
		c.srv.mu.Lock()
		delete(c.srv.clients, c)
		c.srv.mu.Unlock()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[WARN] websocket read: %v", err)
			}
			return
		}
		var req clientRequest
		if err := json.Unmarshal(message, &req); err != nil {
			req.Q = strings.TrimSpace(string(message))
		}
		// keep only the latest request
		select {
		case <-c.inputs:
		default:
		}
		c.inputs <- req.Q
	}
}

// refreshLoop runs a pass immediately and then on every tick until the viewer leaves.
func (c *Client) refreshLoop(input string) {
	defer close(c.send)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-c.done
		cancel()
	}()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		c.push(c.pass(ctx, input))
		select {
		case <-c.done:
			return
		case input = <-c.inputs:
			ticker.Reset(c.interval)
		case <-ticker.C:
		}
	}
}

func (c *Client) pass(ctx context.Context, input string) streamMessage {
	msg := streamMessage{SessionID: c.sessionID, Input: input, Time: time.Now()}
	res, err := c.srv.Analyzer.Run(ctx, "ws", input)
	if err != nil {
		msg.Type = "error"
		msg.Error = analysis.UserMessage(err)
		msg.Kind = analysis.Outcome(err)
		return msg
	}
	c.srv.Sessions.Touch(c.sessionID, input, res.Symbol)
	msg.Type = "analysis"
	msg.Analysis = res
	msg.Rows = res.CompleteRows()
	return msg
}

// push drops the frame when the viewer is too slow to keep up.
func (c *Client) push(msg streamMessage) {
	select {
	case c.send <- msg:
	default:
		log.Printf("[WARN] websocket client slow, dropping %s frame", msg.Type)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(message); err != nil {
				log.Printf("[WARN] websocket write: %v", err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
