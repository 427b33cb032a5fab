package bridge

import (
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Recorder receives one observation per bridge call and connection change,
// for metrics.
type Recorder interface {
	RecordCall(action, status string, elapsed time.Duration)
	SetClientCount(n int)
}

type nopRecorder struct{}

func (nopRecorder) RecordCall(string, string, time.Duration) {}
func (nopRecorder) SetClientCount(int)                       {}

// Server exposes the action dispatcher to the web front-end over a WebSocket
// endpoint. Each call frame becomes one task on the event loop; the reply
// frame carries the handler's result or error under the same id.
type Server struct {
	dispatcher *Dispatcher
	upgrader   websocket.Upgrader
	logger     *slog.Logger
	recorder   Recorder

	mu      sync.Mutex
	clients map[*websocket.Conn]*client
}

type client struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

// NewServer creates a bridge server. logger and recorder may be nil.
func NewServer(dispatcher *Dispatcher, logger *slog.Logger, recorder Recorder) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}

	return &Server{
		dispatcher: dispatcher,
		upgrader: websocket.Upgrader{
			// The front-end is a local webview, not an arbitrary origin.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger:   logger,
		recorder: recorder,
		clients:  make(map[*websocket.Conn]*client),
	}
}

// HandleWebSocket upgrades the connection and serves call frames until the
// peer disconnects. Blocking here keeps the request context alive for the
// calls dispatched on behalf of this connection.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	c := &client{conn: conn}
	s.mu.Lock()
	s.clients[conn] = c
	n := len(s.clients)
	s.mu.Unlock()
	s.recorder.SetClientCount(n)

	defer func() {
		s.mu.Lock()
		delete(s.clients, conn)
		n := len(s.clients)
		s.mu.Unlock()
		s.recorder.SetClientCount(n)
		conn.Close()
	}()

	for {
		var frame Frame
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Error("websocket read failed", "error", err)
			}
			return
		}

		if frame.Op != OpCall {
			s.writeError(c, &frame, "unsupported op: "+frame.Op)
			continue
		}
		if frame.ID == "" {
			frame.ID = uuid.New().String()
		}

		// Replies can finish out of order; the id ties them back.
		go s.handleCall(r, c, frame)
	}
}

// ClientCount returns the number of connected front-ends.
func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *Server) handleCall(r *http.Request, c *client, frame Frame) {
	start := time.Now()

	result, err := s.dispatcher.Dispatch(r.Context(), frame.Action, frame.Body).Await(r.Context())
	if err != nil {
		status := "error"
		if errors.Is(err, ErrUnknownAction) {
			status = "unknown"
		}
		s.recorder.RecordCall(frame.Action, status, time.Since(start))
		s.writeError(c, &frame, err.Error())
		return
	}

	s.recorder.RecordCall(frame.Action, "ok", time.Since(start))
	s.write(c, &Frame{
		Op:     OpResult,
		ID:     frame.ID,
		Action: frame.Action,
		Result: result,
	})
}

func (s *Server) writeError(c *client, req *Frame, msg string) {
	s.write(c, &Frame{
		Op:     OpError,
		ID:     req.ID,
		Action: req.Action,
		Error:  msg,
	})
}

func (s *Server) write(c *client, frame *Frame) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.conn.WriteJSON(frame); err != nil {
		s.logger.Error("websocket write failed", "action", frame.Action, "error", err)
	}
}
