package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"gridrealm.ai/internal/protocol"
	"gridrealm.ai/internal/sim/world"
)

// Sim is the session surface the transport drives.
type Sim interface {
	Submit(in world.Intent) bool
	Welcome(ctx context.Context, sessionID string) (protocol.WelcomeMsg, error)
}

type Server struct {
	sim Sim
	log *zap.Logger

	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[string]*client
}

type client struct {
	id     string
	frames chan []byte
	acks   chan []byte
}

func NewServer(sim Sim, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		sim: sim,
		log: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
		clients: map[string]*client{},
	}
}

// Clients returns the number of connected sessions.
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Broadcast sends a frame to every client. Slow clients only ever see the latest frame.
func (s *Server) Broadcast(frame protocol.FrameMsg) {
	b, err := json.Marshal(frame)
	if err != nil {
		s.log.Error("marshal frame", zap.Error(err))
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.clients {
		sendLatest(c.frames, b)
	}
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		c, err := s.handshake(r.Context(), conn)
		if err != nil {
			s.log.Debug("handshake failed", zap.String("remote", r.RemoteAddr), zap.Error(err))
			return
		}
		log := s.log.With(zap.String("session", c.id))
		log.Info("client connected", zap.String("remote", r.RemoteAddr))

		s.mu.Lock()
		s.clients[c.id] = c
		s.mu.Unlock()
		defer func() {
			s.mu.Lock()
			delete(s.clients, c.id)
			s.mu.Unlock()
			log.Info("client disconnected")
		}()

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		// Writer goroutine.
		go func() {
			for {
				var b []byte
				select {
				case <-ctx.Done():
					return
				case b = <-c.acks:
				case b = <-c.frames:
				}
				_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
				if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
					cancel()
					return
				}
			}
		}()

		// Reader loop.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			s.handleMessage(c, msg)
		}
	}
}

func (s *Server) handshake(ctx context.Context, conn *websocket.Conn) (*client, error) {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return nil, err
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		closeWith(conn, "expected HELLO")
		return nil, errors.New("expected HELLO")
	}
	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		closeWith(conn, "bad HELLO")
		return nil, err
	}
	if hello.ProtocolVersion != protocol.Version {
		closeWith(conn, "bad protocol_version")
		return nil, errors.New("bad protocol_version " + hello.ProtocolVersion)
	}

	c := &client{
		id:     uuid.NewString(),
		frames: make(chan []byte, 1),
		acks:   make(chan []byte, 32),
	}
	wctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	welcome, err := s.sim.Welcome(wctx, c.id)
	if err != nil {
		closeWith(conn, "session unavailable")
		return nil, err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if err := writeJSON(conn, welcome); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Server) handleMessage(c *client, msg []byte) {
	base, err := protocol.DecodeBase(msg)
	if err != nil {
		s.ack(c, "", protocol.ErrProtoBadRequest, "malformed json")
		return
	}
	if base.Type != protocol.TypeIntent {
		s.ack(c, "", protocol.ErrProtoBadRequest, "unsupported message type "+base.Type)
		return
	}
	if base.ProtocolVersion != protocol.Version {
		s.ack(c, "", protocol.ErrProtoBadRequest, "bad protocol_version")
		return
	}
	im, err := protocol.DecodeIntent(msg)
	if err != nil {
		s.ack(c, reqIDOf(msg), protocol.ErrProtoBadRequest, err.Error())
		return
	}
	in, err := world.IntentFromMsg(im)
	if err != nil {
		s.ack(c, im.ReqID, world.Code(err), err.Error())
		return
	}
	reqID := im.ReqID
	in.Done = func(err error) {
		if err != nil {
			s.ack(c, reqID, world.Code(err), err.Error())
			return
		}
		s.ack(c, reqID, "", "")
	}
	if !s.sim.Submit(in) {
		s.ack(c, reqID, protocol.ErrBusy, "intent queue full")
	}
}

// ack never blocks: acks beyond the client's buffer are dropped.
func (s *Server) ack(c *client, reqID, code, message string) {
	b, err := json.Marshal(protocol.AckMsg{
		Type:            protocol.TypeAck,
		ProtocolVersion: protocol.Version,
		AckFor:          reqID,
		Accepted:        code == "",
		Code:            code,
		Message:         message,
	})
	if err != nil {
		return
	}
	select {
	case c.acks <- b:
	default:
		s.log.Debug("ack dropped", zap.String("session", c.id), zap.String("req_id", reqID))
	}
}

func reqIDOf(msg []byte) string {
	var v struct {
		ReqID string `json:"req_id"`
	}
	_ = json.Unmarshal(msg, &v)
	if len(v.ReqID) > 64 {
		return ""
	}
	return v.ReqID
}

func sendLatest(ch chan []byte, b []byte) {
	select {
	case ch <- b:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- b:
	default:
	}
}

func closeWith(conn *websocket.Conn, reason string) {
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason), time.Now().Add(time.Second))
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, b)
}
