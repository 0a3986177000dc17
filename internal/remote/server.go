// Package remote exposes knobs to browsers over a websocket. Every
// connection is its own surface root with its own gesture session; value
// changes are broadcast to all connections.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/san-kum/knobs/internal/input"
	"github.com/san-kum/knobs/internal/knob"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	readLimit  = 65536
)

// Config for the server
type Config struct {
	ListenAddr string
	// QueueSize bounds events posted by local producers such as MIDI.
	QueueSize int
}

// Server owns a set of knobs and serves them to websocket clients. Knobs
// are only touched on the server's loop goroutine.
type Server struct {
	cfg      Config
	registry *knob.Registry
	knobs    []*knob.Knob
	loop     *input.Loop
	local    *input.Dispatcher
	// holds is shared by every dispatcher so a knob has one holder.
	holds    *input.Holds
	upgrader websocket.Upgrader
	log      *slog.Logger

	clientsMu sync.RWMutex
	clients   map[*Client]bool
}

// Client represents a connected WebSocket client
type Client struct {
	conn       *websocket.Conn
	server     *Server
	dispatcher *input.Dispatcher
	send       chan []byte
	mu         sync.Mutex
	closed     bool
}

// New creates a server for knobs, which must all be registered in reg. It
// replaces their change callbacks.
func New(cfg Config, reg *knob.Registry, knobs []*knob.Knob, log *slog.Logger) *Server {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	s := &Server{
		cfg:      cfg,
		registry: reg,
		knobs:    knobs,
		loop:     input.NewLoop(cfg.QueueSize),
		holds:    input.NewHolds(),
		log:      log,
		clients:  make(map[*Client]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins for local use
			},
		},
	}
	s.local = input.NewDispatcher(reg, input.WithLogger(log), input.WithHolds(s.holds))
	// A fresh loop has no subscriber, so this cannot fail.
	_ = s.local.Attach(s.loop)
	for _, k := range knobs {
		k.OnChange(s.broadcastValue)
	}
	return s
}

// Handler returns the HTTP routes of the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/knobs", s.handleKnobs)
	return mux
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve runs the knob loop and serves HTTP on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	loopErr := make(chan error, 1)
	go func() { loopErr <- s.loop.Run(ctx) }()

	srv := &http.Server{Handler: s.Handler()}
	go func() {
		<-ctx.Done()
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		srv.Shutdown(shutdownCtx)
		s.Stop()
	}()

	s.log.Info("remote server listening", "addr", ln.Addr().String(), "knobs", len(s.knobs))
	err := srv.Serve(ln)
	cancel()
	<-loopErr
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop closes every client connection.
func (s *Server) Stop() {
	s.clientsMu.Lock()
	for client := range s.clients {
		client.Close()
	}
	s.clientsMu.Unlock()
}

// Post queues an event for the server's own dispatcher.
func (s *Server) Post(ev input.Event) bool { return s.loop.Post(ev) }

// SetFraction places knob id at fraction of its range.
func (s *Server) SetFraction(id string, fraction float64) {
	err := s.loop.Do(context.Background(), func() {
		k, ok := s.registry.Get(id)
		if !ok {
			return
		}
		k.SetValue(k.Min() + fraction*(k.Max()-k.Min()))
	})
	if err != nil {
		s.log.Debug("set fraction dropped", "knob", id, "err", err)
	}
}

// ClientCount returns the number of connected clients.
func (s *Server) ClientCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

// broadcastValue runs on the loop goroutine.
func (s *Server) broadcastValue(k *knob.Knob) {
	data, err := encode(TypeValue, ValuePayload{ID: k.ID(), Value: k.Value(), Angle: k.Angle()})
	if err != nil {
		s.log.Error("encode value", "err", err)
		return
	}
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	for client := range s.clients {
		client.enqueue(data)
	}
}

// infos must run on the loop goroutine.
func (s *Server) infos() KnobsPayload {
	p := KnobsPayload{Knobs: make([]KnobInfo, len(s.knobs))}
	for i, k := range s.knobs {
		p.Knobs[i] = Info(k)
	}
	return p
}

func (s *Server) snapshot(ctx context.Context) (KnobsPayload, error) {
	var p KnobsPayload
	err := s.loop.Do(ctx, func() { p = s.infos() })
	return p, err
}

func (s *Server) handleKnobs(w http.ResponseWriter, r *http.Request) {
	p, err := s.snapshot(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(p)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade", "err", err)
		return
	}

	client := &Client{
		conn:       conn,
		server:     s,
		dispatcher: input.NewDispatcher(s.registry, input.WithLogger(s.log), input.WithHolds(s.holds)),
		send:       make(chan []byte, 256),
	}

	// Joining on the loop goroutine orders the snapshot before any value
	// broadcast the client receives.
	err = s.loop.Do(r.Context(), func() {
		client.sendMessage(TypeKnobs, s.infos())
		s.clientsMu.Lock()
		s.clients[client] = true
		s.clientsMu.Unlock()
	})
	if err != nil {
		s.log.Warn("client join", "err", err)
		conn.Close()
		return
	}
	s.log.Info("client connected", "remote", conn.RemoteAddr().String())

	go client.writePump()
	go client.readPump()
}

func encode(msgType string, payload any) ([]byte, error) {
	msg, err := NewMessage(msgType, payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(msg)
}

func (c *Client) sendMessage(msgType string, payload any) {
	data, err := encode(msgType, payload)
	if err != nil {
		c.server.log.Error("encode message", "type", msgType, "err", err)
		return
	}
	c.enqueue(data)
}

func (c *Client) enqueue(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- data:
	default:
		c.server.log.Warn("client send buffer full, dropping message")
	}
}

// Close closes the connection once.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
	c.conn.Close()
}

func (c *Client) readPump() {
	defer func() {
		c.server.clientsMu.Lock()
		delete(c.server.clients, c)
		c.server.clientsMu.Unlock()
		// Release a knob still held by this client.
		c.server.loop.Do(context.Background(), func() {
			c.dispatcher.PointerUp(input.PointerEvent{})
		})
		c.Close()
	}()

	c.conn.SetReadLimit(readLimit)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.server.log.Warn("websocket read", "err", err)
			}
			return
		}
		c.handleMessage(data)
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
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
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

func (c *Client) handleMessage(data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		c.sendError(ErrInvalidMessage, "failed to parse message")
		return
	}

	switch msg.Type {
	case TypePing:
		var payload PingPayload
		if err := msg.ParsePayload(&payload); err != nil {
			return
		}
		c.sendMessage(TypePong, PongPayload{
			ClientTimestamp: payload.Timestamp,
			ServerTimestamp: time.Now().UnixMilli(),
		})

	case TypeSetValue:
		var payload SetValuePayload
		if err := msg.ParsePayload(&payload); err != nil {
			c.sendError(ErrInvalidMessage, err.Error())
			return
		}
		c.setValue(payload)

	default:
		ev, ok, err := msg.Event()
		if err != nil {
			c.sendError(ErrInvalidMessage, err.Error())
			return
		}
		if !ok {
			c.server.log.Debug("unknown message type", "type", msg.Type)
			return
		}
		c.server.loop.Do(context.Background(), func() {
			c.dispatcher.Dispatch(ev)
		})
	}
}

func (c *Client) setValue(p SetValuePayload) {
	var code, text string
	c.server.loop.Do(context.Background(), func() {
		k, err := c.server.registry.Lookup(p.ID)
		if err != nil {
			code, text = ErrUnknownKnob, err.Error()
			return
		}
		if err := k.SetValueText(p.Value); err != nil {
			code, text = ErrInvalidValue, err.Error()
		}
	})
	if code != "" {
		c.sendError(code, text)
	}
}

func (c *Client) sendError(code, message string) {
	c.sendMessage(TypeError, ErrorPayload{Code: code, Message: message})
}
