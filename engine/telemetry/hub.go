package telemetry

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/LeonYuanYao/orillusion-webgpu-samples/common"
	"github.com/LeonYuanYao/orillusion-webgpu-samples/engine/dispatch"
	"github.com/gorilla/websocket"
)

// ErrClosed is the error text sent to upgrade requests that arrive after Close.
var ErrClosed = errors.New("telemetry: hub closed")

// Default hub settings.
const (
	DefaultBufferSize   = 64
	DefaultWriteTimeout = time.Second
)

// subscriber is one websocket connection. Writes are serialized by mu since gorilla/websocket
// allows at most one concurrent writer.
type subscriber struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *subscriber) write(data []byte, timeout time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
		return err
	}
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

type hubImpl struct {
	mu *sync.Mutex

	upgrader     websocket.Upgrader
	subscribers  map[*subscriber]struct{}
	frames       chan dispatch.FrameStats
	bufferSize   int
	writeTimeout time.Duration

	closed    bool
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// Hub broadcasts frame statistics as JSON text messages to every connected websocket
// subscriber. It is an http.Handler: mount it on a mux path and clients connect with a
// websocket upgrade request.
type Hub interface {
	http.Handler

	// Publish queues stats for broadcast without blocking. When the queue is full the frame
	// is dropped.
	//
	// Parameters:
	//   - stats: the frame to publish
	//
	// Returns:
	//   - bool: true if the frame was queued
	Publish(stats dispatch.FrameStats) bool

	// Subscribers returns the number of connected subscribers.
	Subscribers() int

	// Close stops the broadcast loop and closes every subscriber connection.
	//
	// Returns:
	//   - error: always nil; present for io.Closer
	Close() error
}

var _ Hub = &hubImpl{}

// NewHub creates a Hub and starts its broadcast goroutine.
//
// Parameters:
//   - options: functional options
//
// Returns:
//   - Hub: the running hub
func NewHub(options ...HubBuilderOption) Hub {
	h := &hubImpl{
		mu: &sync.Mutex{},
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		subscribers:  make(map[*subscriber]struct{}),
		bufferSize:   DefaultBufferSize,
		writeTimeout: DefaultWriteTimeout,
		quit:         make(chan struct{}),
		done:         make(chan struct{}),
	}
	for _, opt := range options {
		opt(h)
	}
	h.frames = make(chan dispatch.FrameStats, max(h.bufferSize, 1))

	go h.broadcast()
	return h
}

func (h *hubImpl) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	closed := h.closed
	h.mu.Unlock()
	if closed {
		http.Error(w, ErrClosed.Error(), http.StatusServiceUnavailable)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		common.Logger().Warn("telemetry upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	sub := &subscriber{conn: conn}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.subscribers[sub] = struct{}{}
	count := len(h.subscribers)
	h.mu.Unlock()
	common.Logger().Info("telemetry subscriber connected", "remote", r.RemoteAddr, "subscribers", count)

	go h.readLoop(sub)
}

// readLoop discards inbound messages and drops the subscriber once its connection fails.
func (h *hubImpl) readLoop(sub *subscriber) {
	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			h.drop(sub, err)
			return
		}
	}
}

func (h *hubImpl) drop(sub *subscriber, reason error) {
	h.mu.Lock()
	_, ok := h.subscribers[sub]
	delete(h.subscribers, sub)
	h.mu.Unlock()
	if !ok {
		return
	}
	sub.conn.Close()
	common.Logger().Debug("telemetry subscriber dropped", "remote", sub.conn.RemoteAddr().String(), "reason", reason)
}

func (h *hubImpl) broadcast() {
	defer close(h.done)
	for {
		select {
		case <-h.quit:
			return
		case stats := <-h.frames:
			data, err := json.Marshal(stats)
			if err != nil {
				common.Logger().Warn("telemetry encode failed", "frame", stats.Frame, "error", err)
				continue
			}
			h.mu.Lock()
			subs := make([]*subscriber, 0, len(h.subscribers))
			for sub := range h.subscribers {
				subs = append(subs, sub)
			}
			h.mu.Unlock()

			for _, sub := range subs {
				if err := sub.write(data, h.writeTimeout); err != nil {
					h.drop(sub, err)
				}
			}
		}
	}
}

func (h *hubImpl) Publish(stats dispatch.FrameStats) bool {
	select {
	case <-h.quit:
		return false
	default:
	}
	select {
	case h.frames <- stats:
		return true
	default:
		return false
	}
}

func (h *hubImpl) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}

func (h *hubImpl) Close() error {
	h.closeOnce.Do(func() {
		h.mu.Lock()
		h.closed = true
		subs := h.subscribers
		h.subscribers = make(map[*subscriber]struct{})
		h.mu.Unlock()

		close(h.quit)
		<-h.done
		for sub := range subs {
			sub.mu.Lock()
			sub.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutdown"),
				time.Now().Add(h.writeTimeout))
			sub.mu.Unlock()
			sub.conn.Close()
		}
		common.Logger().Info("telemetry hub closed", "subscribers", len(subs))
	})
	return nil
}
