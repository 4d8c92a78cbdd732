package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type WebsocketTransportParams struct {
	HandshakeTimeout   time.Duration
	WriteTimeout       time.Duration
	MaxReadMessageSize int64
	SendQueueLength    int
	Header             http.Header

	Logger *zap.Logger
}

type websocketTransport struct {
	endpoint  Endpoint
	callbacks Callbacks
	params    WebsocketTransportParams
	dialer    *websocket.Dialer

	ctx    context.Context
	cancel context.CancelFunc

	mut_conn sync.Mutex
	conn     *websocket.Conn
	started  bool
	closed   bool
	outgoing chan []byte

	finish sync.Once

	log *zap.Logger
}

func CreateWebsocketFactory(params WebsocketTransportParams) Factory {
	logger := params.Logger
	if logger == nil {
		logger = zap.Must(zap.NewDevelopment())
	}
	if params.HandshakeTimeout <= 0 {
		params.HandshakeTimeout = 10 * time.Second
	}
	if params.WriteTimeout <= 0 {
		params.WriteTimeout = 5 * time.Second
	}
	if params.SendQueueLength <= 0 {
		params.SendQueueLength = 256
	}

	connIds := &atomic.Uint64{}

	return func(endpoint Endpoint, callbacks Callbacks) Transport {
		ctx, cancel := context.WithCancel(context.Background())
		return &websocketTransport{
			endpoint:  endpoint,
			callbacks: callbacks,
			params:    params,
			dialer: &websocket.Dialer{
				Proxy:            http.ProxyFromEnvironment,
				HandshakeTimeout: params.HandshakeTimeout,
			},
			ctx:      ctx,
			cancel:   cancel,
			outgoing: make(chan []byte, params.SendQueueLength),
			log: logger.With(
				zap.String("transport", "WebSocket"),
				zap.Uint64("wsConnId", connIds.Add(1)),
				zap.String("endpoint", string(endpoint)),
			),
		}
	}
}

func (t *websocketTransport) ConnectAsync() {
	t.mut_conn.Lock()
	defer t.mut_conn.Unlock()

	if t.started || t.closed {
		return
	}
	t.started = true

	go t.run()
}

func (t *websocketTransport) CloseAsync() {
	t.mut_conn.Lock()
	if t.closed {
		t.mut_conn.Unlock()
		return
	}
	t.closed = true
	t.cancel()
	started := t.started
	conn := t.conn
	t.mut_conn.Unlock()

	if !started {
		go t.finishClose("closed before connecting")
		return
	}

	if conn == nil {
		// Dial still in flight; cancelling ctx aborts it.
		return
	}

	go func() {
		deadline := time.Now().Add(t.params.WriteTimeout)
		err := multierr.Append(
			conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline),
			conn.Close(),
		)
		if err != nil {
			t.log.Debug("Error while closing WebSocket connection", zap.Error(err))
		}
	}()
}

func (t *websocketTransport) Send(data []byte) error {
	t.mut_conn.Lock()
	defer t.mut_conn.Unlock()

	if t.closed {
		return ErrClosed
	}
	if t.conn == nil {
		return ErrNotConnected
	}

	select {
	case t.outgoing <- data:
		return nil
	default:
		return ErrSendQueueFull
	}
}

func (t *websocketTransport) isClosed() bool {
	t.mut_conn.Lock()
	defer t.mut_conn.Unlock()
	return t.closed
}

func (t *websocketTransport) finishClose(reason string) {
	t.finish.Do(func() {
		t.log.Debug("WebSocket transport closed", zap.String("reason", reason))
		if t.callbacks.OnClose != nil {
			t.callbacks.OnClose(reason)
		}
	})
}

func (t *websocketTransport) finishError(err error) {
	t.finish.Do(func() {
		t.log.Warn("WebSocket transport failed", zap.Error(err))
		if t.callbacks.OnError != nil {
			t.callbacks.OnError(err)
		}
	})
}

func (t *websocketTransport) run() {
	t.log.Info("Dialing WebSocket endpoint")
	conn, _, dialErr := t.dialer.DialContext(t.ctx, string(t.endpoint), t.params.Header)
	if dialErr != nil {
		if t.isClosed() {
			t.finishClose("closed before connecting")
		} else {
			t.finishError(dialErr)
		}
		return
	}

	if t.params.MaxReadMessageSize > 0 {
		conn.SetReadLimit(t.params.MaxReadMessageSize)
	}

	abandoned := func() bool {
		t.mut_conn.Lock()
		defer t.mut_conn.Unlock()
		if t.closed {
			return true
		}
		t.conn = conn
		return false
	}()
	if abandoned {
		conn.Close()
		t.finishClose("closed before connecting")
		return
	}
	defer conn.Close()

	if t.callbacks.OnOpen != nil {
		t.callbacks.OnOpen()
	}

	wg := sync.WaitGroup{}
	wg.Add(1)
	go func() {
		defer wg.Done()
		t.writeLoop(conn)
	}()

	t.readLoop(conn)
	t.cancel()
	wg.Wait()
}

func (t *websocketTransport) writeLoop(conn *websocket.Conn) {
	for {
		select {
		case <-t.ctx.Done():
			return
		case data := <-t.outgoing:
			conn.SetWriteDeadline(time.Now().Add(t.params.WriteTimeout))
			if err := conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
				// The read loop owns reporting connection loss.
				t.log.Warn("Error writing to WebSocket connection", zap.Error(err))
			}
		}
	}
}

func (t *websocketTransport) readLoop(conn *websocket.Conn) {
	expectedCloseErrors := []int{websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived}

	for {
		msgType, payload, msgErr := conn.ReadMessage()
		if msgErr != nil {
			if t.isClosed() {
				t.finishClose("closed by client")
				return
			}

			var closeError *websocket.CloseError
			if errors.As(msgErr, &closeError) && websocket.IsCloseError(msgErr, expectedCloseErrors...) {
				t.log.Info("Received close request from server", zap.Int("closeCode", closeError.Code), zap.String("closeMsg", closeError.Text))
				reason := closeError.Text
				if reason == "" {
					reason = fmt.Sprintf("close code %d", closeError.Code)
				}
				t.finishClose(reason)
				return
			}

			if errors.Is(msgErr, net.ErrClosed) || strings.Contains(msgErr.Error(), "use of closed network connection") {
				t.finishClose("connection closed")
				return
			}

			t.finishError(msgErr)
			return
		}

		if msgType != websocket.BinaryMessage {
			t.log.Info("Received non-binary message, ignoring", zap.Int("size", len(payload)))
			continue
		}

		if t.callbacks.OnMessage != nil {
			t.callbacks.OnMessage(payload)
		}
	}
}
