package transport

import "errors"

// Endpoint is where a transport connects, e.g. "ws://192.168.1.20:8080/oni".
type Endpoint string

// Callbacks are invoked from goroutines owned by the transport. A handle
// reports the end of its life exactly once, through OnClose or OnError.
type Callbacks struct {
	OnOpen    func()
	OnMessage func(data []byte)
	OnClose   func(reason string)
	OnError   func(err error)
}

// Transport is one ordered, message-framed, full duplex connection attempt.
// ConnectAsync and CloseAsync return immediately; completion is reported
// through Callbacks.
type Transport interface {
	ConnectAsync()
	CloseAsync()
	Send(data []byte) error
}

type Factory func(endpoint Endpoint, callbacks Callbacks) Transport

var (
	ErrNotConnected  = errors.New("transport is not connected")
	ErrClosed        = errors.New("transport is closed")
	ErrSendQueueFull = errors.New("transport send queue is full")
)
