package transport

import (
	"sync"
)

// Loopback is an in-process Transport whose peer is driven by hand. The
// simulation methods (Open, Deliver, Close, Fail) invoke the callbacks
// synchronously on the calling goroutine, standing in for a transport's own
// I/O goroutine.
type Loopback struct {
	Endpoint Endpoint

	callbacks Callbacks

	mut_state        sync.Mutex
	connectRequested bool
	closeRequested   bool
	open             bool
	finished         bool
	sent             [][]byte
	sendErr          error
}

func (l *Loopback) ConnectAsync() {
	l.mut_state.Lock()
	defer l.mut_state.Unlock()
	l.connectRequested = true
}

func (l *Loopback) CloseAsync() {
	l.mut_state.Lock()
	defer l.mut_state.Unlock()
	l.closeRequested = true
	l.open = false
}

func (l *Loopback) Send(data []byte) error {
	l.mut_state.Lock()
	defer l.mut_state.Unlock()

	if l.sendErr != nil {
		return l.sendErr
	}
	if l.closeRequested || l.finished {
		return ErrClosed
	}
	if !l.open {
		return ErrNotConnected
	}

	l.sent = append(l.sent, append([]byte{}, data...))
	return nil
}

func (l *Loopback) ConnectRequested() bool {
	l.mut_state.Lock()
	defer l.mut_state.Unlock()
	return l.connectRequested
}

func (l *Loopback) CloseRequested() bool {
	l.mut_state.Lock()
	defer l.mut_state.Unlock()
	return l.closeRequested
}

// Sent returns a copy of every payload accepted by Send so far.
func (l *Loopback) Sent() [][]byte {
	l.mut_state.Lock()
	defer l.mut_state.Unlock()
	return append([][]byte{}, l.sent...)
}

// FailSends makes every following Send return err. A nil err restores
// normal behavior.
func (l *Loopback) FailSends(err error) {
	l.mut_state.Lock()
	defer l.mut_state.Unlock()
	l.sendErr = err
}

func (l *Loopback) Open() {
	l.mut_state.Lock()
	l.open = true
	l.mut_state.Unlock()

	if l.callbacks.OnOpen != nil {
		l.callbacks.OnOpen()
	}
}

func (l *Loopback) Deliver(data []byte) {
	if l.callbacks.OnMessage != nil {
		l.callbacks.OnMessage(data)
	}
}

func (l *Loopback) Close(reason string) {
	l.mut_state.Lock()
	l.open = false
	l.finished = true
	l.mut_state.Unlock()

	if l.callbacks.OnClose != nil {
		l.callbacks.OnClose(reason)
	}
}

func (l *Loopback) Fail(err error) {
	l.mut_state.Lock()
	l.open = false
	l.finished = true
	l.mut_state.Unlock()

	if l.callbacks.OnError != nil {
		l.callbacks.OnError(err)
	}
}

// LoopbackFactory builds Loopback handles and remembers each one, so a test
// can reach the handle a client created internally.
type LoopbackFactory struct {
	mut_handles sync.Mutex
	handles     []*Loopback
}

func CreateLoopbackFactory() *LoopbackFactory {
	return &LoopbackFactory{
		mut_handles: sync.Mutex{},
		handles:     []*Loopback{},
	}
}

func (f *LoopbackFactory) Factory() Factory {
	return func(endpoint Endpoint, callbacks Callbacks) Transport {
		f.mut_handles.Lock()
		defer f.mut_handles.Unlock()

		l := &Loopback{
			Endpoint:  endpoint,
			callbacks: callbacks,
		}
		f.handles = append(f.handles, l)
		return l
	}
}

func (f *LoopbackFactory) Handles() []*Loopback {
	f.mut_handles.Lock()
	defer f.mut_handles.Unlock()
	return append([]*Loopback{}, f.handles...)
}

// Last returns the most recently created handle, or nil.
func (f *LoopbackFactory) Last() *Loopback {
	f.mut_handles.Lock()
	defer f.mut_handles.Unlock()
	if len(f.handles) == 0 {
		return nil
	}
	return f.handles[len(f.handles)-1]
}
