package client

import (
	goerrs "errors"
	"fmt"
	"time"

	"github.com/sessamekesh/multiplayer-lan-client/pkg/dispatch"
	"github.com/sessamekesh/multiplayer-lan-client/pkg/errors"
	"github.com/sessamekesh/multiplayer-lan-client/pkg/handlers"
	"github.com/sessamekesh/multiplayer-lan-client/pkg/message/command"
	"github.com/sessamekesh/multiplayer-lan-client/pkg/message/network"
	"github.com/sessamekesh/multiplayer-lan-client/pkg/transport"
	"go.uber.org/zap"
)

var ErrAlreadyConnected = goerrs.New("client is already connecting or connected")

const ConnectFailedText = "Failed to connect to server"

// StatusOverlay is the host's on-screen status message.
type StatusOverlay interface {
	Show(text string)
	Close()
}

type ClientParams struct {
	Transport  transport.Factory
	Serializer *network.Serializer

	// Shown when a connection attempt fails, then closed after OverlayCloseDelay.
	Overlay           StatusOverlay
	OverlayCloseDelay time.Duration
	// Ticked by Client.Tick. May be shared with the host.
	Scheduler *dispatch.Scheduler

	// Default: a RandomIdentitySource seeded from the clock.
	IdentitySource IdentitySource
	Metrics        *Metrics
	Logger         *zap.Logger
}

type eventKind uint8

const (
	eventOpened eventKind = iota
	eventReceived
	eventClosed
	eventFailed
)

func (k eventKind) String() string {
	switch k {
	case eventOpened:
		return "opened"
	case eventReceived:
		return "received"
	case eventClosed:
		return "closed"
	case eventFailed:
		return "failed"
	}
	return "unknown"
}

// transportEvent is what a transport callback hands to the consumer
// goroutine. Everything it needs is copied in at enqueue time.
type transportEvent struct {
	kind       eventKind
	generation uint64
	message    *network.NetworkMessage
	size       int
	reason     string
	err        error
}

// Client owns one connection to one endpoint. Connect, Disconnect, Send and
// Tick must all be called from the same (consumer) goroutine; transport
// callbacks only ever touch the queue.
type Client struct {
	factory    transport.Factory
	serializer *network.Serializer

	overlay           StatusOverlay
	overlayCloseDelay time.Duration
	scheduler         *dispatch.Scheduler

	identities IdentitySource
	metrics    *Metrics
	log        *zap.Logger

	queue *dispatch.Queue[transportEvent]

	state      ConnectionState
	id         ClientId
	network    transport.Transport
	generation uint64

	stateChanged     handlers.List[ConnectionState]
	commandsReceived handlers.List[command.Command]
}

func CreateClient(params ClientParams) (*Client, error) {
	if params.Transport == nil {
		return nil, &errors.MissingFieldError{
			MessageName: "ClientParams",
			FieldName:   "Transport",
		}
	}

	logger := params.Logger
	if logger == nil {
		logger = zap.Must(zap.NewDevelopment())
	}
	serializer := params.Serializer
	if serializer == nil {
		serializer = network.CreateSerializer(network.DefaultMagicNumber, network.DefaultVersion)
	}
	overlayCloseDelay := params.OverlayCloseDelay
	if overlayCloseDelay <= 0 {
		overlayCloseDelay = 2 * time.Second
	}
	scheduler := params.Scheduler
	if scheduler == nil {
		scheduler = dispatch.CreateScheduler(dispatch.SchedulerParams{Logger: logger})
	}
	identities := params.IdentitySource
	if identities == nil {
		identities = CreateRandomIdentitySource(time.Now().UnixNano(), DefaultClientIdLength)
	}
	metrics := params.Metrics
	if metrics == nil {
		metrics = CreateMetrics(MetricsParams{})
	}

	return &Client{
		factory:           params.Transport,
		serializer:        serializer,
		overlay:           params.Overlay,
		overlayCloseDelay: overlayCloseDelay,
		scheduler:         scheduler,
		identities:        identities,
		metrics:           metrics,
		log:               logger.With(zap.String("component", "Client")),
		queue:             dispatch.CreateQueue[transportEvent](),
		state:             StateDisconnected,
	}, nil
}

func (c *Client) State() ConnectionState {
	return c.state
}

func (c *Client) Id() ClientId {
	return c.id
}

// OnStateChanged registers fn for every state transition. The returned func
// unregisters it.
func (c *Client) OnStateChanged(fn func(state ConnectionState)) func() {
	return c.stateChanged.Add(fn)
}

// OnCommandReceived registers fn for every command received while connected.
// The returned func unregisters it.
func (c *Client) OnCommandReceived(fn func(cmd command.Command)) func() {
	return c.commandsReceived.Add(fn)
}

func (c *Client) Connect(endpoint transport.Endpoint) error {
	if c.state == StateConnecting || c.state == StateConnected {
		c.log.Warn("Connect called while a connection is active", zap.Stringer("state", c.state))
		return ErrAlreadyConnected
	}

	c.teardown()
	if dropped := c.queue.Clear(); dropped > 0 {
		c.log.Debug("Discarded events from previous connection", zap.Int("count", dropped))
	}

	c.generation++
	c.id = c.identities.NextClientId()
	c.log.Debug("Client preparing to connect to server", zap.String("endpoint", string(endpoint)), zap.Stringer("clientId", c.id))

	c.network = c.factory(endpoint, c.callbacks(c.generation))
	c.setState(StateConnecting)
	c.network.ConnectAsync()
	return nil
}

func (c *Client) Disconnect() {
	if c.network == nil && c.state == StateDisconnected {
		return
	}

	c.log.Debug("Client preparing to disconnect from server", zap.Stringer("clientId", c.id))
	c.teardown()
	if c.state != StateDisconnected {
		c.setState(StateDisconnected)
	}
}

// Send writes cmd to the current connection. Without a connection the command
// is dropped. Failures are logged and counted, never returned: connection
// loss is reported by the transport's own close and error callbacks.
func (c *Client) Send(cmd command.Command, options network.Options) {
	if c.network == nil {
		c.metrics.commandsDropped.WithLabelValues("disconnected").Inc()
		return
	}

	defer func() {
		if r := recover(); r != nil {
			c.metrics.sendFailures.Inc()
			c.log.Error("Client panicked while sending command", zap.Error(fmt.Errorf("%v", r)))
		}
	}()

	data, err := c.serializer.Encode(&network.NetworkMessage{Command: cmd, Options: options})
	if err != nil {
		c.metrics.sendFailures.Inc()
		c.log.Error("Client failed to encode command", zap.Error(err))
		return
	}

	cmdType := cmd.Type()
	if cmdType != command.Type_UpdatePlayerCursorPosition {
		c.log.Debug("Client sending command",
			zap.Stringer("type", cmdType),
			zap.Stringer("options", options),
			zap.Stringer("clientId", c.id),
			zap.Int("len", len(data)))
	}

	if err := c.network.Send(data); err != nil {
		c.metrics.sendFailures.Inc()
		c.log.Debug("Client failed to send command", zap.Stringer("type", cmdType), zap.Error(err))
		return
	}
	c.metrics.commandsSent.WithLabelValues(cmdType.String()).Inc()
}

// Tick runs every transport event queued before the call, in arrival order,
// then any scheduled callbacks that are due. It never blocks.
func (c *Client) Tick() {
	c.queue.Drain(c.safeHandleEvent)
	c.scheduler.Tick()
}

func (c *Client) setState(state ConnectionState) {
	c.state = state
	c.metrics.stateTransitions.WithLabelValues(state.String()).Inc()
	c.stateChanged.Notify(state, func(r any) {
		c.log.Error("StateChanged observer panicked", zap.Stringer("state", state), zap.Error(fmt.Errorf("%v", r)))
	})
}

func (c *Client) teardown() {
	if c.network == nil {
		return
	}
	old := c.network
	c.network = nil
	old.CloseAsync()
}

func (c *Client) callbacks(generation uint64) transport.Callbacks {
	return transport.Callbacks{
		OnOpen: func() {
			c.log.Debug("Client connected to server", zap.String("stage", "queued"))
			c.queue.Enqueue(transportEvent{kind: eventOpened, generation: generation})
		},
		OnMessage: func(data []byte) {
			msg, err := c.serializer.Decode(data)
			if err != nil {
				c.metrics.decodeErrors.Inc()
				c.log.Warn("Client dropped undecodable message", zap.Int("len", len(data)), zap.Error(err))
				return
			}
			c.queue.Enqueue(transportEvent{
				kind:       eventReceived,
				generation: generation,
				message:    msg,
				size:       len(data),
			})
		},
		OnClose: func(reason string) {
			c.log.Debug("Client disconnected from server", zap.String("stage", "queued"), zap.String("reason", reason))
			c.queue.Enqueue(transportEvent{kind: eventClosed, generation: generation, reason: reason})
		},
		OnError: func(err error) {
			c.log.Debug("Client error", zap.String("stage", "queued"), zap.Error(err))
			c.queue.Enqueue(transportEvent{kind: eventFailed, generation: generation, err: err})
		},
	}
}

func (c *Client) safeHandleEvent(e transportEvent) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("Client panicked while handling transport event", zap.Stringer("event", e.kind), zap.Error(fmt.Errorf("%v", r)))
		}
	}()
	c.handleEvent(e)
}

func (c *Client) handleEvent(e transportEvent) {
	if c.network == nil || e.generation != c.generation {
		if e.kind == eventReceived {
			c.metrics.commandsDropped.WithLabelValues("stale").Inc()
		}
		c.log.Debug("Client ignored event from a closed connection", zap.Stringer("event", e.kind))
		return
	}

	switch e.kind {
	case eventOpened:
		c.log.Debug("Client connected to server", zap.String("stage", "processed"))
		if c.state == StateConnecting {
			c.setState(StateConnected)
		}

	case eventReceived:
		cmdType := e.message.Command.Type()
		if cmdType != command.Type_UpdatePlayerCursorPosition {
			c.log.Debug("Client received command",
				zap.String("stage", "processed"),
				zap.Stringer("type", cmdType),
				zap.Stringer("clientId", c.id),
				zap.Int("len", e.size))
		}
		if c.state != StateConnected {
			c.metrics.commandsDropped.WithLabelValues("stale").Inc()
			return
		}
		c.metrics.commandsReceived.WithLabelValues(cmdType.String()).Inc()
		c.commandsReceived.Notify(e.message.Command, func(r any) {
			c.log.Error("CommandReceived observer panicked", zap.Stringer("type", cmdType), zap.Error(fmt.Errorf("%v", r)))
		})

	case eventClosed:
		c.log.Debug("Client disconnected from server", zap.String("stage", "processed"), zap.String("reason", e.reason))
		if c.state == StateConnecting {
			c.failConnectionAttempt()
			return
		}
		c.teardown()
		c.setState(StateDisconnected)

	case eventFailed:
		c.log.Debug("Client error", zap.String("stage", "processed"), zap.Error(e.err))
		if c.state == StateConnecting {
			c.failConnectionAttempt()
			return
		}
		c.teardown()
		c.setState(StateError)
	}
}

// failConnectionAttempt reports a connection that never opened: Error first so
// observers can tell it apart from a normal disconnect, then back to idle.
func (c *Client) failConnectionAttempt() {
	if c.overlay != nil {
		c.overlay.Show(ConnectFailedText)
		c.scheduler.RunAfter(c.overlayCloseDelay, c.overlay.Close)
	}
	generation := c.generation
	c.setState(StateError)
	if c.generation != generation || c.state != StateError {
		// An observer already reconnected or disconnected.
		return
	}
	c.teardown()
	c.setState(StateDisconnected)
}
