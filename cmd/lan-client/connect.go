package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sessamekesh/multiplayer-lan-client/internal/config"
	"github.com/sessamekesh/multiplayer-lan-client/pkg/client"
	"github.com/sessamekesh/multiplayer-lan-client/pkg/dispatch"
	"github.com/sessamekesh/multiplayer-lan-client/pkg/message/command"
	"github.com/sessamekesh/multiplayer-lan-client/pkg/message/network"
	"github.com/sessamekesh/multiplayer-lan-client/pkg/transport"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type connectOptions struct {
	configPath     string
	endpoint       string
	reconnectDelay time.Duration
}

func connectCmd() *cobra.Command {
	opts := connectOptions{}

	cmd := &cobra.Command{
		Use:   "connect",
		Short: "Connect to a host and run until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConnect(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", ".", "Directory containing config.yaml and .env")
	cmd.Flags().StringVarP(&opts.endpoint, "endpoint", "e", "", "WebSocket endpoint, overrides host_url and path")
	cmd.Flags().DurationVar(&opts.reconnectDelay, "reconnect-delay", 0, "Reconnect after this long when the connection drops (0 disables)")
	return cmd
}

func createLogger(level string) (*zap.Logger, error) {
	zapConfig := zap.NewProductionConfig()
	if os.Getenv("APP_ENV") != "production" {
		zapConfig = zap.NewDevelopmentConfig()
	}

	atomicLevel, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	zapConfig.Level = atomicLevel
	return zapConfig.Build()
}

// logOverlay stands in for an on-screen status message.
type logOverlay struct {
	log *zap.Logger
}

func (o *logOverlay) Show(text string) {
	o.log.Warn(text)
}

func (o *logOverlay) Close() {
	o.log.Debug("Status overlay closed")
}

func serveMetrics(ctx context.Context, address string, registry *prometheus.Registry, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))
	server := &http.Server{Addr: address, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		server.Close()
	}()

	go func() {
		logger.Info("Serving metrics", zap.String("address", address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server stopped", zap.Error(err))
		}
	}()
}

func runConnect(ctx context.Context, opts connectOptions) error {
	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return err
	}

	logger, err := createLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if ctx == nil {
		ctx = context.Background()
	}
	shutdownCtx, shutdownRelease := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGINT)
	defer shutdownRelease()

	registry := prometheus.NewRegistry()
	metrics := client.CreateMetrics(client.MetricsParams{Registry: registry})
	if cfg.Metrics.Enabled {
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		serveMetrics(shutdownCtx, cfg.Metrics.ListenAddress, registry, logger)
	}

	scheduler := dispatch.CreateScheduler(dispatch.SchedulerParams{Logger: logger})
	defer scheduler.Stop()

	c, err := client.CreateClient(client.ClientParams{
		Transport: transport.CreateWebsocketFactory(transport.WebsocketTransportParams{
			HandshakeTimeout:   cfg.Websocket.HandshakeTimeout,
			WriteTimeout:       cfg.Websocket.WriteTimeout,
			MaxReadMessageSize: cfg.Websocket.MaxMessageSize,
			SendQueueLength:    cfg.Websocket.SendQueueLength,
			Logger:             logger,
		}),
		Serializer:        network.CreateSerializer(cfg.MagicNumber, cfg.ProtocolVersion),
		Overlay:           &logOverlay{log: logger},
		OverlayCloseDelay: cfg.OverlayCloseDelay,
		Scheduler:         scheduler,
		Metrics:           metrics,
		Logger:            logger,
	})
	if err != nil {
		return err
	}

	endpoint := cfg.Endpoint()
	if opts.endpoint != "" {
		endpoint = transport.Endpoint(opts.endpoint)
	}

	c.OnCommandReceived(func(cmd command.Command) {
		if cmd.Type() == command.Type_UpdatePlayerCursorPosition {
			return
		}
		logger.Info("Received command", zap.Stringer("type", cmd.Type()), zap.Any("command", cmd))
	})
	c.OnStateChanged(func(state client.ConnectionState) {
		logger.Info("Connection state changed", zap.Stringer("state", state), zap.Stringer("clientId", c.Id()))
		if opts.reconnectDelay <= 0 || state != client.StateDisconnected || shutdownCtx.Err() != nil {
			return
		}
		scheduler.RunAfter(opts.reconnectDelay, func() {
			if c.State() != client.StateDisconnected || shutdownCtx.Err() != nil {
				return
			}
			if err := c.Connect(endpoint); err != nil {
				logger.Warn("Reconnect failed", zap.Error(err))
			}
		})
	})

	if err := c.Connect(endpoint); err != nil {
		return err
	}

	ticker := time.NewTicker(cfg.TickRate)
	defer ticker.Stop()

	for {
		select {
		case <-shutdownCtx.Done():
			logger.Info("Shutting down")
			c.Disconnect()
			c.Tick()
			return nil
		case <-ticker.C:
			c.Tick()
		}
	}
}
