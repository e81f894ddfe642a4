package server

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	xhttp "GigCredit/pkg/http"
	pkgkafka "GigCredit/pkg/kafka"
	applogger "GigCredit/pkg/logger"
	"GigCredit/pkg/queue"
)

// App encapsulates the entire application lifecycle.
type App struct {
	log             *applogger.Logger
	httpServer      *xhttp.Server
	jobs            queue.Queue
	consumer        *pkgkafka.Consumer
	handlers        []pkgkafka.MessageHandler
	closers         []closer
	shutdownTimeout time.Duration
}

type closer struct {
	name string
	fn   func() error
}

// Option configures an App.
type Option func(*App)

// WithQueue runs the background job queue alongside the HTTP server.
func WithQueue(q queue.Queue) Option {
	return func(a *App) { a.jobs = q }
}

// WithConsumer starts c with the given topic handlers. A nil consumer is ignored.
func WithConsumer(c *pkgkafka.Consumer, handlers ...pkgkafka.MessageHandler) Option {
	return func(a *App) {
		if c == nil {
			return
		}
		a.consumer = c
		a.handlers = append(a.handlers, handlers...)
	}
}

// WithCloser registers a resource released on shutdown. Closers run in
// reverse registration order.
func WithCloser(name string, fn func() error) Option {
	return func(a *App) {
		if fn != nil {
			a.closers = append(a.closers, closer{name: name, fn: fn})
		}
	}
}

// WithShutdownTimeout bounds the whole shutdown sequence.
func WithShutdownTimeout(d time.Duration) Option {
	return func(a *App) {
		if d > 0 {
			a.shutdownTimeout = d
		}
	}
}

// New creates a new App instance with all dependencies.
func New(log *applogger.Logger, httpServer *xhttp.Server, opts ...Option) *App {
	if log == nil {
		log = applogger.NewNop()
	}
	a := &App{
		log:             log.With(applogger.String("component", "app")),
		httpServer:      httpServer,
		shutdownTimeout: 15 * time.Second,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Resources lists registered closers in the order they run on shutdown.
func (a *App) Resources() []string {
	names := make([]string, 0, len(a.closers))
	for i := len(a.closers) - 1; i >= 0; i-- {
		names = append(names, a.closers[i].name)
	}
	return names
}

// Run starts every component and blocks until ctx is done or SIGINT/SIGTERM
// arrives, then shuts down.
func (a *App) Run(ctx context.Context) error {
	if err := a.start(); err != nil {
		_ = a.shutdown()
		return err
	}

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-sigCtx.Done()

	a.log.Info("shutdown signal received")
	return a.shutdown()
}

func (a *App) start() error {
	if a.jobs != nil {
		if err := a.jobs.Start(); err != nil {
			return fmt.Errorf("start queue: %w", err)
		}
		a.log.Info("job queue started")
	}

	if a.consumer != nil {
		for _, h := range a.handlers {
			a.consumer.RegisterHandler(h)
		}
		if err := a.consumer.Start(); err != nil {
			return fmt.Errorf("start kafka consumer: %w", err)
		}
		a.log.Info("kafka consumer started", applogger.Int("handlers", len(a.handlers)))
	}

	a.log.Debug("resources registered", applogger.Strings("resources", a.Resources()))

	if a.httpServer != nil {
		if err := a.httpServer.Start(); err != nil {
			return fmt.Errorf("start http server: %w", err)
		}
	}
	return nil
}

// shutdown stops components in reverse start order and then releases
// infrastructure clients.
func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
	defer cancel()

	var errs []error
	if a.httpServer != nil {
		if err := a.httpServer.Stop(ctx); err != nil {
			a.log.Error("http shutdown error", applogger.Error(err))
			errs = append(errs, err)
		}
	}
	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			a.log.Warn("kafka consumer stop error", applogger.Error(err))
			errs = append(errs, err)
		}
	}
	if a.jobs != nil {
		if err := a.jobs.Stop(ctx); err != nil {
			a.log.Warn("queue stop error", applogger.Error(err))
			errs = append(errs, err)
		}
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		c := a.closers[i]
		if err := c.fn(); err != nil {
			a.log.Warn("close error", applogger.String("resource", c.name), applogger.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", c.name, err))
		}
	}

	a.log.Info("shutdown complete")
	return errors.Join(errs...)
}
