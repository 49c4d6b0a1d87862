package workflows

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	"go.temporal.io/sdk/interceptor"
	temporallog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"

	"github.com/ghuser/auctionhouse/pkg/logger"
)

// TemporalClient holds the dialed SDK client plus the interceptor the
// workers it creates share, so client and worker spans join one trace.
type TemporalClient struct {
	Client    client.Client
	Namespace string
	log       logger.Logger
	tracing   interceptor.Interceptor
}

// NewTemporalClient dials the Temporal frontend with OTel tracing.
// Call Close() when the application shuts down.
func NewTemporalClient(ctx context.Context, hostPort, namespace string, log logger.Logger) (*TemporalClient, error) {
	tracing, err := temporalotel.NewTracingInterceptor(temporalotel.TracerOptions{
		Tracer: otel.Tracer("temporal"),
	})
	if err != nil {
		return nil, fmt.Errorf("create temporal otel interceptor: %w", err)
	}

	c, err := client.DialContext(ctx, client.Options{
		HostPort:     hostPort,
		Namespace:    namespace,
		Logger:       newTemporalLogger(log),
		Interceptors: []interceptor.ClientInterceptor{tracing},
	})
	if err != nil {
		return nil, fmt.Errorf("dial temporal server at %s: %w", hostPort, err)
	}

	log.Info("temporal client connected", "host_port", hostPort, "namespace", namespace)

	return &TemporalClient{
		Client:    c,
		Namespace: namespace,
		log:       log,
		tracing:   tracing,
	}, nil
}

// NewWorker creates a worker polling taskQueue. Register workflows and
// activities on it before calling Start.
func (tc *TemporalClient) NewWorker(taskQueue string) worker.Worker {
	var opts worker.Options
	if tc.tracing != nil {
		opts.Interceptors = []interceptor.WorkerInterceptor{tc.tracing}
	}
	return worker.New(tc.Client, taskQueue, opts)
}

// Ping reports whether the frontend answers a health check.
func (tc *TemporalClient) Ping(ctx context.Context) error {
	if _, err := tc.Client.CheckHealth(ctx, &client.CheckHealthRequest{}); err != nil {
		return fmt.Errorf("temporal health: %w", err)
	}
	return nil
}

// Close shuts down the client connection.
func (tc *TemporalClient) Close() {
	tc.Client.Close()
	tc.log.Info("temporal client closed")
}

// temporalLogger adapts logger.Logger to Temporal's log.Logger interface.
type temporalLogger struct {
	log logger.Logger
}

func newTemporalLogger(log logger.Logger) temporallog.Logger {
	return &temporalLogger{log: log.With("component", "temporal")}
}

func (l *temporalLogger) Debug(msg string, keyvals ...interface{}) {
	l.log.Debug(msg, keyvals...)
}

func (l *temporalLogger) Info(msg string, keyvals ...interface{}) {
	l.log.Info(msg, keyvals...)
}

func (l *temporalLogger) Warn(msg string, keyvals ...interface{}) {
	l.log.Warn(msg, keyvals...)
}

func (l *temporalLogger) Error(msg string, keyvals ...interface{}) {
	l.log.Error(msg, keyvals...)
}

// With satisfies temporallog.WithLogger so SDK-scoped fields (workflow id,
// run id) stay attached.
func (l *temporalLogger) With(keyvals ...interface{}) temporallog.Logger {
	return &temporalLogger{log: l.log.With(keyvals...)}
}
