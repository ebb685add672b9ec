// Package metrics exports OpenTelemetry counters and histograms for iiko
// API calls, logins and handled messages.
package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const (
	serviceName    = "iiko-bot"
	serviceVersion = "1.0.0"
)

// Config configures the OTLP gRPC exporter.
type Config struct {
	// Endpoint is the collector address; empty disables export
	Endpoint string
	// Insecure dials without TLS
	Insecure bool
	// Interval is the export period
	Interval time.Duration
}

// Recorder holds the bot instruments. A nil *Recorder is valid and records nothing.
type Recorder struct {
	remoteRequests  metric.Int64Counter
	remoteDuration  metric.Float64Histogram
	authentications metric.Int64Counter
	messages        metric.Int64Counter
}

// Setup installs an OTLP gRPC meter provider when an endpoint is configured.
// The returned shutdown func flushes pending metrics.
//
// Parameters:
//   - ctx: context for dialing the collector
//   - cfg: exporter settings
//
// Returns:
//   - func(context.Context) error: flushes and stops the provider
//   - error: when the exporter cannot be created
func Setup(ctx context.Context, cfg Config) (func(context.Context) error, error) {
	if cfg.Endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}

	opts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}

	exp, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if cfg.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.Interval))
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp, readerOpts...)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(provider)

	return provider.Shutdown, nil
}

// NewRecorder builds instruments on the global meter provider.
func NewRecorder() (*Recorder, error) {
	return newRecorder(otel.Meter(serviceName))
}

// NewNoopRecorder returns a Recorder whose instruments discard every
// measurement. One-shot CLI commands and engine tests use it.
func NewNoopRecorder() *Recorder {
	rec, _ := newRecorder(noop.NewMeterProvider().Meter(serviceName))
	return rec
}

func newRecorder(meter metric.Meter) (*Recorder, error) {
	remoteRequests, err := meter.Int64Counter(
		"iikobot_remote_requests_total",
		metric.WithDescription("Requests sent to the iiko API"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating remote requests counter: %w", err)
	}

	remoteDuration, err := meter.Float64Histogram(
		"iikobot_remote_request_duration_seconds",
		metric.WithDescription("iiko API request duration including retries"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating remote duration histogram: %w", err)
	}

	authentications, err := meter.Int64Counter(
		"iikobot_authentications_total",
		metric.WithDescription("Credential exchanges against the iiko API"),
		metric.WithUnit("{auth}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating authentications counter: %w", err)
	}

	messages, err := meter.Int64Counter(
		"iikobot_messages_total",
		metric.WithDescription("Inbound chat messages by state and input"),
		metric.WithUnit("{message}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating messages counter: %w", err)
	}

	return &Recorder{
		remoteRequests:  remoteRequests,
		remoteDuration:  remoteDuration,
		authentications: authentications,
		messages:        messages,
	}, nil
}

// RemoteRequest counts one iiko API call and records its duration.
func (r *Recorder) RemoteRequest(ctx context.Context, op string, outcome string, elapsed time.Duration) {
	if r == nil {
		return
	}
	opt := metric.WithAttributes(
		attribute.String("op", op),
		attribute.String("outcome", outcome),
	)
	r.remoteRequests.Add(ctx, 1, opt)
	r.remoteDuration.Record(ctx, elapsed.Seconds(), opt)
}

// Authentication counts one login attempt against server.
func (r *Recorder) Authentication(ctx context.Context, server string, ok bool) {
	if r == nil {
		return
	}
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	r.authentications.Add(ctx, 1, metric.WithAttributes(
		attribute.String("server", server),
		attribute.String("outcome", outcome),
	))
}

// Message counts one handled inbound message by state and input.
func (r *Recorder) Message(ctx context.Context, state string, input string) {
	if r == nil {
		return
	}
	r.messages.Add(ctx, 1, metric.WithAttributes(
		attribute.String("state", state),
		attribute.String("input", input),
	))
}
