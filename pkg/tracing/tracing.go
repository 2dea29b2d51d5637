package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "netqoe"

// TracerProvider wraps OpenTelemetry tracer provider
type TracerProvider struct {
	tp *tracesdk.TracerProvider
}

// Config contains tracing configuration
type Config struct {
	Enabled     bool
	ServiceName string
	JaegerURL   string
	Environment string
	Version     string
	SampleRate  float64
}

// DefaultConfig returns default tracing configuration
func DefaultConfig() Config {
	return Config{
		Enabled:     false,
		ServiceName: "netqoe",
		JaegerURL:   "http://localhost:14268/api/traces",
		Environment: "development",
		Version:     "dev",
		SampleRate:  1.0,
	}
}

// Init initializes tracing. A disabled config yields a provider whose
// Shutdown is a no-op; spans then go to the global no-op tracer.
func Init(cfg Config) (*TracerProvider, error) {
	if !cfg.Enabled {
		return &TracerProvider{}, nil
	}

	exp, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(cfg.JaegerURL)))
	if err != nil {
		return nil, fmt.Errorf("failed to create Jaeger exporter: %w", err)
	}

	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(cfg.ServiceName),
			semconv.ServiceVersionKey.String(cfg.Version),
			attribute.String("environment", cfg.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	tp := tracesdk.NewTracerProvider(
		tracesdk.WithBatcher(exp),
		tracesdk.WithResource(res),
		tracesdk.WithSampler(tracesdk.TraceIDRatioBased(cfg.SampleRate)),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return &TracerProvider{tp: tp}, nil
}

// Shutdown flushes pending spans.
func (tp *TracerProvider) Shutdown(ctx context.Context) error {
	if tp.tp != nil {
		return tp.tp.Shutdown(ctx)
	}
	return nil
}

func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, name, opts...)
}

// AddSpanAttributes sets attrs on the span in ctx when it is recording.
func AddSpanAttributes(ctx context.Context, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetAttributes(attrs...)
	}
}

// RecordError marks the span in ctx as failed.
func RecordError(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

var (
	ScenarioIDKey = attribute.Key("scenario.id")
	UserIDKey     = attribute.Key("user.id")
	ParamCountKey = attribute.Key("qoe.param_count")
	ScoreKey      = attribute.Key("qoe.score")
	RatingKey     = attribute.Key("qoe.rating")
	RecommendsKey = attribute.Key("qoe.recommendations")
	BackendKey    = attribute.Key("storage.backend")
)

// ImpactKey is the attribute carrying one network domain's impact score.
func ImpactKey(domain string) attribute.Key {
	return attribute.Key("qoe.impact." + domain)
}

func TraceHTTPRequest(ctx context.Context, method, route string) (context.Context, trace.Span) {
	return StartSpan(ctx, fmt.Sprintf("http.%s", method),
		trace.WithAttributes(
			semconv.HTTPMethodKey.String(method),
			semconv.HTTPRouteKey.String(route),
		),
	)
}

// TraceQoECalculation traces one engine run over paramCount submitted
// parameters. source is where they came from: http, live or scenario.
func TraceQoECalculation(ctx context.Context, source string, paramCount int) (context.Context, trace.Span) {
	return StartSpan(ctx, "qoe.calculate",
		trace.WithAttributes(
			attribute.String("qoe.source", source),
			ParamCountKey.Int(paramCount),
		),
	)
}

// AnnotateQoEResult attaches the outcome of a calculation to the span in ctx.
// impacts is keyed by network domain name.
func AnnotateQoEResult(ctx context.Context, score float64, rating string, recommendations int, impacts map[string]float64) {
	attrs := []attribute.KeyValue{
		ScoreKey.Float64(score),
		RatingKey.String(rating),
		RecommendsKey.Int(recommendations),
	}
	for domain, v := range impacts {
		attrs = append(attrs, ImpactKey(domain).Float64(v))
	}
	AddSpanAttributes(ctx, attrs...)
}

// TraceScenarioOperation traces a scenario service call made by userID.
// scenarioID may be empty for operations that create or list scenarios.
func TraceScenarioOperation(ctx context.Context, operation, scenarioID, userID string) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{UserIDKey.String(userID)}
	if scenarioID != "" {
		attrs = append(attrs, ScenarioIDKey.String(scenarioID))
	}
	return StartSpan(ctx, "scenario."+operation, trace.WithAttributes(attrs...))
}

func TraceWebSocketMessage(ctx context.Context, messageType string, userID string) (context.Context, trace.Span) {
	return StartSpan(ctx, fmt.Sprintf("websocket.%s", messageType),
		trace.WithAttributes(
			attribute.String("websocket.message_type", messageType),
			UserIDKey.String(userID),
		),
	)
}

func TraceRepositoryOperation(ctx context.Context, backend, operation string) (context.Context, trace.Span) {
	return StartSpan(ctx, fmt.Sprintf("repository.%s", operation),
		trace.WithAttributes(
			attribute.String("db.operation", operation),
			BackendKey.String(backend),
		),
	)
}
