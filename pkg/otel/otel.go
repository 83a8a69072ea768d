package otel

import (
	"context"
	"log"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const (
	instrumentationName = "github.com/erain9/pitchvolume/pkg/otel"

	// ServiceReplay is the default service name reported by the replay pipeline
	ServiceReplay = "pitch-replay"
)

var (
	replayTracer   trace.Tracer
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	providersMu    sync.RWMutex
)

// Config holds the OpenTelemetry configuration
type Config struct {
	ServiceName      string
	ServiceVersion   string
	Endpoint         string
	ConnectTimeout   time.Duration
	CollectorEnabled bool
}

// Init initializes OpenTelemetry with the given configuration.
// Without a collector the global no-op providers stay in place.
func Init(cfg Config) (func(), error) {
	if cfg.ServiceName == "" {
		cfg.ServiceName = ServiceReplay
	}
	if cfg.ServiceVersion == "" {
		cfg.ServiceVersion = "0.1.0"
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = "localhost:4317"
	}
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = 5 * time.Second
	}

	var cleanup []func()
	if !cfg.CollectorEnabled {
		return func() {}, nil
	}

	resource := initResource(cfg.ServiceName, cfg.ServiceVersion)

	conn, err := grpc.NewClient(cfg.Endpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, err
	}
	cleanup = append(cleanup, func() {
		if err := conn.Close(); err != nil {
			log.Printf("Error closing collector connection: %v", err)
		}
	})

	tp, err := initTracerProvider(conn, resource)
	if err != nil {
		log.Printf("Warning: Failed to initialize tracer provider: %v", err)
	} else {
		providersMu.Lock()
		tracerProvider = tp
		replayTracer = tp.Tracer(cfg.ServiceName)
		providersMu.Unlock()
		cleanup = append([]func(){func() {
			ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
			defer cancel()
			if err := tp.Shutdown(ctx); err != nil {
				log.Printf("Error shutting down tracer provider: %v", err)
			}
		}}, cleanup...)
	}

	mp, err := initMeterProvider(conn, resource)
	if err != nil {
		log.Printf("Warning: Failed to initialize meter provider: %v. Continuing without metrics.", err)
	} else {
		providersMu.Lock()
		meterProvider = mp
		providersMu.Unlock()
		cleanup = append([]func(){func() {
			ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
			defer cancel()
			if err := mp.Shutdown(ctx); err != nil {
				log.Printf("Error shutting down meter provider: %v", err)
			}
		}}, cleanup...)
	}

	// Return cleanup function that executes all cleanup functions
	return func() {
		for _, fn := range cleanup {
			fn()
		}
	}, nil
}

func initResource(serviceName, serviceVersion string) *sdkresource.Resource {
	extraResources, err := sdkresource.New(
		context.Background(),
		sdkresource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
		sdkresource.WithOS(),
		sdkresource.WithProcess(),
		sdkresource.WithHost(),
	)
	if err != nil {
		log.Printf("Failed to create resource: %v", err)
		return sdkresource.Default()
	}

	resource, err := sdkresource.Merge(
		sdkresource.Default(),
		extraResources,
	)
	if err != nil {
		log.Printf("Failed to merge resources: %v", err)
		return sdkresource.Default()
	}

	return resource
}

func initTracerProvider(conn *grpc.ClientConn, resource *sdkresource.Resource) (*sdktrace.TracerProvider, error) {
	exporter, err := otlptracegrpc.New(context.Background(),
		otlptracegrpc.WithGRPCConn(conn),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource),
		sdktrace.WithSampler(sdktrace.ParentBased(
			sdktrace.TraceIDRatioBased(1),
		)),
	)

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
	otel.SetTracerProvider(tp)

	return tp, nil
}

func initMeterProvider(conn *grpc.ClientConn, resource *sdkresource.Resource) (*sdkmetric.MeterProvider, error) {
	exporter, err := otlpmetricgrpc.New(context.Background(),
		otlpmetricgrpc.WithGRPCConn(conn),
	)
	if err != nil {
		return nil, err
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(5*time.Second))),
		sdkmetric.WithResource(resource),
	)

	otel.SetMeterProvider(mp)

	return mp, nil
}

// GetReplayTracer returns the replay tracer, falling back to the global provider
func GetReplayTracer() trace.Tracer {
	providersMu.RLock()
	defer providersMu.RUnlock()
	if replayTracer != nil {
		return replayTracer
	}
	return otel.Tracer(instrumentationName)
}

// GetMeterProvider returns the configured meter provider, or the global one
func GetMeterProvider() metric.MeterProvider {
	providersMu.RLock()
	defer providersMu.RUnlock()
	if meterProvider != nil {
		return meterProvider
	}
	return otel.GetMeterProvider()
}

// ResetForTesting resets the global variables for testing
func ResetForTesting() {
	providersMu.Lock()
	defer providersMu.Unlock()
	replayTracer = nil
	tracerProvider = nil
	meterProvider = nil
}

// InitForTesting installs tracer as the replay tracer
func InitForTesting(tracer trace.Tracer) error {
	providersMu.Lock()
	defer providersMu.Unlock()
	replayTracer = tracer
	return nil
}
