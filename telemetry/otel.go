// Package telemetry wires the product's logging to an OpenTelemetry
// collector. Only the log pipeline is built; there is no tracing or metrics
// surface in this product.
package telemetry

import (
	"context"
	"net/url"
	"time"

	"github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/steveschnepp/ipxwrapper/logger"
)

// ShutdownFunc flushes buffered log records and tears the pipeline down.
type ShutdownFunc func()

// New builds an OTLP/HTTP log pipeline against collectorURL and returns a
// [logger.Logger] that ships through it. authToken, when non-empty, is sent
// as a bearer token. The returned ShutdownFunc must be called before exit or
// buffered records are lost.
func New(ctx context.Context, collectorURL string, authToken string, serviceName string) (logger.Logger, ShutdownFunc, error) {
	u, err := url.Parse(collectorURL)
	if err != nil {
		return nil, nil, errors.Wrap(err, "parsing collector URL")
	}
	u.Path = "/v1/logs"
	logURL := u.String()

	res, err := resource.New(
		ctx,
		resource.WithFromEnv(),
		resource.WithTelemetrySDK(),
		resource.WithProcess(),
		resource.WithOS(),
		resource.WithContainer(),
		resource.WithHost(),
		resource.WithAttributes(semconv.ServiceName(serviceName)),
	)
	if err != nil && !errors.Is(err, resource.ErrPartialResource) && !errors.Is(err, resource.ErrSchemaURLConflict) {
		return nil, nil, errors.Wrap(err, "creating resource")
	}

	headers := make(map[string]string)
	if authToken != "" {
		headers["Authorization"] = "Bearer " + authToken
	}
	exporterOpts := []otlploghttp.Option{
		otlploghttp.WithEndpointURL(logURL),
		otlploghttp.WithHeaders(headers),
		otlploghttp.WithTimeout(time.Second * 10),
		otlploghttp.WithCompression(otlploghttp.GzipCompression),
	}
	if u.Scheme == "http" {
		exporterOpts = append(exporterOpts, otlploghttp.WithInsecure())
	}

	exporter, err := otlploghttp.New(ctx, exporterOpts...)
	if err != nil {
		return nil, nil, errors.Wrap(err, "creating log exporter")
	}

	provider := sdklog.NewLoggerProvider(
		sdklog.WithResource(res),
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)),
	)

	log := logger.NewOtelLogger(provider.Logger(serviceName), logger.LevelTrace)

	return log, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
		defer cancel()
		provider.Shutdown(ctx)
	}, nil
}
