// Package metrics emits retrieval telemetry through OpenTelemetry.
package metrics

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Recorder is the engine's metrics sink. Stage and query durations go into
// histograms; queries are counted.
type Recorder struct {
	stageDuration metric.Float64Histogram
	queryDuration metric.Float64Histogram
	corpusSize    metric.Int64Histogram
	queries       metric.Int64Counter
}

// NewRecorder creates a recorder on the given meter.
func NewRecorder(meter metric.Meter) (*Recorder, error) {
	stageDuration, err := meter.Float64Histogram(
		"graphrag.stage.duration",
		metric.WithUnit("ms"),
		metric.WithDescription("Processing time per pipeline stage"),
	)
	if err != nil {
		return nil, err
	}
	queryDuration, err := meter.Float64Histogram(
		"graphrag.query.duration",
		metric.WithUnit("ms"),
		metric.WithDescription("Total query processing time"),
	)
	if err != nil {
		return nil, err
	}
	corpusSize, err := meter.Int64Histogram(
		"graphrag.query.documents_searched",
		metric.WithDescription("Corpus size per query"),
	)
	if err != nil {
		return nil, err
	}
	queries, err := meter.Int64Counter(
		"graphrag.queries",
		metric.WithDescription("Number of processed queries"),
	)
	if err != nil {
		return nil, err
	}

	return &Recorder{
		stageDuration: stageDuration,
		queryDuration: queryDuration,
		corpusSize:    corpusSize,
		queries:       queries,
	}, nil
}

// NewNoopRecorder creates a recorder that discards everything.
func NewNoopRecorder() *Recorder {
	r, _ := NewRecorder(noop.NewMeterProvider().Meter("graphrag"))
	return r
}

// RecordStage records one pipeline stage duration in milliseconds.
func (r *Recorder) RecordStage(ctx context.Context, stage string, durationMS float64) {
	r.stageDuration.Record(ctx, durationMS, metric.WithAttributes(attribute.String("stage", stage)))
}

// RecordQuery records a completed query.
func (r *Recorder) RecordQuery(ctx context.Context, totalMS float64, documentsSearched int) {
	r.queries.Add(ctx, 1)
	r.queryDuration.Record(ctx, totalMS)
	r.corpusSize.Record(ctx, int64(documentsSearched))
}
