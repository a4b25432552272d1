package telemetry

import (
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const startedAtKey = "telemetry:started_at"

// DBTracingConfig configures query spans
type DBTracingConfig struct {
	Enabled bool
	// LogFullSQL keeps bind variables in span statements
	LogFullSQL bool
	// SlowQueryThresh marks and logs queries slower than this
	SlowQueryThresh time.Duration
}

// InstrumentDB adds otelgorm query spans and slow query detection to db
func InstrumentDB(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if !cfg.Enabled {
		return nil
	}
	opts := []otelgorm.Option{otelgorm.WithDBName("postgresql")}
	if !cfg.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	w := &slowQueryWatcher{threshold: cfg.SlowQueryThresh, logger: logger}
	cb := db.Callback()
	return errors.Join(
		cb.Create().Before("gorm:create").Register("telemetry:before_create", w.before),
		cb.Query().Before("gorm:query").Register("telemetry:before_query", w.before),
		cb.Update().Before("gorm:update").Register("telemetry:before_update", w.before),
		cb.Delete().Before("gorm:delete").Register("telemetry:before_delete", w.before),
		cb.Raw().Before("gorm:raw").Register("telemetry:before_raw", w.before),
		cb.Create().After("gorm:create").Register("telemetry:after_create", w.after),
		cb.Query().After("gorm:query").Register("telemetry:after_query", w.after),
		cb.Update().After("gorm:update").Register("telemetry:after_update", w.after),
		cb.Delete().After("gorm:delete").Register("telemetry:after_delete", w.after),
		cb.Raw().After("gorm:raw").Register("telemetry:after_raw", w.after),
	)
}

type slowQueryWatcher struct {
	threshold time.Duration
	logger    *zap.Logger
}

func (w *slowQueryWatcher) before(db *gorm.DB) {
	db.InstanceSet(startedAtKey, time.Now())
}

func (w *slowQueryWatcher) after(db *gorm.DB) {
	v, ok := db.InstanceGet(startedAtKey)
	if !ok || w.threshold <= 0 {
		return
	}
	elapsed := time.Since(v.(time.Time))
	if elapsed < w.threshold {
		return
	}

	span := trace.SpanFromContext(db.Statement.Context)
	span.SetAttributes(
		attribute.Bool("db.slow_query", true),
		attribute.Int64("db.duration_ms", elapsed.Milliseconds()),
	)
	w.logger.Warn("Slow query",
		zap.String("table", db.Statement.Table),
		zap.Duration("elapsed", elapsed),
		zap.Int64("rows", db.Statement.RowsAffected),
		zap.String("trace_id", span.SpanContext().TraceID().String()))
}
