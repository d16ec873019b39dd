// Package slog provides logging decorators for harvest interfaces.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/harvest"
)

// Ensure LoggingRecordWriter implements harvest.RecordWriter.
var _ harvest.RecordWriter = (*LoggingRecordWriter)(nil)

// LoggingRecordWriter wraps a RecordWriter with logging of each flush.
type LoggingRecordWriter struct {
	next   harvest.RecordWriter
	format harvest.Format
	logger *slog.Logger
}

// NewLoggingRecordWriter creates a new LoggingRecordWriter.
func NewLoggingRecordWriter(next harvest.RecordWriter, format harvest.Format, logger *slog.Logger) *LoggingRecordWriter {
	return &LoggingRecordWriter{next: next, format: format, logger: logger}
}

// WriteRecords delegates to the wrapped writer and logs the operation.
func (w *LoggingRecordWriter) WriteRecords(ctx context.Context, name string, fields []string, records []*harvest.Record) (err error) {
	defer func(begin time.Time) {
		level := slog.LevelInfo
		if err != nil {
			level = slog.LevelError
		}
		w.logger.Log(ctx, level, "flush records",
			"recipe", name,
			"format", string(w.format),
			"count", len(records),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return w.next.WriteRecords(ctx, name, fields, records)
}
