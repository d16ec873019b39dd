package mock

import (
	"context"

	"github.com/fwojciec/harvest"
)

var _ harvest.RecordWriter = (*RecordWriter)(nil)

// RecordWriter is a mock implementation of harvest.RecordWriter.
type RecordWriter struct {
	WriteRecordsFn func(ctx context.Context, name string, fields []string, records []*harvest.Record) error
}

func (w *RecordWriter) WriteRecords(ctx context.Context, name string, fields []string, records []*harvest.Record) error {
	return w.WriteRecordsFn(ctx, name, fields, records)
}
