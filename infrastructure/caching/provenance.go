package caching

import (
	"context"
	"sync"
)

// DataSource tells where a read was answered from.
type DataSource string

const (
	DataSourceCache    DataSource = "cache"
	DataSourceDatabase DataSource = "database"
)

// Access is one recorded repository read.
type Access struct {
	Key    string
	Source DataSource
}

// Recorder collects the accesses of one request. Callers that want provenance
// put a recorder on the context; the decorator reports into it. Without one,
// recording is a no-op.
type Recorder struct {
	mu       sync.Mutex
	accesses []Access
}

// Accesses returns the recorded reads in order.
func (r *Recorder) Accesses() []Access {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Access, len(r.accesses))
	copy(out, r.accesses)
	return out
}

func (r *Recorder) record(key string, source DataSource) {
	r.mu.Lock()
	r.accesses = append(r.accesses, Access{Key: key, Source: source})
	r.mu.Unlock()
}

type recorderKey struct{}

// WithRecorder attaches a fresh recorder to the context.
func WithRecorder(ctx context.Context) (context.Context, *Recorder) {
	r := &Recorder{}
	return context.WithValue(ctx, recorderKey{}, r), r
}

// RecordAccess reports a read into the context's recorder, if any.
func RecordAccess(ctx context.Context, key string, source DataSource) {
	if r, ok := ctx.Value(recorderKey{}).(*Recorder); ok {
		r.record(key, source)
	}
}
