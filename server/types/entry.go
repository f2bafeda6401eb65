package types

import (
	"bytes"
	"context"
	"io"
)

// Producer yields the content of one backup entry. Implementations must be
// safe to open more than once.
type Producer interface {
	// Size returns the content length in bytes.
	Size() int64

	// Open returns a reader over the content.
	Open() (io.ReadCloser, error)
}

// Entry is one file's worth of backup payload: a destination path relative
// to the backup root plus its content producer.
type Entry struct {
	Path     string
	Producer Producer
}

// PostTask is deferred work registered during collection and drained after
// all definition and data entries have been produced.
type PostTask func(ctx context.Context) error

// DataSink is the registration surface the collector exposes to storage
// collaborators while they produce data entries.
type DataSink interface {
	AddEntry(path string, producer Producer) error
	AddEntries(entries []Entry) error
	AddPostTask(task PostTask) error
}

// MemoryProducer serves an entry from an in-memory byte slice.
type MemoryProducer struct {
	data []byte
}

// NewMemoryProducer wraps data in a Producer. The slice is not copied.
func NewMemoryProducer(data []byte) *MemoryProducer {
	return &MemoryProducer{data: data}
}

func (p *MemoryProducer) Size() int64 {
	return int64(len(p.data))
}

func (p *MemoryProducer) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(p.data)), nil
}

// Bytes returns the underlying content. Test and writer helpers use this to
// avoid the reader round trip.
func (p *MemoryProducer) Bytes() []byte {
	return p.data
}
