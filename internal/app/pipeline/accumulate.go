package pipeline

import "github.com/ghalamif/mcap2mat/internal/domain"

// Accumulator groups records into per-topic buckets, preserving admission
// order within a bucket and first-seen order across buckets.
type Accumulator struct {
	keepRaw bool
	buckets map[string]*domain.Bucket
	order   []*domain.Bucket
}

func NewAccumulator(keepRaw bool) *Accumulator {
	return &Accumulator{
		keepRaw: keepRaw,
		buckets: make(map[string]*domain.Bucket),
	}
}

// Ingest appends rec to its topic's bucket.
func (a *Accumulator) Ingest(rec *domain.Record) {
	b, ok := a.buckets[rec.Topic]
	if !ok {
		b = &domain.Bucket{Topic: rec.Topic}
		a.buckets[rec.Topic] = b
		a.order = append(a.order, b)
	}
	b.Timestamps = append(b.Timestamps, rec.LogTime)
	b.Encodings = append(b.Encodings, rec.Encoding)
	b.Schemas = append(b.Schemas, rec.Schema)
	b.Data = append(b.Data, rec.Value)
	if a.keepRaw {
		b.Raw = append(b.Raw, rec.Raw)
	}
}

// Topics lists topics in first-seen order.
func (a *Accumulator) Topics() []string {
	out := make([]string, len(a.order))
	for i, b := range a.order {
		out[i] = b.Topic
	}
	return out
}

// Finalize returns the buckets in first-seen order.
func (a *Accumulator) Finalize() []*domain.Bucket {
	out := make([]*domain.Bucket, len(a.order))
	copy(out, a.order)
	return out
}
