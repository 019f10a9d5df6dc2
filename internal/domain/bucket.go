package domain

// Bucket holds the index-aligned columns accumulated for one topic. Raw is
// nil for the whole run unless raw retention is enabled.
type Bucket struct {
	Topic      string
	Timestamps []int64
	Encodings  []Encoding
	Schemas    []string
	Data       []Value
	Raw        [][]byte
}

// Len is the number of records in the bucket.
func (b *Bucket) Len() int { return len(b.Timestamps) }

// NameMapVariable is the reserved output name of the topic lookup table.
const NameMapVariable = "topic_name_map"

// NamePair links an original topic to its output-safe name.
type NamePair struct {
	Original string
	Safe     string
}

// NamedBucket is a bucket bound to its output-safe name.
type NamedBucket struct {
	Name   string
	Bucket *Bucket
}

// Output is everything handed to the sink: one variable per topic in
// first-seen order plus the name mapping in the same order.
type Output struct {
	Topics  []NamedBucket
	NameMap []NamePair
}

// RecordCount sums records across all topics.
func (o *Output) RecordCount() int {
	var n int
	for _, t := range o.Topics {
		n += t.Bucket.Len()
	}
	return n
}
