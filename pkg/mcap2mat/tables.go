package mcap2mat

import "github.com/ghalamif/mcap2mat/internal/domain"

// TopicTable is one topic's converted columns in a form that is safe to keep
// after the run. Raw is nil unless raw retention was enabled.
type TopicTable struct {
	Name       string
	Topic      string
	Timestamps []int64
	Encodings  []string
	Schemas    []string
	Data       []Value
	Raw        [][]byte
}

// OutputHandler is invoked once with every topic table in first-seen order.
type OutputHandler func([]TopicTable) error

func tablesFromOutput(out *domain.Output) []TopicTable {
	if out == nil || len(out.Topics) == 0 {
		return nil
	}
	tables := make([]TopicTable, len(out.Topics))
	for i, nb := range out.Topics {
		b := nb.Bucket
		encodings := make([]string, len(b.Encodings))
		for j, e := range b.Encodings {
			encodings[j] = e.String()
		}
		tables[i] = TopicTable{
			Name:       nb.Name,
			Topic:      b.Topic,
			Timestamps: append([]int64(nil), b.Timestamps...),
			Encodings:  encodings,
			Schemas:    append([]string(nil), b.Schemas...),
			Data:       append([]Value(nil), b.Data...),
		}
		if b.Raw != nil {
			tables[i].Raw = append([][]byte(nil), b.Raw...)
		}
	}
	return tables
}
