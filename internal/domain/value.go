package domain

// Value is the closed set of shapes a decoded payload can take. Consumers
// switch over the concrete types below; no other implementations exist.
type Value interface {
	isValue()
}

type (
	Null   struct{}
	Bool   bool
	Number float64
	// Int and Uint carry integers exactly; Number would round past 2^53.
	Int      int64
	Uint     uint64
	String   string
	Bytes    []byte
	Sequence []Value
	// Mapping keeps entries in the order they were decoded.
	Mapping []Entry
)

// Entry is a single key/value pair of a Mapping.
type Entry struct {
	Key   string
	Value Value
}

func (Null) isValue()     {}
func (Bool) isValue()     {}
func (Number) isValue()   {}
func (Int) isValue()      {}
func (Uint) isValue()     {}
func (String) isValue()   {}
func (Bytes) isValue()    {}
func (Sequence) isValue() {}
func (Mapping) isValue()  {}

// Get returns the value stored under key.
func (m Mapping) Get(key string) (Value, bool) {
	for _, e := range m {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}
