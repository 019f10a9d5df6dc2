package ports

import "github.com/ghalamif/mcap2mat/internal/domain"

// Registry resolves fully-qualified type names to decoders. It is built once
// before streaming starts and is read-only afterwards.
type Registry interface {
	HasType(fullName string) bool
	Decode(fullName string, payload []byte) (domain.Value, error)
}
