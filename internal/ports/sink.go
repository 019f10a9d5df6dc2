package ports

import "github.com/ghalamif/mcap2mat/internal/domain"

// Sink persists the final output mapping in one write.
type Sink interface {
	Write(out *domain.Output) error
	Name() string
}
