package utils

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// GenerateInvoiceNo formats a ledger sequence number, e.g. INV00001.
func GenerateInvoiceNo(prefix string, number int64, width int) string {
	return fmt.Sprintf("%s%0*d", prefix, width, number)
}

// IDGenerator produces identifiers that are unique for the lifetime of the
// store using them.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator issues random UUID strings
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}

// SequenceGenerator issues prefix-1, prefix-2, ... and is safe for concurrent use.
type SequenceGenerator struct {
	Prefix string
	next   atomic.Int64
}

func NewSequenceGenerator(prefix string) *SequenceGenerator {
	return &SequenceGenerator{Prefix: prefix}
}

func (g *SequenceGenerator) NewID() string {
	return fmt.Sprintf("%s-%d", g.Prefix, g.next.Add(1))
}
