// Package shared holds the shared (object-cache) tier slot. No real
// backend exists yet: the design intent for this tier's consistency
// semantics is undocumented, so the stub refuses to operate rather than
// invent behaviour. A profile claiming the tier without a real backend
// fails loudly on first use.
package shared

import (
	"context"
	"fmt"

	"github.com/custodia-labs/extracta/internal/core/domain"
	"github.com/custodia-labs/extracta/internal/core/ports/driven"
)

// Ensure Stub implements the interface.
var _ driven.CacheTier = (*Stub)(nil)

// Stub is the placeholder shared tier.
type Stub struct{}

// NewStub creates the placeholder shared tier.
func NewStub() *Stub {
	return &Stub{}
}

// Get always fails with domain.ErrNotImplemented.
func (*Stub) Get(_ context.Context, _ domain.ContentKey, _ bool) (*domain.Entry, error) {
	return nil, fmt.Errorf("shared cache tier: %w", domain.ErrNotImplemented)
}

// Put always fails with domain.ErrNotImplemented.
func (*Stub) Put(_ context.Context, _ *domain.Entry) error {
	return fmt.Errorf("shared cache tier: %w", domain.ErrNotImplemented)
}
