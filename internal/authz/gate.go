// Package authz decides which owning applications a caller may read or
// modify. It is driven by a deployment toggle; when the toggle is off every
// check passes.
package authz

import (
	"fmt"
	"slices"

	"valueconverting/pkg/requestcontext"
	dErrors "valueconverting/pkg/domain-errors"
)

// Gate enforces owner-based access for ValueConverting records.
type Gate struct {
	enabled bool
}

// NewGate returns a gate. With enabled false it permits everything.
func NewGate(enabled bool) *Gate {
	return &Gate{enabled: enabled}
}

// Enabled reports whether owner checks are enforced. Callers use it to pick
// the filtered list query.
func (g *Gate) Enabled() bool {
	return g.enabled
}

// AuthorizedApplicationIDs returns the caller's allowed owner set. The result
// is nil only when enforcement is disabled, meaning "no restriction".
func (g *Gate) AuthorizedApplicationIDs(p requestcontext.AuthPrincipal) []int64 {
	if !g.enabled {
		return nil
	}
	ids := slices.Clone(p.SourceApplicationIDs)
	if ids == nil {
		ids = []int64{}
	}
	return ids
}

// CheckAccess fails with a forbidden error when fromApplicationID is outside
// the caller's authorized set.
func (g *Gate) CheckAccess(p requestcontext.AuthPrincipal, fromApplicationID int64) error {
	if !g.enabled {
		return nil
	}
	if slices.Contains(p.SourceApplicationIDs, fromApplicationID) {
		return nil
	}
	return dErrors.New(dErrors.CodeForbidden, fmt.Sprintf(
		"You do not have permission to access or modify data that is related to source application with id=%d",
		fromApplicationID))
}
