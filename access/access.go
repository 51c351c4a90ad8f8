// Package access holds the single administrator identity that gates every
// policy-mutating operation.
package access

import (
	"errors"

	"github.com/Gametoken-tech/gametoken/address"
)

// Sentinel errors.
var (
	ErrUnauthorized = errors.New("access: caller is not the owner")
	ErrInvalidOwner = errors.New("access: new owner is the zero address")
)

// Control stores the administrator.
type Control struct {
	owner address.Address
}

// New returns a Control owned by owner.
func New(owner address.Address) (*Control, error) {
	if address.IsZero(owner) {
		return nil, ErrInvalidOwner
	}
	return &Control{owner: owner}, nil
}

// Owner returns the administrator.
func (c *Control) Owner() address.Address { return c.owner }

// IsAdministrator reports whether identity is the administrator.
func (c *Control) IsAdministrator(identity address.Address) bool {
	return identity == c.owner
}

// Authorize returns ErrUnauthorized unless identity is the administrator.
func (c *Control) Authorize(identity address.Address) error {
	if !c.IsAdministrator(identity) {
		return ErrUnauthorized
	}
	return nil
}

// ValidateOwner rejects the null identifier as a new owner.
func ValidateOwner(owner address.Address) error {
	if address.IsZero(owner) {
		return ErrInvalidOwner
	}
	return nil
}

// SetOwner replaces the administrator. The caller has authorized and
// validated the change.
func (c *Control) SetOwner(owner address.Address) { c.owner = owner }
