// Package address defines the account identifier used by the token engine.
//
// Accounts are 20-byte addresses rendered as 0x-prefixed hex, the same
// identifiers an ERC20 contract keys its balances by. The zero address is
// the null identifier: it never holds a treasury role and is never a valid
// transfer endpoint.
package address

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Address identifies an account.
type Address = common.Address

// Zero is the null identifier.
var Zero Address

// IsZero reports whether a is the null identifier.
func IsZero(a Address) bool { return a == Zero }

// Parse parses a 0x-prefixed (or bare) 40 character hex address.
func Parse(s string) (Address, error) {
	if !common.IsHexAddress(s) {
		return Zero, fmt.Errorf("address: parse %q: not a hex address", s)
	}
	return common.HexToAddress(s), nil
}

// MustParse is like Parse but panics on error. Use for hardcoded values.
func MustParse(s string) Address {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Key returns the canonical lower-case hex form used as a storage key.
func Key(a Address) string {
	return strings.ToLower(a.Hex())
}

// FromKey parses a storage key produced by Key.
func FromKey(k string) (Address, error) {
	return Parse(k)
}

// Sort orders addresses bytewise, in place.
func Sort(addrs []Address) {
	sort.Slice(addrs, func(i, j int) bool {
		return bytes.Compare(addrs[i][:], addrs[j][:]) < 0
	})
}
