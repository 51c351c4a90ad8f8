package access_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gametoken-tech/gametoken/access"
	"github.com/Gametoken-tech/gametoken/address"
)

var (
	owner    = address.MustParse("0x5B38Da6a701c568545dCfcB03FcB875f56beddC4")
	stranger = address.MustParse("0xAb8483F64d9C6d1EcF9b849Ae677dD3315835cb2")
)

func TestAuthorize(t *testing.T) {
	c, err := access.New(owner)
	require.NoError(t, err)

	assert.Equal(t, owner, c.Owner())
	assert.True(t, c.IsAdministrator(owner))
	assert.False(t, c.IsAdministrator(stranger))
	assert.False(t, c.IsAdministrator(address.Zero))

	require.NoError(t, c.Authorize(owner))
	require.ErrorIs(t, c.Authorize(stranger), access.ErrUnauthorized)
}

func TestZeroOwnerRejected(t *testing.T) {
	_, err := access.New(address.Zero)
	require.ErrorIs(t, err, access.ErrInvalidOwner)
	require.ErrorIs(t, access.ValidateOwner(address.Zero), access.ErrInvalidOwner)
}

func TestSetOwner(t *testing.T) {
	c, err := access.New(owner)
	require.NoError(t, err)

	c.SetOwner(stranger)
	require.ErrorIs(t, c.Authorize(owner), access.ErrUnauthorized)
	require.NoError(t, c.Authorize(stranger))
}
