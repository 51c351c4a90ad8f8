package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Gametoken-tech/gametoken/event"
	"github.com/Gametoken-tech/gametoken/store"
	"github.com/Gametoken-tech/gametoken/store/memory"
	"github.com/Gametoken-tech/gametoken/store/storetest"
)

func TestConformance(t *testing.T) {
	storetest.Run(t, func(*testing.T) store.Store { return memory.New() })
}

func TestClosed(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	require.NoError(t, s.Commit(ctx, storetest.Genesis()))
	require.NoError(t, s.Close())

	require.ErrorIs(t, s.Ping(ctx), store.ErrStoreClosed)
	require.ErrorIs(t, s.Commit(ctx, storetest.Genesis()), store.ErrStoreClosed)
	_, err := s.Load(ctx)
	require.ErrorIs(t, err, store.ErrStoreClosed)
	_, err = s.Events(ctx, event.ListOpts{})
	require.ErrorIs(t, err, store.ErrStoreClosed)
}

func TestLoadReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	require.NoError(t, s.Commit(ctx, storetest.Genesis()))

	snap, err := s.Load(ctx)
	require.NoError(t, err)
	delete(snap.Balances, storetest.Treasury)

	again, err := s.Load(ctx)
	require.NoError(t, err)
	require.Contains(t, again.Balances, storetest.Treasury)
}
