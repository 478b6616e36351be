package types

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsDiscard(t *testing.T) {
	require.False(t, IsDiscard(nil))
	require.True(t, IsDiscard(ErrLobbyFull))
	require.True(t, IsDiscard(ErrNotYourTurn.Wrapf("token %d", 7)))
	require.True(t, IsDiscard(fmt.Errorf("join: %w", ErrSelfJoin)))

	require.False(t, IsDiscard(ErrNotImplemented))
	require.False(t, IsDiscard(ErrMissingBlockSeed.Wrap("height 4")))
	require.False(t, IsDiscard(fmt.Errorf("db down")))
}

func TestIsReservedSender(t *testing.T) {
	require.True(t, IsReservedSender(ScheduledDataAddress))
	require.True(t, IsReservedSender(PracticeBotAddress))
	require.False(t, IsReservedSender("0xabc"))
}
