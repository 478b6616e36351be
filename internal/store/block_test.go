package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aljosa/paima-cards/internal/persist"
	"github.com/aljosa/paima-cards/internal/rng"
)

func requireOwner(t *testing.T, r interface {
	TokenOwner(ctx context.Context, tokenID int64) (string, bool, error)
}, tokenID int64, want string) {
	t.Helper()
	owner, ok, err := r.TokenOwner(context.Background(), tokenID)
	require.NoError(t, err)
	if want == "" {
		require.False(t, ok, "token %d should not be minted", tokenID)
		return
	}
	require.True(t, ok, "token %d should be minted", tokenID)
	require.Equal(t, want, owner)
}

func TestBlock_InvisibleUntilCommit(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	b, err := s.BeginBlock(ctx)
	require.NoError(t, err)
	require.NoError(t, b.Apply(ctx, []persist.Mutation{persist.MintNft(5, "alice")}))
	requireOwner(t, b, 5, "alice")
	requireOwner(t, s, 5, "")

	// Dropping the block leaves nothing behind.
	require.NoError(t, b.Rollback())
	require.NoError(t, b.Rollback())
	requireOwner(t, s, 5, "")
	require.ErrorIs(t, b.Apply(ctx, []persist.Mutation{persist.MintNft(6, "bob")}), ErrBlockAborted)

	b, err = s.BeginBlock(ctx)
	require.NoError(t, err)
	require.NoError(t, b.Apply(ctx, []persist.Mutation{persist.MintNft(5, "alice")}))
	meta := Meta{ChainID: "dice-1", Height: 9, AppHash: []byte{9}}
	require.NoError(t, b.Commit(ctx, meta))
	requireOwner(t, s, 5, "alice")

	got, err := s.LoadMeta(ctx)
	require.NoError(t, err)
	require.Equal(t, meta, got)
	require.ErrorIs(t, b.Commit(ctx, meta), ErrBlockAborted)
}

func TestBlock_FailedActionRollsBackAlone(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	b, err := s.BeginBlock(ctx)
	require.NoError(t, err)
	require.NoError(t, b.Apply(ctx, []persist.Mutation{persist.MintNft(7, "carol")}))

	// The second mint collides, so the whole action goes, token 8 included.
	err = b.Apply(ctx, []persist.Mutation{persist.MintNft(8, "dave"), persist.MintNft(7, "erin")})
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrBlockAborted)
	requireOwner(t, b, 8, "")

	require.NoError(t, b.Apply(ctx, []persist.Mutation{persist.MintNft(9, "frank")}))
	require.NoError(t, b.Commit(ctx, Meta{Height: 1}))

	requireOwner(t, s, 7, "carol")
	requireOwner(t, s, 8, "")
	requireOwner(t, s, 9, "frank")
}

func TestBlock_SeedsCachedOnCommit(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	seed := rng.BlockSeed("c", 5, []byte{5})

	b, err := s.BeginBlock(ctx)
	require.NoError(t, err)
	require.NoError(t, b.SaveBlockSeed(ctx, 5, seed))
	got, ok, err := b.GetBlockSeed(ctx, 5)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, seed, got)
	require.NoError(t, b.Rollback())

	_, ok, err = s.GetBlockSeed(ctx, 5)
	require.NoError(t, err)
	require.False(t, ok)

	// A replayed block may record the same seed again.
	b, err = s.BeginBlock(ctx)
	require.NoError(t, err)
	require.NoError(t, b.SaveBlockSeed(ctx, 5, seed))
	require.NoError(t, b.Commit(ctx, Meta{Height: 5}))
	got, ok, err = s.GetBlockSeed(ctx, 5)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, seed, got)
}

func TestAccounts(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	key := make([]byte, 32)
	key[0] = 0xaa

	acc, err := s.Account(ctx, "alice")
	require.NoError(t, err)
	require.Nil(t, acc)

	require.NoError(t, s.Apply(ctx, []persist.Mutation{
		persist.RegisterAccount("alice", key),
		persist.AccountNonce("alice", 3),
	}))
	acc, err = s.Account(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, &Account{Wallet: "alice", PubKey: key, NonceMax: 3}, acc)

	// Nonces only move forward, and a wallet registers once.
	require.Error(t, s.Apply(ctx, []persist.Mutation{persist.AccountNonce("alice", 3)}))
	require.Error(t, s.Apply(ctx, []persist.Mutation{persist.AccountNonce("bob", 1)}))
	require.Error(t, s.Apply(ctx, []persist.Mutation{persist.RegisterAccount("alice", key)}))
	require.NoError(t, s.Apply(ctx, []persist.Mutation{persist.AccountNonce("alice", 4)}))
	acc, err = s.Account(ctx, "alice")
	require.NoError(t, err)
	require.EqualValues(t, 4, acc.NonceMax)
}
