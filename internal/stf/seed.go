package stf

import (
	"context"

	"github.com/aljosa/paima-cards/internal/rng"
	"github.com/aljosa/paima-cards/internal/state"
	"github.com/aljosa/paima-cards/internal/types"
)

// SeedForRound returns the seed of the lobby's current round. Round 0 is
// anchored on the match's starting block, later rounds on the block that
// executed the previous round. ok is false while the anchor is not yet known.
func SeedForRound(ctx context.Context, r Reader, l state.ActiveLobby) (rng.Seed, bool, error) {
	var anchor int64
	if l.Round == 0 {
		m, err := r.GetMatch(ctx, l.ID, l.Match)
		if err != nil {
			return rng.Seed{}, false, err
		}
		if m == nil {
			return rng.Seed{}, false, nil
		}
		anchor = m.StartingBlockHeight
	} else {
		prev, err := r.GetRound(ctx, l.ID, l.Match, l.Round-1)
		if err != nil {
			return rng.Seed{}, false, err
		}
		if prev == nil || !prev.Executed() {
			return rng.Seed{}, false, nil
		}
		anchor = *prev.ExecutionBlockHeight
	}

	entropy, ok, err := r.GetBlockSeed(ctx, anchor)
	if err != nil {
		return rng.Seed{}, false, err
	}
	if !ok {
		return rng.Seed{}, false, types.ErrMissingBlockSeed.Wrapf("anchor height %d for lobby %s round %d", anchor, l.ID, l.Round)
	}
	return rng.RoundSeed(entropy), true, nil
}
