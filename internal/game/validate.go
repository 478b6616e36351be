package game

import (
	"github.com/aljosa/paima-cards/internal/rng"
	"github.com/aljosa/paima-cards/internal/rules"
	"github.com/aljosa/paima-cards/internal/state"
	"github.com/aljosa/paima-cards/internal/types"
)

// Submission is a player's move for one round.
type Submission struct {
	TokenID          int64
	MatchWithinLobby int
	RoundWithinMatch int
	RollAgain        bool
}

// ValidateMove returns nil when sub may be executed against the lobby's current
// round, or the discard reason otherwise. seed is the round's seed.
func ValidateMove(lobby *state.Lobby, players []state.LobbyPlayer, round *state.Round, sub Submission, seed rng.Seed) error {
	if lobby == nil {
		return types.ErrLobbyNotFound
	}
	active, ok := lobby.Active()
	if !ok {
		return types.ErrLobbyNotActive.Wrapf("lobby %s is %s", lobby.ID, lobby.Status)
	}

	ms := BuildMatchState(active, players)
	idx, ok := ms.TurnPlayer()
	if !ok || ms.Players[idx].TokenID != sub.TokenID {
		return types.ErrNotYourTurn.Wrapf("token %d", sub.TokenID)
	}

	if round == nil {
		return types.ErrRoundNotFound.Wrapf("match %d round %d", sub.MatchWithinLobby, sub.RoundWithinMatch)
	}
	if sub.MatchWithinLobby != active.Match || round.MatchWithinLobby != active.Match {
		return types.ErrWrongMatch.Wrapf("got %d, current %d", sub.MatchWithinLobby, active.Match)
	}
	if sub.RoundWithinMatch != active.Round || round.RoundWithinMatch != active.Round || round.Executed() {
		return types.ErrWrongRound.Wrapf("got %d, current %d", sub.RoundWithinMatch, active.Round)
	}

	if !rules.IsValidMove(seed.Generator(), ms, sub.RollAgain) {
		return types.ErrInvalidMove.Wrapf("rollAgain=%t", sub.RollAgain)
	}
	return nil
}
