package game

import (
	"github.com/aljosa/paima-cards/internal/lobby"
	"github.com/aljosa/paima-cards/internal/persist"
	"github.com/aljosa/paima-cards/internal/rng"
	"github.com/aljosa/paima-cards/internal/rules"
	"github.com/aljosa/paima-cards/internal/state"
	"github.com/aljosa/paima-cards/internal/types"
)

// RoundInput is everything needed to execute one round.
type RoundInput struct {
	BlockHeight int64
	Lobby       state.ActiveLobby
	Players     []state.LobbyPlayer
	Moves       []state.Move
	Round       state.Round
	Seed        rng.Seed
	EndRule     rules.EndRule
	// Zombie marks execution triggered by the round timing out.
	Zombie bool
}

type RoundResult struct {
	Mutations []persist.Mutation
	State     state.MatchState
	Events    []TickEvent
}

// ExecuteRound runs the round and returns the mutations recording it: updated
// lobby counters and players, the executed marker, then either the next round
// or the match finalization.
func ExecuteRound(in RoundInput) (RoundResult, error) {
	if in.Zombie {
		return RoundResult{}, types.ErrNotImplemented.Wrapf("zombie round %s/%d/%d",
			in.Lobby.ID, in.Round.MatchWithinLobby, in.Round.RoundWithinMatch)
	}

	env := rules.Environment{
		Practice:       in.Lobby.Practice,
		NumberOfRounds: in.Lobby.NumOfRounds,
		EndRule:        in.EndRule,
	}
	ms := BuildMatchState(in.Lobby, in.Players)
	events, next, err := NewRoundExecutor(env, ms, in.Moves, in.Seed).Run()
	if err != nil {
		return RoundResult{}, err
	}

	nextRound := in.Lobby.Round + 1
	muts := []persist.Mutation{
		persist.UpdateMatchState(in.Lobby.ID, in.Lobby.Match, nextRound, next.Turn, next.ProperRound),
	}
	for _, p := range next.Players {
		muts = append(muts, persist.UpdateLobbyPlayer(p))
	}

	executed, err := persist.ExecutedRound(in.Round, in.BlockHeight)
	if err != nil {
		return RoundResult{}, err
	}
	muts = append(muts, executed...)

	if next.Ended() {
		final, err := finalizeMatch(in.BlockHeight, in.Lobby, next)
		if err != nil {
			return RoundResult{}, err
		}
		muts = append(muts, final...)
	} else {
		round, err := persist.NewRound(in.Lobby.ID, in.Lobby.Match, nextRound, in.Lobby.RoundLength, in.BlockHeight)
		if err != nil {
			return RoundResult{}, err
		}
		muts = append(muts, round...)
	}

	return RoundResult{Mutations: muts, State: next, Events: events}, nil
}

// finalizeMatch finishes the lobby. Practice matches stop there; others also
// record results and schedule one stats update per player.
func finalizeMatch(height int64, l state.ActiveLobby, ms state.MatchState) ([]persist.Mutation, error) {
	finish, err := lobby.Finish(l.Lobby)
	if err != nil {
		return nil, err
	}
	muts := []persist.Mutation{finish}
	if l.Practice {
		return muts, nil
	}

	muts = append(muts, persist.MatchResults(l.ID, l.Match, ms.Result))
	for i, p := range ms.Players {
		if i >= len(ms.Result) {
			return nil, types.ErrCorruptState.Wrapf("no result for player %d", p.TokenID)
		}
		m, err := persist.ScheduleStatsUpdate(p.TokenID, ms.Result[i], height)
		if err != nil {
			return nil, err
		}
		muts = append(muts, m)
	}
	return muts, nil
}
