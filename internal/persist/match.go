package persist

import (
	"github.com/aljosa/paima-cards/internal/codec"
	"github.com/aljosa/paima-cards/internal/state"
)

func NewMatch(lobbyID string, match int, height int64) Mutation {
	return newMutation(NewMatchParams{LobbyID: lobbyID, Match: match, StartingBlockHeight: height})
}

// NewRound records a round starting at height and schedules its timeout.
func NewRound(lobbyID string, match, round int, roundLength, height int64) ([]Mutation, error) {
	zombie, err := zombieRound(lobbyID, match, round, height, roundLength)
	if err != nil {
		return nil, err
	}
	m := newMutation(NewRoundParams{
		LobbyID:             lobbyID,
		Match:               match,
		Round:               round,
		StartingBlockHeight: height,
		RoundLength:         roundLength,
	})
	sched, err := ScheduleInput(zombie.height, zombie.action)
	if err != nil {
		return nil, err
	}
	return []Mutation{m, sched}, nil
}

// ExecutedRound marks r executed at height and cancels its timeout.
func ExecutedRound(r state.Round, height int64) ([]Mutation, error) {
	zombie, err := zombieRound(r.LobbyID, r.MatchWithinLobby, r.RoundWithinMatch, r.StartingBlockHeight, r.RoundLength)
	if err != nil {
		return nil, err
	}
	del, err := DeleteScheduledInput(zombie.height, zombie.action)
	if err != nil {
		return nil, err
	}
	return []Mutation{
		newMutation(ExecutedRoundParams{
			LobbyID:              r.LobbyID,
			Match:                r.MatchWithinLobby,
			Round:                r.RoundWithinMatch,
			ExecutionBlockHeight: height,
		}),
		del,
	}, nil
}

func UpdateMatchState(lobbyID string, match, round, turn, properRound int) Mutation {
	return newMutation(UpdateMatchStateParams{
		LobbyID:     lobbyID,
		Match:       match,
		Round:       round,
		Turn:        turn,
		ProperRound: properRound,
	})
}

func MatchResults(lobbyID string, match int, result state.MatchResult) Mutation {
	return newMutation(MatchResultsParams{
		LobbyID: lobbyID,
		Match:   match,
		Result:  append(state.MatchResult(nil), result...),
	})
}

func MoveSubmission(m state.Move) Mutation {
	return newMutation(SubmitMoveParams{
		LobbyID:   m.LobbyID,
		Match:     m.MatchWithinLobby,
		Round:     m.RoundWithinMatch,
		TokenID:   m.TokenID,
		Wallet:    m.Wallet,
		RollAgain: m.RollAgain,
	})
}

type scheduled struct {
	height int64
	action codec.Action
}

func zombieRound(lobbyID string, match, round int, start, roundLength int64) (scheduled, error) {
	deadline, err := RoundDeadline(start, roundLength)
	if err != nil {
		return scheduled{}, err
	}
	return scheduled{
		height: deadline,
		action: codec.ZombieRoundTx{LobbyID: lobbyID, MatchWithinLobby: match, RoundWithinMatch: round},
	}, nil
}
