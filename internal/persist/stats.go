package persist

import (
	"github.com/aljosa/paima-cards/internal/codec"
	"github.com/aljosa/paima-cards/internal/state"
)

// BlankStats creates a zeroed stats row for tokenID if none exists.
func BlankStats(tokenID int64) Mutation {
	return newMutation(BlankStatsParams{TokenID: tokenID})
}

// StatsUpdate adds result to stats.
func StatsUpdate(stats state.UserStats, result state.ConciseResult) Mutation {
	p := UpdateStatsParams{
		TokenID: stats.TokenID,
		Wins:    stats.Wins,
		Losses:  stats.Losses,
		Ties:    stats.Ties,
	}
	switch result {
	case state.ResultWin:
		p.Wins++
	case state.ResultLoss:
		p.Losses++
	case state.ResultTie:
		p.Ties++
	}
	return newMutation(p)
}

// ScheduleStatsUpdate defers a stats update for tokenID to height+1.
func ScheduleStatsUpdate(tokenID int64, result state.ConciseResult, height int64) (Mutation, error) {
	at, err := nextHeight(height)
	if err != nil {
		return Mutation{}, err
	}
	return ScheduleInput(at, codec.UserStatsTx{TokenID: tokenID, Result: result})
}

func MintNft(tokenID int64, owner string) Mutation {
	return newMutation(MintNftParams{TokenID: tokenID, Owner: owner})
}
