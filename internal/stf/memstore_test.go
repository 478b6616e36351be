package stf

import (
	"context"
	"fmt"
	"sort"
	"testing"

	"github.com/aljosa/paima-cards/internal/persist"
	"github.com/aljosa/paima-cards/internal/rng"
	"github.com/aljosa/paima-cards/internal/state"
)

type roundKey struct {
	lobby        string
	match, round int
}

type moveKey struct {
	roundKey
	token int64
}

// memStore is an in-memory Reader/Ownership that applies mutation lists.
type memStore struct {
	lobbies   map[string]*state.Lobby
	players   map[string][]state.LobbyPlayer
	matches   map[roundKey]*state.Match
	rounds    map[roundKey]*state.Round
	moves     map[moveKey]state.Move
	stats     map[int64]*state.UserStats
	seeds     map[int64]rng.Seed
	owners    map[int64]string
	scheduled map[int64][]string
}

func newMemStore() *memStore {
	return &memStore{
		lobbies:   map[string]*state.Lobby{},
		players:   map[string][]state.LobbyPlayer{},
		matches:   map[roundKey]*state.Match{},
		rounds:    map[roundKey]*state.Round{},
		moves:     map[moveKey]state.Move{},
		stats:     map[int64]*state.UserStats{},
		seeds:     map[int64]rng.Seed{},
		owners:    map[int64]string{},
		scheduled: map[int64][]string{},
	}
}

func (m *memStore) GetLobby(_ context.Context, id string) (*state.Lobby, error) {
	l, ok := m.lobbies[id]
	if !ok {
		return nil, nil
	}
	cp := *l
	return &cp, nil
}

func (m *memStore) GetLobbyPlayers(_ context.Context, id string) ([]state.LobbyPlayer, error) {
	out := make([]state.LobbyPlayer, 0, len(m.players[id]))
	for _, p := range m.players[id] {
		out = append(out, p.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seat < out[j].Seat })
	return out, nil
}

func (m *memStore) GetMatch(_ context.Context, id string, match int) (*state.Match, error) {
	v, ok := m.matches[roundKey{id, match, 0}]
	if !ok {
		return nil, nil
	}
	cp := *v
	return &cp, nil
}

func (m *memStore) GetRound(_ context.Context, id string, match, round int) (*state.Round, error) {
	v, ok := m.rounds[roundKey{id, match, round}]
	if !ok {
		return nil, nil
	}
	cp := *v
	return &cp, nil
}

func (m *memStore) GetRoundMoves(_ context.Context, id string, match, round int) ([]state.Move, error) {
	var out []state.Move
	for k, v := range m.moves {
		if k.roundKey == (roundKey{id, match, round}) {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TokenID < out[j].TokenID })
	return out, nil
}

func (m *memStore) GetUserStats(_ context.Context, token int64) (*state.UserStats, error) {
	v, ok := m.stats[token]
	if !ok {
		return nil, nil
	}
	cp := *v
	return &cp, nil
}

func (m *memStore) GetBlockSeed(_ context.Context, h int64) (rng.Seed, bool, error) {
	s, ok := m.seeds[h]
	return s, ok, nil
}

func (m *memStore) TokenOwner(_ context.Context, token int64) (string, bool, error) {
	w, ok := m.owners[token]
	return w, ok, nil
}

func (m *memStore) OwnsToken(_ context.Context, wallet string, token int64) (bool, error) {
	return m.owners[token] == wallet && wallet != "", nil
}

func (m *memStore) player(lobby string, token int64) *state.LobbyPlayer {
	for i := range m.players[lobby] {
		if m.players[lobby][i].TokenID == token {
			return &m.players[lobby][i]
		}
	}
	return nil
}

func (m *memStore) apply(t *testing.T, muts []persist.Mutation) {
	t.Helper()
	for _, mut := range muts {
		if err := m.applyOne(mut); err != nil {
			t.Fatalf("apply %s: %v", mut.Op, err)
		}
	}
}

func (m *memStore) applyOne(mut persist.Mutation) error {
	switch p := mut.Params.(type) {
	case persist.CreateLobbyParams:
		m.lobbies[p.LobbyID] = &state.Lobby{
			ID:                  p.LobbyID,
			Status:              state.StatusOpen,
			CreatorWallet:       p.CreatorWallet,
			CreatorTokenID:      p.CreatorTokenID,
			MaxPlayers:          p.MaxPlayers,
			NumOfRounds:         p.NumOfRounds,
			RoundLength:         p.RoundLength,
			PlayTimePerPlayer:   p.PlayTimePerPlayer,
			Hidden:              p.Hidden,
			Practice:            p.Practice,
			PlayerOneIsWhite:    p.PlayerOneIsWhite,
			CreationBlockHeight: p.CreationBlockHeight,
		}
	case persist.AddPlayerParams:
		m.players[p.LobbyID] = append(m.players[p.LobbyID], state.LobbyPlayer{
			LobbyID: p.LobbyID, TokenID: p.TokenID, Wallet: p.Wallet, Seat: p.Seat,
			StartingDeck: state.Deck{}, CurrentDeck: state.Deck{}, CurrentHand: state.Hand{},
		})
	case persist.ActivateLobbyParams:
		l := m.lobbies[p.LobbyID]
		if l == nil {
			return fmt.Errorf("no lobby %s", p.LobbyID)
		}
		l.Status = state.StatusActive
		l.PlayerTwo = p.PlayerTwo
		l.CurrentMatch = state.IntPtr(p.Match)
		l.CurrentRound = state.IntPtr(p.Round)
		l.CurrentTurn = state.IntPtr(p.Turn)
		l.CurrentProperRound = state.IntPtr(p.ProperRound)
	case persist.UpdateLobbyStatusParams:
		l := m.lobbies[p.LobbyID]
		if l == nil {
			return fmt.Errorf("no lobby %s", p.LobbyID)
		}
		l.Status = p.Status
	case persist.NewMatchParams:
		m.matches[roundKey{p.LobbyID, p.Match, 0}] = &state.Match{LobbyID: p.LobbyID, MatchWithinLobby: p.Match, StartingBlockHeight: p.StartingBlockHeight}
	case persist.NewRoundParams:
		m.rounds[roundKey{p.LobbyID, p.Match, p.Round}] = &state.Round{
			LobbyID: p.LobbyID, MatchWithinLobby: p.Match, RoundWithinMatch: p.Round,
			StartingBlockHeight: p.StartingBlockHeight, RoundLength: p.RoundLength,
		}
	case persist.ExecutedRoundParams:
		r := m.rounds[roundKey{p.LobbyID, p.Match, p.Round}]
		if r == nil {
			return fmt.Errorf("no round %+v", p)
		}
		r.ExecutionBlockHeight = state.Int64Ptr(p.ExecutionBlockHeight)
	case persist.UpdateMatchStateParams:
		l := m.lobbies[p.LobbyID]
		if l == nil {
			return fmt.Errorf("no lobby %s", p.LobbyID)
		}
		l.CurrentMatch = state.IntPtr(p.Match)
		l.CurrentRound = state.IntPtr(p.Round)
		l.CurrentTurn = state.IntPtr(p.Turn)
		l.CurrentProperRound = state.IntPtr(p.ProperRound)
	case persist.UpdateLobbyPlayerParams:
		pl := m.player(p.LobbyID, p.TokenID)
		if pl == nil {
			return fmt.Errorf("no player %d in %s", p.TokenID, p.LobbyID)
		}
		pl.StartingDeck = p.StartingDeck.Clone()
		pl.CurrentDeck = p.CurrentDeck.Clone()
		pl.CurrentHand = p.CurrentHand.Clone()
		pl.CurrentDraw = p.CurrentDraw
		pl.Turn = p.Turn
		pl.Points = p.Points
		pl.Score = p.Score
	case persist.SubmitMoveParams:
		k := moveKey{roundKey{p.LobbyID, p.Match, p.Round}, p.TokenID}
		m.moves[k] = state.Move{LobbyID: p.LobbyID, MatchWithinLobby: p.Match, RoundWithinMatch: p.Round, TokenID: p.TokenID, Wallet: p.Wallet, RollAgain: p.RollAgain}
	case persist.MatchResultsParams:
		mt := m.matches[roundKey{p.LobbyID, p.Match, 0}]
		if mt == nil {
			return fmt.Errorf("no match %+v", p)
		}
		mt.Result = p.Result
	case persist.BlankStatsParams:
		if _, ok := m.stats[p.TokenID]; !ok {
			m.stats[p.TokenID] = &state.UserStats{TokenID: p.TokenID}
		}
	case persist.UpdateStatsParams:
		m.stats[p.TokenID] = &state.UserStats{TokenID: p.TokenID, Wins: p.Wins, Losses: p.Losses, Ties: p.Ties}
	case persist.ScheduleInputParams:
		m.scheduled[p.BlockHeight] = append(m.scheduled[p.BlockHeight], p.Input)
	case persist.DeleteScheduledInputParams:
		list := m.scheduled[p.BlockHeight]
		for i, in := range list {
			if in == p.Input {
				m.scheduled[p.BlockHeight] = append(list[:i:i], list[i+1:]...)
				break
			}
		}
	case persist.MintNftParams:
		m.owners[p.TokenID] = p.Owner
	default:
		return fmt.Errorf("unknown params %T", p)
	}
	return nil
}
