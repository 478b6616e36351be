package game

import (
	"sort"

	"github.com/aljosa/paima-cards/internal/state"
	"github.com/aljosa/paima-cards/internal/types"
)

// BuildMatchState projects an active lobby and its players into a MatchState.
// Players are ordered by turn, then seat. The inputs are not modified.
func BuildMatchState(lobby state.ActiveLobby, players []state.LobbyPlayer) state.MatchState {
	ps := make([]state.LobbyPlayer, len(players))
	for i, p := range players {
		ps[i] = p.Clone()
	}
	sort.SliceStable(ps, func(i, j int) bool {
		ti, tj := ps[i].Turn, ps[j].Turn
		switch {
		case ti == nil && tj == nil:
			return ps[i].Seat < ps[j].Seat
		case ti == nil:
			return false
		case tj == nil:
			return true
		case *ti != *tj:
			return *ti < *tj
		default:
			return ps[i].Seat < ps[j].Seat
		}
	})
	return state.MatchState{
		Players:     ps,
		ProperRound: lobby.ProperRound,
		Turn:        lobby.Turn,
	}
}

// ApplyEvent returns the state after ev. ms is not modified.
func ApplyEvent(ms state.MatchState, ev TickEvent) (state.MatchState, error) {
	out := ms.Clone()
	switch ev := ev.(type) {
	case DrawEvent:
		i, ok := out.TurnPlayer()
		if !ok {
			return ms, types.ErrCorruptState.Wrapf("no player holds turn %d", out.Turn)
		}
		p := &out.Players[i]
		for _, d := range ev.Draws {
			p.CurrentHand = append(p.CurrentHand, d.Card)
			p.CurrentDeck = d.NewDeck.Clone()
			p.CurrentDraw++
		}
	case ApplyPointsEvent:
		if len(ev.Points) != len(out.Players) {
			return ms, types.ErrCorruptState.Wrapf("points for %d players, have %d", len(ev.Points), len(out.Players))
		}
		for i, pts := range ev.Points {
			out.Players[i].Points += pts
		}
	case TurnEndEvent:
		i, ok := out.TurnPlayer()
		if !ok {
			return ms, types.ErrCorruptState.Wrapf("no player holds turn %d", out.Turn)
		}
		p := &out.Players[i]
		p.Score += p.Points
		p.Points = 0
		out.Turn = (out.Turn + 1) % len(out.Players)
	case RoundEndEvent:
		out.ProperRound++
	case MatchEndEvent:
		out.Result = append(state.MatchResult(nil), ev.Result...)
	default:
		return ms, types.ErrCorruptState.Wrapf("unknown tick event %T", ev)
	}
	return out, nil
}
