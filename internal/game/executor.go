package game

import (
	"github.com/aljosa/paima-cards/internal/rng"
	"github.com/aljosa/paima-cards/internal/rules"
	"github.com/aljosa/paima-cards/internal/state"
	"github.com/aljosa/paima-cards/internal/types"
)

// RoundExecutor applies a round's moves to a match state.
type RoundExecutor struct {
	env     rules.Environment
	initial state.MatchState
	moves   []state.Move
	seed    rng.Seed
}

func NewRoundExecutor(env rules.Environment, ms state.MatchState, moves []state.Move, seed rng.Seed) *RoundExecutor {
	return &RoundExecutor{
		env:     env,
		initial: ms.Clone(),
		moves:   append([]state.Move(nil), moves...),
		seed:    seed,
	}
}

// Run returns the events of the round and the resulting state. It can be
// called repeatedly with identical results.
func (e *RoundExecutor) Run() ([]TickEvent, state.MatchState, error) {
	gen := e.seed.Generator()
	ms := e.initial.Clone()
	var events []TickEvent

	for _, mv := range e.moves {
		if ms.Ended() {
			break
		}
		evs, next, err := e.processMove(gen, ms, mv)
		if err != nil {
			return nil, e.initial.Clone(), err
		}
		events = append(events, evs...)
		ms = next
	}
	return events, ms, nil
}

func (e *RoundExecutor) processMove(gen *rng.Generator, ms state.MatchState, mv state.Move) ([]TickEvent, state.MatchState, error) {
	idx, ok := ms.TurnPlayer()
	if !ok {
		return nil, ms, types.ErrCorruptState.Wrapf("no player holds turn %d", ms.Turn)
	}
	p := ms.Players[idx]
	if p.TokenID != mv.TokenID {
		return nil, ms, types.ErrCorruptState.Wrapf("move by token %d on turn of token %d", mv.TokenID, p.TokenID)
	}

	draws := rules.RollDice(gen, p)
	total := p.Points + rules.Total(draws)

	delta := make([]int, len(ms.Players))
	if rules.Busted(total) {
		delta[idx] = -p.Points
	} else {
		delta[idx] = total - p.Points
	}

	events := []TickEvent{
		DrawEvent{Draws: draws, RollAgain: mv.RollAgain},
		ApplyPointsEvent{Points: delta},
	}
	if !mv.RollAgain || total >= rules.BustLimit {
		events = append(events, TurnEndEvent{})
		if (ms.Turn+1)%len(ms.Players) == 0 {
			events = append(events, RoundEndEvent{})
		}
	}

	var err error
	for _, ev := range events {
		if ms, err = ApplyEvent(ms, ev); err != nil {
			return nil, ms, err
		}
	}

	if rules.MatchEnded(e.env, ms) {
		end := MatchEndEvent{Result: rules.MatchResults(ms)}
		if ms, err = ApplyEvent(ms, end); err != nil {
			return nil, ms, err
		}
		events = append(events, end)
	}
	return events, ms, nil
}
