// Package game validates and executes rounds of a running match.
package game

import (
	"fmt"

	"github.com/aljosa/paima-cards/internal/rules"
	"github.com/aljosa/paima-cards/internal/state"
)

type TickEventKind uint8

const (
	KindDraw TickEventKind = iota
	KindApplyPoints
	KindTurnEnd
	KindRoundEnd
	KindMatchEnd
)

func (k TickEventKind) String() string {
	switch k {
	case KindDraw:
		return "draw"
	case KindApplyPoints:
		return "applyPoints"
	case KindTurnEnd:
		return "turnEnd"
	case KindRoundEnd:
		return "roundEnd"
	case KindMatchEnd:
		return "matchEnd"
	default:
		return fmt.Sprintf("TickEventKind(%d)", uint8(k))
	}
}

// TickEvent is one step of round execution. The set of implementations is closed.
type TickEvent interface {
	Kind() TickEventKind
	isTickEvent()
}

// DrawEvent records the dice (and cards) of the turn player's round.
type DrawEvent struct {
	Draws     []rules.CardDraw `json:"diceRolls"`
	RollAgain bool             `json:"rollAgain"`
}

// ApplyPointsEvent adds Points[i] to Players[i].Points.
type ApplyPointsEvent struct {
	Points []int `json:"points"`
}

type TurnEndEvent struct{}

type RoundEndEvent struct{}

type MatchEndEvent struct {
	Result state.MatchResult `json:"result"`
}

func (DrawEvent) Kind() TickEventKind        { return KindDraw }
func (ApplyPointsEvent) Kind() TickEventKind { return KindApplyPoints }
func (TurnEndEvent) Kind() TickEventKind     { return KindTurnEnd }
func (RoundEndEvent) Kind() TickEventKind    { return KindRoundEnd }
func (MatchEndEvent) Kind() TickEventKind    { return KindMatchEnd }

func (DrawEvent) isTickEvent()        {}
func (ApplyPointsEvent) isTickEvent() {}
func (TurnEndEvent) isTickEvent()     {}
func (RoundEndEvent) isTickEvent()    {}
func (MatchEndEvent) isTickEvent()    {}

// Kinds lists the kinds of events in order.
func Kinds(events []TickEvent) []TickEventKind {
	out := make([]TickEventKind, len(events))
	for i, ev := range events {
		out[i] = ev.Kind()
	}
	return out
}
