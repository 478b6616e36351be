// Package rules implements the dice game's rule library: decks, dice draws,
// move legality, results and the practice bot's policy. Every function is pure;
// randomness comes only from the Generator passed in.
package rules

import (
	"github.com/aljosa/paima-cards/internal/rng"
	"github.com/aljosa/paima-cards/internal/state"
)

const (
	// DeckSize is the number of cards in a starting deck.
	DeckSize = 32
	// DieFaces is the number of faces on each die.
	DieFaces = 6
	// BustLimit is the highest total a turn can reach without busting.
	BustLimit = 21
	// PracticeStandAt is the total at which the practice bot stops rolling.
	PracticeStandAt = 17
)

type RoundKind uint8

const (
	// RoundInitial is the first round of a turn: two dice.
	RoundInitial RoundKind = iota
	// RoundExtra follows a roll-again: one die.
	RoundExtra
)

func (k RoundKind) Dice() int {
	if k == RoundInitial {
		return 2
	}
	return 1
}

// CardDraw is one die roll together with the card drawn alongside it.
type CardDraw struct {
	// CardNumber is the index in the deck the card was taken from, -1 when the
	// deck was empty.
	CardNumber int            `json:"cardNumber"`
	Card       state.HandCard `json:"card"`
	NewDeck    state.Deck     `json:"newDeck"`
	Die        int            `json:"die"`
}

// StartingDeck returns a shuffled deck of cards 0..DeckSize-1.
func StartingDeck(gen *rng.Generator) state.Deck {
	// Fisher-Yates.
	deck := make(state.Deck, DeckSize)
	for i := range deck {
		deck[i] = state.CardID(i)
	}
	for i := DeckSize - 1; i > 0; i-- {
		j := gen.Intn(i + 1)
		deck[i], deck[j] = deck[j], deck[i]
	}
	return deck
}

// KindFor returns the round kind for the player about to move.
func KindFor(p state.LobbyPlayer) RoundKind {
	if p.Points == 0 {
		return RoundInitial
	}
	return RoundExtra
}

// DrawCard takes one card from deck and rolls one die.
func DrawCard(gen *rng.Generator, deck state.Deck, draw int) CardDraw {
	if len(deck) == 0 {
		return CardDraw{
			CardNumber: -1,
			Card:       state.HandCard{Draw: draw},
			NewDeck:    state.Deck{},
			Die:        gen.IntRange(1, DieFaces),
		}
	}
	idx := gen.Intn(len(deck))
	newDeck := make(state.Deck, 0, len(deck)-1)
	newDeck = append(newDeck, deck[:idx]...)
	newDeck = append(newDeck, deck[idx+1:]...)
	return CardDraw{
		CardNumber: idx,
		Card:       state.HandCard{CardID: state.CardPtr(deck[idx]), Draw: draw},
		NewDeck:    newDeck,
		Die:        gen.IntRange(1, DieFaces),
	}
}

// RollDice performs the draws of p's next round.
func RollDice(gen *rng.Generator, p state.LobbyPlayer) []CardDraw {
	n := KindFor(p).Dice()
	out := make([]CardDraw, 0, n)
	deck := p.CurrentDeck
	draw := p.CurrentDraw
	for i := 0; i < n; i++ {
		d := DrawCard(gen, deck, draw)
		out = append(out, d)
		deck = d.NewDeck
		draw++
	}
	return out
}

// Total sums the dice of draws.
func Total(draws []CardDraw) int {
	sum := 0
	for _, d := range draws {
		sum += d.Die
	}
	return sum
}

// Busted reports whether a turn total went over the limit.
func Busted(points int) bool { return points > BustLimit }

// IsValidMove reports whether the turn player may submit rollAgain. gen must be
// a fresh generator for the round's seed.
func IsValidMove(gen *rng.Generator, ms state.MatchState, rollAgain bool) bool {
	i, ok := ms.TurnPlayer()
	if !ok || ms.Ended() {
		return false
	}
	if !rollAgain {
		return true
	}
	p := ms.Players[i]
	return p.Points+Total(RollDice(gen, p)) < BustLimit
}

// PracticeMove picks the bot's move for the current round. gen must be a fresh
// generator for the round's seed.
func PracticeMove(gen *rng.Generator, ms state.MatchState) bool {
	i, ok := ms.TurnPlayer()
	if !ok {
		return false
	}
	p := ms.Players[i]
	return p.Points+Total(RollDice(gen, p)) < PracticeStandAt
}

// MatchResults ranks players by banked score.
func MatchResults(ms state.MatchState) state.MatchResult {
	best := 0
	winners := 0
	for i, p := range ms.Players {
		switch {
		case i == 0 || p.Score > best:
			best = p.Score
			winners = 1
		case p.Score == best:
			winners++
		}
	}
	out := make(state.MatchResult, len(ms.Players))
	for i, p := range ms.Players {
		switch {
		case p.Score < best:
			out[i] = state.ResultLoss
		case winners > 1:
			out[i] = state.ResultTie
		default:
			out[i] = state.ResultWin
		}
	}
	return out
}
