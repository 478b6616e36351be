package state

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// CardID identifies a card in a player's deck.
type CardID int

// Deck is an ordered list of remaining cards.
type Deck []CardID

func (d Deck) Clone() Deck {
	if d == nil {
		return nil
	}
	return append(Deck(nil), d...)
}

// String encodes d as comma separated ids ("3,17,0").
func (d Deck) String() string {
	parts := make([]string, len(d))
	for i, c := range d {
		parts[i] = strconv.Itoa(int(c))
	}
	return strings.Join(parts, ",")
}

// ParseDeck is the inverse of Deck.String.
func ParseDeck(s string) (Deck, error) {
	if s == "" {
		return Deck{}, nil
	}
	parts := strings.Split(s, ",")
	out := make(Deck, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid card %q: %w", p, err)
		}
		out = append(out, CardID(n))
	}
	return out, nil
}

// HandCard is a card in hand. CardID is nil when the draw found the deck empty.
type HandCard struct {
	CardID *CardID `json:"cardId,omitempty"`
	Draw   int     `json:"draw"`
}

type Hand []HandCard

func (h Hand) Clone() Hand {
	if h == nil {
		return nil
	}
	out := make(Hand, len(h))
	for i, c := range h {
		out[i] = c
		if c.CardID != nil {
			id := *c.CardID
			out[i].CardID = &id
		}
	}
	return out
}

func (h Hand) Marshal() (string, error) {
	if h == nil {
		h = Hand{}
	}
	b, err := json.Marshal(h)
	if err != nil {
		return "", fmt.Errorf("encode hand: %w", err)
	}
	return string(b), nil
}

func ParseHand(s string) (Hand, error) {
	if s == "" {
		return Hand{}, nil
	}
	var h Hand
	if err := json.Unmarshal([]byte(s), &h); err != nil {
		return nil, fmt.Errorf("decode hand: %w", err)
	}
	return h, nil
}

// ParseMatchResult decodes "w,l" style results.
func ParseMatchResult(s string) (MatchResult, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make(MatchResult, len(parts))
	for i, p := range parts {
		r := ConciseResult(p)
		switch r {
		case ResultWin, ResultTie, ResultLoss:
		default:
			return nil, fmt.Errorf("invalid result %q", p)
		}
		out[i] = r
	}
	return out, nil
}

func (r MatchResult) String() string {
	parts := make([]string, len(r))
	for i, c := range r {
		parts[i] = string(c)
	}
	return strings.Join(parts, ",")
}

func CardPtr(c CardID) *CardID { return &c }
