package rules

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aljosa/paima-cards/internal/rng"
	"github.com/aljosa/paima-cards/internal/state"
)

func testSeed(b byte) rng.Seed { return rng.RoundSeed(rng.Seed{b}) }

func TestStartingDeck_IsPermutationAndDeterministic(t *testing.T) {
	d1 := StartingDeck(testSeed(1).Generator())
	d2 := StartingDeck(testSeed(1).Generator())
	require.Equal(t, d1, d2)
	require.Len(t, d1, DeckSize)

	seen := make(map[state.CardID]bool)
	for _, c := range d1 {
		require.True(t, c >= 0 && c < DeckSize, "card out of range: %d", c)
		require.False(t, seen[c], "duplicate card %d", c)
		seen[c] = true
	}
}

func TestRollDice_TwoOnFreshTurnOneOnContinuation(t *testing.T) {
	deck := StartingDeck(testSeed(2).Generator())
	fresh := state.LobbyPlayer{CurrentDeck: deck}

	draws := RollDice(testSeed(3).Generator(), fresh)
	require.Len(t, draws, 2)
	require.Len(t, draws[0].NewDeck, DeckSize-1)
	require.Len(t, draws[1].NewDeck, DeckSize-2)
	require.Equal(t, 0, draws[0].Card.Draw)
	require.Equal(t, 1, draws[1].Card.Draw)
	for _, d := range draws {
		require.GreaterOrEqual(t, d.Die, 1)
		require.LessOrEqual(t, d.Die, DieFaces)
		require.NotNil(t, d.Card.CardID)
	}

	cont := state.LobbyPlayer{CurrentDeck: deck, Points: 5, CurrentDraw: 2}
	draws = RollDice(testSeed(3).Generator(), cont)
	require.Len(t, draws, 1)
	require.Equal(t, 2, draws[0].Card.Draw)
}

func TestDrawCard_EmptyDeck(t *testing.T) {
	d := DrawCard(testSeed(4).Generator(), nil, 7)
	require.Equal(t, -1, d.CardNumber)
	require.Nil(t, d.Card.CardID)
	require.Equal(t, 7, d.Card.Draw)
	require.Empty(t, d.NewDeck)
	require.GreaterOrEqual(t, d.Die, 1)
}

func TestIsValidMove(t *testing.T) {
	seed := testSeed(5)
	base := state.MatchState{
		Turn: 0,
		Players: []state.LobbyPlayer{
			{TokenID: 1, Turn: state.IntPtr(0), CurrentDeck: StartingDeck(seed.Generator())},
			{TokenID: 2, Turn: state.IntPtr(1)},
		},
	}

	// Standing is always legal.
	require.True(t, IsValidMove(seed.Generator(), base, false))

	// With no points, two dice can never reach 21.
	require.True(t, IsValidMove(seed.Generator(), base, true))

	// At 20 points any die reaches 21 or more.
	high := base.Clone()
	high.Players[0].Points = 20
	require.False(t, IsValidMove(seed.Generator(), high, true))
	require.True(t, IsValidMove(seed.Generator(), high, false))

	// Nobody holds the turn.
	lost := base.Clone()
	lost.Turn = 5
	require.False(t, IsValidMove(seed.Generator(), lost, false))

	ended := base.Clone()
	ended.Result = state.MatchResult{state.ResultWin, state.ResultLoss}
	require.False(t, IsValidMove(seed.Generator(), ended, false))
}

func TestPracticeMove(t *testing.T) {
	ms := state.MatchState{Players: []state.LobbyPlayer{{Turn: state.IntPtr(0)}}}
	// Two dice total at most 12: always roll again from zero.
	require.True(t, PracticeMove(testSeed(6).Generator(), ms))

	ms.Players[0].Points = 19
	require.False(t, PracticeMove(testSeed(6).Generator(), ms))
}

func TestMatchResults(t *testing.T) {
	ms := state.MatchState{Players: []state.LobbyPlayer{{Score: 30}, {Score: 12}}}
	require.Equal(t, state.MatchResult{state.ResultWin, state.ResultLoss}, MatchResults(ms))

	ms = state.MatchState{Players: []state.LobbyPlayer{{Score: 3}, {Score: 12}}}
	require.Equal(t, state.MatchResult{state.ResultLoss, state.ResultWin}, MatchResults(ms))

	ms = state.MatchState{Players: []state.LobbyPlayer{{Score: 12}, {Score: 12}}}
	require.Equal(t, state.MatchResult{state.ResultTie, state.ResultTie}, MatchResults(ms))
}

func TestMatchEnded(t *testing.T) {
	ms := state.MatchState{ProperRound: 3}
	require.False(t, MatchEnded(Environment{NumberOfRounds: 3}, ms))
	require.True(t, MatchEnded(Environment{NumberOfRounds: 3, EndRule: EndRuleProperRoundLimit}, ms))
	require.False(t, MatchEnded(Environment{NumberOfRounds: 4, EndRule: EndRuleProperRoundLimit}, ms))
	require.False(t, MatchEnded(Environment{NumberOfRounds: 0, EndRule: EndRuleProperRoundLimit}, ms))
}

func TestParseEndRule(t *testing.T) {
	r, err := ParseEndRule("")
	require.NoError(t, err)
	require.Equal(t, EndRuleDisabled, r)

	r, err = ParseEndRule("proper-round-limit")
	require.NoError(t, err)
	require.Equal(t, EndRuleProperRoundLimit, r)
	require.Equal(t, "proper-round-limit", r.String())

	_, err = ParseEndRule("first-to-21")
	require.Error(t, err)
}
