package lobby

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aljosa/paima-cards/internal/codec"
	"github.com/aljosa/paima-cards/internal/persist"
	"github.com/aljosa/paima-cards/internal/rng"
	"github.com/aljosa/paima-cards/internal/state"
	"github.com/aljosa/paima-cards/internal/types"
)

func createInput() codec.CreateLobbyTx {
	return codec.CreateLobbyTx{CreatorTokenID: 1, NumOfRounds: 3, RoundLength: 10, PlayerOneIsWhite: true}
}

func openLobby() (*state.Lobby, []state.LobbyPlayer) {
	l := &state.Lobby{
		ID:               "abcdefghijkl",
		Status:           state.StatusOpen,
		CreatorWallet:    "alice",
		CreatorTokenID:   1,
		MaxPlayers:       2,
		RoundLength:      10,
		PlayerOneIsWhite: true,
	}
	return l, []state.LobbyPlayer{{LobbyID: l.ID, TokenID: 1, Wallet: "alice", Seat: 0}}
}

func TestCanTransition(t *testing.T) {
	require.True(t, CanTransition(state.StatusOpen, state.StatusActive))
	require.True(t, CanTransition(state.StatusOpen, state.StatusClosed))
	require.True(t, CanTransition(state.StatusActive, state.StatusFinished))

	require.False(t, CanTransition(state.StatusActive, state.StatusClosed))
	require.False(t, CanTransition(state.StatusClosed, state.StatusOpen))
	require.False(t, CanTransition(state.StatusFinished, state.StatusActive))
	require.False(t, CanTransition(state.StatusOpen, state.StatusFinished))
}

func TestCreate(t *testing.T) {
	id, muts, err := Create(CreateRequest{BlockHeight: 5, Creator: "alice", Input: createInput(), Seed: rng.Seed{1}})
	require.NoError(t, err)
	require.Len(t, id, types.LobbyIDLength)
	require.Equal(t, []persist.Op{persist.OpCreateLobby, persist.OpAddPlayer, persist.OpBlankStats}, persist.Ops(muts))

	p := muts[0].Params.(persist.CreateLobbyParams)
	require.Equal(t, id, p.LobbyID)
	require.Equal(t, "alice", p.CreatorWallet)
	require.Equal(t, types.DefaultMaxPlayers, p.MaxPlayers)
	require.Equal(t, int64(5), p.CreationBlockHeight)

	again, _, err := Create(CreateRequest{BlockHeight: 5, Creator: "alice", Input: createInput(), Seed: rng.Seed{1}})
	require.NoError(t, err)
	require.Equal(t, id, again)
}

func TestCreatePractice_BotJoinsImmediately(t *testing.T) {
	in := createInput()
	in.IsPractice = true
	id, muts, err := Create(CreateRequest{BlockHeight: 5, Creator: "alice", Input: in, Seed: rng.Seed{2}})
	require.NoError(t, err)

	require.Equal(t, []persist.Op{
		persist.OpCreateLobby,
		persist.OpAddPlayer,
		persist.OpBlankStats,
		persist.OpAddPlayer,
		persist.OpActivateLobby,
		persist.OpNewMatch,
		persist.OpUpdateLobbyPlayer,
		persist.OpUpdateLobbyPlayer,
		persist.OpNewRound,
		persist.OpScheduleInput,
	}, persist.Ops(muts))

	bot := muts[3].Params.(persist.AddPlayerParams)
	require.Equal(t, types.PracticeBotAddress, bot.Wallet)
	require.Equal(t, types.PracticeBotTokenID, bot.TokenID)
	require.Equal(t, id, bot.LobbyID)
	require.Equal(t, types.PracticeBotAddress, muts[4].Params.(persist.ActivateLobbyParams).PlayerTwo)
}

func TestCreatePractice_BotFirstSchedulesItsMove(t *testing.T) {
	in := createInput()
	in.IsPractice = true
	in.PlayerOneIsWhite = false
	_, muts, err := Create(CreateRequest{BlockHeight: 5, Creator: "alice", Input: in, Seed: rng.Seed{2}})
	require.NoError(t, err)

	last := muts[len(muts)-1].Params.(persist.ScheduleInputParams)
	require.Equal(t, int64(6), last.BlockHeight)
	env, err := codec.DecodeTxEnvelope([]byte(last.Input))
	require.NoError(t, err)
	require.Equal(t, codec.TypePracticeMoves, env.Type)

	first := muts[6].Params.(persist.UpdateLobbyPlayerParams)
	require.Equal(t, types.PracticeBotTokenID, first.TokenID)
	require.Equal(t, 0, *first.Turn)
}

func TestJoin_FillsAndActivates(t *testing.T) {
	l, players := openLobby()
	muts, err := Join(JoinRequest{BlockHeight: 9, Lobby: l, Players: players, Wallet: "bob", TokenID: 2, Seed: rng.Seed{3}})
	require.NoError(t, err)
	require.Equal(t, []persist.Op{
		persist.OpAddPlayer,
		persist.OpActivateLobby,
		persist.OpNewMatch,
		persist.OpUpdateLobbyPlayer,
		persist.OpUpdateLobbyPlayer,
		persist.OpNewRound,
		persist.OpScheduleInput,
		persist.OpBlankStats,
	}, persist.Ops(muts))

	act := muts[1].Params.(persist.ActivateLobbyParams)
	require.Equal(t, persist.ActivateLobbyParams{LobbyID: l.ID, PlayerTwo: "bob"}, act)

	creator := muts[3].Params.(persist.UpdateLobbyPlayerParams)
	joiner := muts[4].Params.(persist.UpdateLobbyPlayerParams)
	require.Equal(t, int64(1), creator.TokenID)
	require.Equal(t, 0, *creator.Turn)
	require.Equal(t, int64(2), joiner.TokenID)
	require.Equal(t, 1, *joiner.Turn)
	require.Equal(t, creator.StartingDeck, creator.CurrentDeck)
	require.NotEqual(t, creator.StartingDeck, joiner.StartingDeck)

	round := muts[5].Params.(persist.NewRoundParams)
	require.Equal(t, 0, round.Round)
	require.Equal(t, int64(9), round.StartingBlockHeight)
	require.Equal(t, int64(2), muts[7].Params.(persist.BlankStatsParams).TokenID)
}

func TestJoin_PlayerOneIsBlackSwapsTurns(t *testing.T) {
	l, players := openLobby()
	l.PlayerOneIsWhite = false
	muts, err := Join(JoinRequest{BlockHeight: 9, Lobby: l, Players: players, Wallet: "bob", TokenID: 2, Seed: rng.Seed{3}})
	require.NoError(t, err)

	first := muts[3].Params.(persist.UpdateLobbyPlayerParams)
	require.Equal(t, int64(2), first.TokenID)
	require.Equal(t, 0, *first.Turn)
}

func TestJoin_Rejections(t *testing.T) {
	l, players := openLobby()

	_, err := Join(JoinRequest{Lobby: nil, Wallet: "bob", TokenID: 2})
	require.ErrorIs(t, err, types.ErrLobbyNotFound)

	_, err = Join(JoinRequest{Lobby: l, Players: players, Wallet: "alice", TokenID: 3})
	require.ErrorIs(t, err, types.ErrSelfJoin)

	_, err = Join(JoinRequest{Lobby: l, Players: players, Wallet: "carol", TokenID: 1})
	require.ErrorIs(t, err, types.ErrSelfJoin)

	full := *l
	full.PlayerTwo = "bob"
	_, err = Join(JoinRequest{Lobby: &full, Players: players, Wallet: "carol", TokenID: 3})
	require.ErrorIs(t, err, types.ErrLobbyFull)

	two := append(append([]state.LobbyPlayer(nil), players...), state.LobbyPlayer{TokenID: 2, Wallet: "bob", Seat: 1})
	_, err = Join(JoinRequest{Lobby: l, Players: two, Wallet: "carol", TokenID: 3})
	require.ErrorIs(t, err, types.ErrLobbyFull)

	for _, s := range []state.LobbyStatus{state.StatusActive, state.StatusClosed, state.StatusFinished} {
		other := *l
		other.Status = s
		_, err = Join(JoinRequest{Lobby: &other, Players: players, Wallet: "bob", TokenID: 2})
		require.ErrorIs(t, err, types.ErrLobbyNotOpen, "status %s", s)
	}
}

func TestClose(t *testing.T) {
	l, players := openLobby()

	muts, err := Close(l, players, "alice")
	require.NoError(t, err)
	require.Len(t, muts, 1)
	require.Equal(t, persist.UpdateLobbyStatusParams{LobbyID: l.ID, Status: state.StatusClosed}, muts[0].Params)

	_, err = Close(l, players, "bob")
	require.ErrorIs(t, err, types.ErrNotCreator)

	_, err = Close(nil, nil, "alice")
	require.ErrorIs(t, err, types.ErrLobbyNotFound)

	joined := *l
	joined.PlayerTwo = "bob"
	_, err = Close(&joined, players, "alice")
	require.ErrorIs(t, err, types.ErrLobbyFull)

	closed := *l
	closed.Status = state.StatusClosed
	_, err = Close(&closed, players, "alice")
	require.ErrorIs(t, err, types.ErrLobbyNotOpen)
}

func TestFinish(t *testing.T) {
	l, _ := openLobby()
	_, err := Finish(*l)
	require.ErrorIs(t, err, types.ErrInvalidTransition)

	l.Status = state.StatusActive
	m, err := Finish(*l)
	require.NoError(t, err)
	require.Equal(t, persist.UpdateLobbyStatusParams{LobbyID: l.ID, Status: state.StatusFinished}, m.Params)
}
