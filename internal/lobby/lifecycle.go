// Package lobby implements the lobby lifecycle: open -> active -> finished and
// open -> closed. Every function returns the mutations for one transition and
// never reads storage.
package lobby

import (
	"github.com/aljosa/paima-cards/internal/codec"
	"github.com/aljosa/paima-cards/internal/persist"
	"github.com/aljosa/paima-cards/internal/rng"
	"github.com/aljosa/paima-cards/internal/rules"
	"github.com/aljosa/paima-cards/internal/state"
	"github.com/aljosa/paima-cards/internal/types"
)

var transitions = map[state.LobbyStatus][]state.LobbyStatus{
	state.StatusOpen:   {state.StatusActive, state.StatusClosed},
	state.StatusActive: {state.StatusFinished},
}

// CanTransition reports whether a lobby may move from one status to another.
func CanTransition(from, to state.LobbyStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func requireTransition(l state.Lobby, to state.LobbyStatus) error {
	if !CanTransition(l.Status, to) {
		return types.ErrInvalidTransition.Wrapf("lobby %s: %s -> %s", l.ID, l.Status, to)
	}
	return nil
}

type CreateRequest struct {
	BlockHeight int64
	Creator     string
	Input       codec.CreateLobbyTx
	// Seed is the action's seed. It names the lobby and, for practice lobbies,
	// deals the decks.
	Seed rng.Seed
}

// Create opens a lobby. A practice lobby is joined by the bot in the same batch.
func Create(req CreateRequest) (string, []persist.Mutation, error) {
	if err := req.Input.ValidateBasic(); err != nil {
		return "", nil, err
	}
	gen := req.Seed.Generator()
	id := gen.NextString(types.LobbyIDLength)

	in := req.Input
	l := state.Lobby{
		ID:                  id,
		Status:              state.StatusOpen,
		CreatorWallet:       req.Creator,
		CreatorTokenID:      in.CreatorTokenID,
		MaxPlayers:          in.Capacity(),
		NumOfRounds:         in.NumOfRounds,
		RoundLength:         in.RoundLength,
		PlayTimePerPlayer:   in.PlayTimePerPlayer,
		Hidden:              in.IsHidden,
		Practice:            in.IsPractice,
		PlayerOneIsWhite:    in.PlayerOneIsWhite,
		CreationBlockHeight: req.BlockHeight,
	}
	creator := state.LobbyPlayer{LobbyID: id, TokenID: in.CreatorTokenID, Wallet: req.Creator}

	muts := []persist.Mutation{
		persist.CreateLobby(persist.CreateLobbyParams{
			LobbyID:             l.ID,
			CreatorWallet:       l.CreatorWallet,
			CreatorTokenID:      l.CreatorTokenID,
			MaxPlayers:          l.MaxPlayers,
			NumOfRounds:         l.NumOfRounds,
			RoundLength:         l.RoundLength,
			PlayTimePerPlayer:   l.PlayTimePerPlayer,
			Hidden:              l.Hidden,
			Practice:            l.Practice,
			PlayerOneIsWhite:    l.PlayerOneIsWhite,
			CreationBlockHeight: l.CreationBlockHeight,
		}),
		persist.AddPlayer(id, creator.TokenID, creator.Wallet, 0),
		persist.BlankStats(creator.TokenID),
	}

	if l.Practice {
		bot := state.LobbyPlayer{LobbyID: id, TokenID: types.PracticeBotTokenID, Wallet: types.PracticeBotAddress}
		joined, err := join(gen, req.BlockHeight, l, []state.LobbyPlayer{creator}, bot)
		if err != nil {
			return "", nil, err
		}
		muts = append(muts, joined...)
	}
	return id, muts, nil
}

type JoinRequest struct {
	BlockHeight int64
	Lobby       *state.Lobby
	Players     []state.LobbyPlayer
	Wallet      string
	TokenID     int64
	Seed        rng.Seed
}

// Join adds a player. Filling the lobby activates it and starts match 0.
func Join(req JoinRequest) ([]persist.Mutation, error) {
	if req.Lobby == nil {
		return nil, types.ErrLobbyNotFound
	}
	joiner := state.LobbyPlayer{LobbyID: req.Lobby.ID, TokenID: req.TokenID, Wallet: req.Wallet}
	muts, err := join(req.Seed.Generator(), req.BlockHeight, *req.Lobby, req.Players, joiner)
	if err != nil {
		return nil, err
	}
	return append(muts, persist.BlankStats(req.TokenID)), nil
}

func join(gen *rng.Generator, height int64, l state.Lobby, players []state.LobbyPlayer, joiner state.LobbyPlayer) ([]persist.Mutation, error) {
	if l.Status != state.StatusOpen {
		return nil, types.ErrLobbyNotOpen.Wrapf("lobby %s is %s", l.ID, l.Status)
	}
	if l.PlayerTwo != "" || len(players) >= l.MaxPlayers {
		return nil, types.ErrLobbyFull.Wrapf("lobby %s", l.ID)
	}
	if joiner.Wallet == l.CreatorWallet {
		return nil, types.ErrSelfJoin.Wrapf("wallet %s", joiner.Wallet)
	}
	for _, p := range players {
		if p.TokenID == joiner.TokenID || p.Wallet == joiner.Wallet {
			return nil, types.ErrSelfJoin.Wrapf("token %d already seated", joiner.TokenID)
		}
	}

	joiner.Seat = len(players)
	muts := []persist.Mutation{persist.AddPlayer(l.ID, joiner.TokenID, joiner.Wallet, joiner.Seat)}

	seated := make([]state.LobbyPlayer, 0, len(players)+1)
	seated = append(seated, players...)
	seated = append(seated, joiner)
	if len(seated) < l.MaxPlayers {
		return muts, nil
	}

	activation, err := activate(gen, height, l, seated)
	if err != nil {
		return nil, err
	}
	return append(muts, activation...), nil
}

// activate deals decks, assigns turns and opens match 0 round 0.
func activate(gen *rng.Generator, height int64, l state.Lobby, seated []state.LobbyPlayer) ([]persist.Mutation, error) {
	if err := requireTransition(l, state.StatusActive); err != nil {
		return nil, err
	}
	order := turnOrder(l, seated)

	muts := []persist.Mutation{
		persist.ActivateLobby(l.ID, seated[len(seated)-1].Wallet),
		persist.NewMatch(l.ID, 0, height),
	}
	for turn, p := range order {
		deck := rules.StartingDeck(gen)
		p.StartingDeck = deck
		p.CurrentDeck = deck.Clone()
		p.CurrentHand = state.Hand{}
		p.CurrentDraw = 0
		p.Turn = state.IntPtr(turn)
		p.Points = 0
		p.Score = 0
		muts = append(muts, persist.UpdateLobbyPlayer(p))
	}

	round, err := persist.NewRound(l.ID, 0, 0, l.RoundLength, height)
	if err != nil {
		return nil, err
	}
	muts = append(muts, round...)

	if order[0].Wallet == types.PracticeBotAddress {
		bot, err := persist.SchedulePracticeMove(l.ID, 0, 0, height)
		if err != nil {
			return nil, err
		}
		muts = append(muts, bot)
	}
	return muts, nil
}

// turnOrder seats the creator first when PlayerOneIsWhite, last otherwise.
func turnOrder(l state.Lobby, seated []state.LobbyPlayer) []state.LobbyPlayer {
	order := make([]state.LobbyPlayer, 0, len(seated))
	var creator []state.LobbyPlayer
	for _, p := range seated {
		if p.Seat == 0 {
			creator = append(creator, p)
			continue
		}
		order = append(order, p)
	}
	if l.PlayerOneIsWhite {
		return append(creator, order...)
	}
	return append(order, creator...)
}

// Close cancels an open lobby nobody has joined.
func Close(l *state.Lobby, players []state.LobbyPlayer, requester string) ([]persist.Mutation, error) {
	if l == nil {
		return nil, types.ErrLobbyNotFound
	}
	if l.Status != state.StatusOpen {
		return nil, types.ErrLobbyNotOpen.Wrapf("lobby %s is %s", l.ID, l.Status)
	}
	if l.PlayerTwo != "" || len(players) > 1 {
		return nil, types.ErrLobbyFull.Wrapf("lobby %s already has a second player", l.ID)
	}
	if requester != l.CreatorWallet {
		return nil, types.ErrNotCreator.Wrapf("wallet %s", requester)
	}
	if err := requireTransition(*l, state.StatusClosed); err != nil {
		return nil, err
	}
	return []persist.Mutation{persist.UpdateLobbyStatus(l.ID, state.StatusClosed)}, nil
}

// Finish ends an active lobby's match.
func Finish(l state.Lobby) (persist.Mutation, error) {
	if err := requireTransition(l, state.StatusFinished); err != nil {
		return persist.Mutation{}, err
	}
	return persist.UpdateLobbyStatus(l.ID, state.StatusFinished), nil
}
