// Package stf is the state-transition function: it routes each decoded action
// to its handler and returns the mutations that record its effect.
package stf

import (
	"context"

	"cosmossdk.io/log"

	"github.com/aljosa/paima-cards/internal/codec"
	"github.com/aljosa/paima-cards/internal/game"
	"github.com/aljosa/paima-cards/internal/lobby"
	"github.com/aljosa/paima-cards/internal/persist"
	"github.com/aljosa/paima-cards/internal/rng"
	"github.com/aljosa/paima-cards/internal/rules"
	"github.com/aljosa/paima-cards/internal/state"
	"github.com/aljosa/paima-cards/internal/types"
)

type Options struct {
	EndRule rules.EndRule
	// NftMinter, when set, is the only sender allowed to record mints.
	NftMinter string
}

// ActionContext is what the host knows about an action besides its payload.
type ActionContext struct {
	BlockHeight int64
	Sender      string
	// Seed is this action's own seed, derived from the block entropy and the
	// action's position in the block.
	Seed rng.Seed
}

type Dispatcher struct {
	reader Reader
	owners Ownership
	logger log.Logger
	opts   Options
}

func NewDispatcher(reader Reader, owners Ownership, logger log.Logger, opts Options) *Dispatcher {
	if reader == nil {
		panic("stf: reader is nil")
	}
	if owners == nil {
		panic("stf: ownership is nil")
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Dispatcher{
		reader: reader,
		owners: owners,
		logger: logger.With("module", types.ModuleName+"/stf"),
		opts:   opts,
	}
}

// Dispatch returns the mutations for a. A discarded action yields an empty
// list and a nil error; any error returned is a hard failure.
func (d *Dispatcher) Dispatch(ctx context.Context, actx ActionContext, a codec.Action) ([]persist.Mutation, error) {
	muts, err := d.dispatch(ctx, actx, a)
	if err == nil {
		return muts, nil
	}
	if types.IsDiscard(err) {
		d.logger.Info("DISCARD", "reason", err.Error(), "type", a.TxType(), "sender", actx.Sender, "height", actx.BlockHeight)
		return nil, nil
	}
	d.logger.Error("state transition failed", "type", a.TxType(), "height", actx.BlockHeight, "err", err)
	return nil, err
}

func (d *Dispatcher) dispatch(ctx context.Context, actx ActionContext, a codec.Action) ([]persist.Mutation, error) {
	switch a := a.(type) {
	case codec.CreateLobbyTx:
		return d.CreateLobby(ctx, actx, a)
	case codec.JoinLobbyTx:
		return d.JoinLobby(ctx, actx, a)
	case codec.CloseLobbyTx:
		return d.CloseLobby(ctx, actx, a)
	case codec.SubmitMovesTx:
		return d.SubmitMoves(ctx, actx, a)
	case codec.PracticeMovesTx:
		return d.PracticeMoves(ctx, actx, a)
	case codec.ZombieRoundTx:
		return d.ZombieRound(ctx, actx, a)
	case codec.UserStatsTx:
		return d.UpdateStats(ctx, actx, a)
	case codec.MintNftTx:
		return d.MintNft(ctx, actx, a)
	default:
		return nil, types.ErrInvalidInput.Wrapf("unhandled action %T", a)
	}
}

func (d *Dispatcher) CreateLobby(ctx context.Context, actx ActionContext, in codec.CreateLobbyTx) ([]persist.Mutation, error) {
	if err := requireUser(actx); err != nil {
		return nil, err
	}
	if err := d.requireOwner(ctx, actx.Sender, in.CreatorTokenID); err != nil {
		return nil, err
	}
	id, muts, err := lobby.Create(lobby.CreateRequest{
		BlockHeight: actx.BlockHeight,
		Creator:     actx.Sender,
		Input:       in,
		Seed:        actx.Seed,
	})
	if err != nil {
		return nil, err
	}
	d.logger.Debug("lobby created", "lobby", id, "creator", actx.Sender, "practice", in.IsPractice)
	return muts, nil
}

func (d *Dispatcher) JoinLobby(ctx context.Context, actx ActionContext, in codec.JoinLobbyTx) ([]persist.Mutation, error) {
	if err := requireUser(actx); err != nil {
		return nil, err
	}
	l, err := d.reader.GetLobby(ctx, in.LobbyID)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, types.ErrLobbyNotFound.Wrap(in.LobbyID)
	}
	players, err := d.reader.GetLobbyPlayers(ctx, l.ID)
	if err != nil {
		return nil, err
	}
	if err := d.requireOwner(ctx, actx.Sender, in.TokenID); err != nil {
		return nil, err
	}
	return lobby.Join(lobby.JoinRequest{
		BlockHeight: actx.BlockHeight,
		Lobby:       l,
		Players:     players,
		Wallet:      actx.Sender,
		TokenID:     in.TokenID,
		Seed:        actx.Seed,
	})
}

func (d *Dispatcher) CloseLobby(ctx context.Context, actx ActionContext, in codec.CloseLobbyTx) ([]persist.Mutation, error) {
	if err := requireUser(actx); err != nil {
		return nil, err
	}
	l, err := d.reader.GetLobby(ctx, in.LobbyID)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, types.ErrLobbyNotFound.Wrap(in.LobbyID)
	}
	if err := d.requireOwner(ctx, actx.Sender, l.CreatorTokenID); err != nil {
		return nil, err
	}
	players, err := d.reader.GetLobbyPlayers(ctx, l.ID)
	if err != nil {
		return nil, err
	}
	return lobby.Close(l, players, actx.Sender)
}

func (d *Dispatcher) SubmitMoves(ctx context.Context, actx ActionContext, in codec.SubmitMovesTx) ([]persist.Mutation, error) {
	if err := requireUser(actx); err != nil {
		return nil, err
	}
	return d.submitMoves(ctx, actx, in, true)
}

func (d *Dispatcher) submitMoves(ctx context.Context, actx ActionContext, in codec.SubmitMovesTx, checkOwner bool) ([]persist.Mutation, error) {
	l, err := d.reader.GetLobby(ctx, in.LobbyID)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, types.ErrLobbyNotFound.Wrap(in.LobbyID)
	}
	active, ok := l.Active()
	if !ok {
		return nil, types.ErrLobbyNotActive.Wrapf("lobby %s is %s", l.ID, l.Status)
	}
	players, err := d.reader.GetLobbyPlayers(ctx, l.ID)
	if err != nil {
		return nil, err
	}
	if len(players) != types.DefaultMaxPlayers {
		return nil, types.ErrWrongPlayerCount.Wrapf("%d players", len(players))
	}
	if checkOwner {
		if err := d.requireOwner(ctx, actx.Sender, in.TokenID); err != nil {
			return nil, err
		}
	}

	round, err := d.reader.GetRound(ctx, l.ID, in.MatchWithinLobby, in.RoundWithinMatch)
	if err != nil {
		return nil, err
	}
	seed, ok, err := SeedForRound(ctx, d.reader, active)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, types.ErrSeedUnavailable.Wrapf("lobby %s round %d", l.ID, active.Round)
	}

	sub := game.Submission{
		TokenID:          in.TokenID,
		MatchWithinLobby: in.MatchWithinLobby,
		RoundWithinMatch: in.RoundWithinMatch,
		RollAgain:        in.RollAgain,
	}
	if err := game.ValidateMove(l, players, round, sub, seed); err != nil {
		return nil, err
	}

	move := state.Move{
		LobbyID:          l.ID,
		MatchWithinLobby: in.MatchWithinLobby,
		RoundWithinMatch: in.RoundWithinMatch,
		TokenID:          in.TokenID,
		Wallet:           seatedWallet(players, in.TokenID),
		RollAgain:        in.RollAgain,
	}
	res, err := game.ExecuteRound(game.RoundInput{
		BlockHeight: actx.BlockHeight,
		Lobby:       active,
		Players:     players,
		Moves:       []state.Move{move},
		Round:       *round,
		Seed:        seed,
		EndRule:     d.opts.EndRule,
	})
	if err != nil {
		return nil, err
	}

	muts := append([]persist.Mutation{persist.MoveSubmission(move)}, res.Mutations...)

	if l.Practice && !res.State.Ended() {
		if i, ok := res.State.TurnPlayer(); ok && res.State.Players[i].Wallet == types.PracticeBotAddress {
			bot, err := persist.SchedulePracticeMove(l.ID, active.Match, active.Round+1, actx.BlockHeight)
			if err != nil {
				return nil, err
			}
			muts = append(muts, bot)
		}
	}
	return muts, nil
}

// PracticeMoves plays the bot's turn through the regular submit path.
func (d *Dispatcher) PracticeMoves(ctx context.Context, actx ActionContext, in codec.PracticeMovesTx) ([]persist.Mutation, error) {
	if err := requireScheduled(actx); err != nil {
		return nil, err
	}
	l, err := d.reader.GetLobby(ctx, in.LobbyID)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, types.ErrLobbyNotFound.Wrap(in.LobbyID)
	}
	if !l.Practice {
		return nil, types.ErrInvalidInput.Wrapf("lobby %s is not a practice lobby", l.ID)
	}
	active, ok := l.Active()
	if !ok {
		return nil, types.ErrLobbyNotActive.Wrapf("lobby %s is %s", l.ID, l.Status)
	}
	players, err := d.reader.GetLobbyPlayers(ctx, l.ID)
	if err != nil {
		return nil, err
	}

	// The AI and the submit path each build their own generator from the seed.
	seed, ok, err := SeedForRound(ctx, d.reader, active)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, types.ErrSeedUnavailable.Wrapf("lobby %s round %d", l.ID, active.Round)
	}
	ms := game.BuildMatchState(active, players)
	if i, ok := ms.TurnPlayer(); !ok || ms.Players[i].Wallet != types.PracticeBotAddress {
		return nil, types.ErrNotYourTurn.Wrap("practice bot")
	}
	rollAgain := rules.PracticeMove(seed.Generator(), ms)

	return d.submitMoves(ctx, actx, codec.SubmitMovesTx{
		LobbyID:          in.LobbyID,
		MatchWithinLobby: in.MatchWithinLobby,
		RoundWithinMatch: in.RoundWithinMatch,
		TokenID:          types.PracticeBotTokenID,
		RollAgain:        rollAgain,
	}, false)
}

// ZombieRound executes a round that timed out without a move.
func (d *Dispatcher) ZombieRound(ctx context.Context, actx ActionContext, in codec.ZombieRoundTx) ([]persist.Mutation, error) {
	if err := requireScheduled(actx); err != nil {
		return nil, err
	}
	l, err := d.reader.GetLobby(ctx, in.LobbyID)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, types.ErrLobbyNotFound.Wrap(in.LobbyID)
	}
	active, ok := l.Active()
	if !ok {
		return nil, types.ErrLobbyNotActive.Wrapf("lobby %s is %s", l.ID, l.Status)
	}
	if in.MatchWithinLobby != active.Match || in.RoundWithinMatch != active.Round {
		return nil, types.ErrStaleScheduledInput.Wrapf("round %d/%d, lobby at %d/%d",
			in.MatchWithinLobby, in.RoundWithinMatch, active.Match, active.Round)
	}
	players, err := d.reader.GetLobbyPlayers(ctx, l.ID)
	if err != nil {
		return nil, err
	}
	round, err := d.reader.GetRound(ctx, l.ID, active.Match, active.Round)
	if err != nil {
		return nil, err
	}
	if round == nil {
		return nil, types.ErrRoundNotFound.Wrapf("match %d round %d", active.Match, active.Round)
	}
	if round.Executed() {
		return nil, types.ErrStaleScheduledInput.Wrapf("round %d already executed", active.Round)
	}
	moves, err := d.reader.GetRoundMoves(ctx, l.ID, active.Match, active.Round)
	if err != nil {
		return nil, err
	}
	seed, ok, err := SeedForRound(ctx, d.reader, active)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, types.ErrSeedUnavailable.Wrapf("lobby %s round %d", l.ID, active.Round)
	}

	res, err := game.ExecuteRound(game.RoundInput{
		BlockHeight: actx.BlockHeight,
		Lobby:       active,
		Players:     players,
		Moves:       moves,
		Round:       *round,
		Seed:        seed,
		EndRule:     d.opts.EndRule,
		Zombie:      true,
	})
	if err != nil {
		return nil, err
	}
	return res.Mutations, nil
}

func (d *Dispatcher) UpdateStats(ctx context.Context, actx ActionContext, in codec.UserStatsTx) ([]persist.Mutation, error) {
	if err := requireScheduled(actx); err != nil {
		return nil, err
	}
	stats, err := d.reader.GetUserStats(ctx, in.TokenID)
	if err != nil {
		return nil, err
	}
	if stats == nil {
		return nil, types.ErrStatsNotFound.Wrapf("token %d", in.TokenID)
	}
	return []persist.Mutation{persist.StatsUpdate(*stats, in.Result)}, nil
}

// MintNft records a newly minted token and gives it a stats row.
func (d *Dispatcher) MintNft(ctx context.Context, actx ActionContext, in codec.MintNftTx) ([]persist.Mutation, error) {
	if d.opts.NftMinter != "" && actx.Sender != d.opts.NftMinter {
		return nil, types.ErrUnauthorizedSender.Wrapf("%s may not mint", actx.Sender)
	}
	owner, ok, err := d.reader.TokenOwner(ctx, in.TokenID)
	if err != nil {
		return nil, err
	}
	if ok {
		return nil, types.ErrTokenAlreadyMinted.Wrapf("token %d owned by %s", in.TokenID, owner)
	}
	return []persist.Mutation{
		persist.MintNft(in.TokenID, in.Owner),
		persist.BlankStats(in.TokenID),
	}, nil
}

func (d *Dispatcher) requireOwner(ctx context.Context, wallet string, tokenID int64) error {
	owns, err := d.owners.OwnsToken(ctx, wallet, tokenID)
	if err != nil {
		return err
	}
	if !owns {
		return types.ErrNotOwner.Wrapf("%s does not own token %d", wallet, tokenID)
	}
	return nil
}

func requireUser(actx ActionContext) error {
	if actx.Sender == "" || types.IsReservedSender(actx.Sender) {
		return types.ErrUnauthorizedSender.Wrapf("sender %q", actx.Sender)
	}
	return nil
}

func requireScheduled(actx ActionContext) error {
	if actx.Sender != types.ScheduledDataAddress {
		return types.ErrUnauthorizedSender.Wrapf("sender %q is not the scheduler", actx.Sender)
	}
	return nil
}

func seatedWallet(players []state.LobbyPlayer, tokenID int64) string {
	for _, p := range players {
		if p.TokenID == tokenID {
			return p.Wallet
		}
	}
	return ""
}
