package app

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"cosmossdk.io/log"
	abci "github.com/cometbft/cometbft/abci/types"

	"github.com/aljosa/paima-cards/internal/codec"
	"github.com/aljosa/paima-cards/internal/config"
	"github.com/aljosa/paima-cards/internal/persist"
	"github.com/aljosa/paima-cards/internal/rng"
	"github.com/aljosa/paima-cards/internal/state"
	"github.com/aljosa/paima-cards/internal/stf"
	"github.com/aljosa/paima-cards/internal/store"
	"github.com/aljosa/paima-cards/internal/types"
)

const (
	AppVersion uint64 = 1
)

// DiceApp hosts the state-transition function behind ABCI. Blocks are
// processed one at a time under mu. A finalized block stays in an open store
// transaction until Commit.
type DiceApp struct {
	*abci.BaseApplication

	logger    log.Logger
	stfLogger log.Logger
	opts      stf.Options

	mu       sync.Mutex
	st       *store.Store
	chainID  string
	height   int64
	lastHash []byte
	// pending is the finalized block awaiting Commit.
	pending *blockRun
}

func New(ctx context.Context, cfg config.Config, logger log.Logger) (*DiceApp, error) {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	st, err := store.Open(ctx, cfg.DBDriver, cfg.DBDSN, cfg.SeedCacheSize, logger)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	meta, err := st.LoadMeta(ctx)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	chainID := meta.ChainID
	if chainID == "" {
		chainID = cfg.ChainID
	}

	a := &DiceApp{
		BaseApplication: abci.NewBaseApplication(),
		logger:          logger.With("module", types.ModuleName+"/app"),
		stfLogger:       logger,
		opts: stf.Options{
			EndRule:   cfg.MatchEndRule,
			NftMinter: cfg.NftMinter,
		},
		st:       st,
		chainID:  chainID,
		height:   meta.Height,
		lastHash: meta.AppHash,
	}
	return a, nil
}

// Close drops any block that was finalized but not committed.
func (a *DiceApp) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.discardPending()
	return a.st.Close()
}

func (a *DiceApp) discardPending() {
	if a.pending == nil {
		return
	}
	if err := a.pending.block.Rollback(); err != nil {
		a.logger.Error("rollback uncommitted block", "height", a.pending.height, "err", err)
	}
	a.pending = nil
}

func (a *DiceApp) Info(_ context.Context, _ *abci.InfoRequest) (*abci.InfoResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	return &abci.InfoResponse{
		Data:             "dice (v1)",
		Version:          "v1",
		AppVersion:       AppVersion,
		LastBlockHeight:  a.height,
		LastBlockAppHash: a.lastHash,
	}, nil
}

// CheckTx authenticates against committed accounts; ownership and game rules
// are decided at delivery.
func (a *DiceApp) CheckTx(ctx context.Context, req *abci.CheckTxRequest) (*abci.CheckTxResponse, error) {
	if _, err := authenticateUserTx(ctx, a.st, req.Tx); err != nil {
		return &abci.CheckTxResponse{Code: 1, Log: err.Error()}, nil
	}
	return &abci.CheckTxResponse{Code: 0}, nil
}

func (a *DiceApp) InitChain(ctx context.Context, req *abci.InitChainRequest) (*abci.InitChainResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if req.ChainId != "" {
		a.chainID = req.ChainId
	}
	if err := a.st.SaveMeta(ctx, store.Meta{ChainID: a.chainID, Height: a.height, AppHash: a.lastHash}); err != nil {
		return nil, err
	}
	a.logger.Info("chain initialised", "chain_id", a.chainID)
	return &abci.InitChainResponse{}, nil
}

func (a *DiceApp) FinalizeBlock(ctx context.Context, req *abci.FinalizeBlockRequest) (*abci.FinalizeBlockResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	// A block finalized again before Commit starts over from the last commit.
	a.discardPending()

	block, err := a.st.BeginBlock(ctx)
	if err != nil {
		return nil, err
	}
	res, b, err := a.finalize(ctx, block, req)
	if err != nil {
		_ = block.Rollback()
		return nil, err
	}
	a.pending = b
	return res, nil
}

func (a *DiceApp) finalize(ctx context.Context, block *store.Block, req *abci.FinalizeBlockRequest) (*abci.FinalizeBlockResponse, *blockRun, error) {
	blockSeed := rng.BlockSeed(a.chainID, req.Height, req.Hash)
	if err := block.SaveBlockSeed(ctx, req.Height, blockSeed); err != nil {
		return nil, nil, err
	}
	b := &blockRun{
		block:  block,
		stf:    stf.NewDispatcher(block, block, a.stfLogger, a.opts),
		logger: a.logger.With("height", req.Height),
		height: req.Height,
		seed:   blockSeed,
		hash:   a.lastHash,
	}

	// Scheduled inputs run before the block's transactions.
	due, err := block.DueScheduledInputs(ctx, req.Height)
	if err != nil {
		return nil, nil, err
	}
	var blockEvents []abci.Event
	for _, in := range due {
		events, err := b.deliverScheduled(ctx, in)
		if err != nil {
			return nil, nil, err
		}
		blockEvents = append(blockEvents, events...)
	}

	txResults := make([]*abci.ExecTxResult, 0, len(req.Txs))
	for _, txBytes := range req.Txs {
		res, err := b.deliverTx(ctx, txBytes)
		if err != nil {
			return nil, nil, err
		}
		txResults = append(txResults, res)
	}

	return &abci.FinalizeBlockResponse{
		Events:    blockEvents,
		TxResults: txResults,
		AppHash:   b.hash,
	}, b, nil
}

// Commit makes the pending block durable together with its height and hash.
func (a *DiceApp) Commit(ctx context.Context, _ *abci.CommitRequest) (*abci.CommitResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	b := a.pending
	if b == nil {
		return nil, fmt.Errorf("commit without a finalized block")
	}
	a.pending = nil
	if err := b.block.Commit(ctx, store.Meta{ChainID: a.chainID, Height: b.height, AppHash: b.hash}); err != nil {
		return nil, err
	}
	a.height = b.height
	a.lastHash = b.hash
	return &abci.CommitResponse{}, nil
}

// Query reads committed state only and does not hold mu across reads.
func (a *DiceApp) Query(ctx context.Context, req *abci.QueryRequest) (*abci.QueryResponse, error) {
	a.mu.Lock()
	height := a.height
	a.mu.Unlock()

	// Paths:
	// - /lobby/<id>
	// - /lobby/<id>/players
	// - /stats/<tokenId>
	// - /account/<wallet>
	path := strings.TrimSpace(req.Path)
	fail := func(msg string) (*abci.QueryResponse, error) {
		return &abci.QueryResponse{Code: 1, Log: msg, Height: height}, nil
	}
	ok := func(v any) (*abci.QueryResponse, error) {
		b, err := json.Marshal(v)
		if err != nil {
			return fail(err.Error())
		}
		return &abci.QueryResponse{Code: 0, Value: b, Height: height}, nil
	}

	switch {
	case strings.HasPrefix(path, "/lobby/") && strings.HasSuffix(path, "/players"):
		id := strings.TrimSuffix(strings.TrimPrefix(path, "/lobby/"), "/players")
		l, err := a.st.GetLobby(ctx, id)
		if err != nil {
			return fail(err.Error())
		}
		if l == nil {
			return fail("lobby not found")
		}
		players, err := a.st.GetLobbyPlayers(ctx, id)
		if err != nil {
			return fail(err.Error())
		}
		return ok(players)
	case strings.HasPrefix(path, "/lobby/"):
		l, err := a.st.GetLobby(ctx, strings.TrimPrefix(path, "/lobby/"))
		if err != nil {
			return fail(err.Error())
		}
		if l == nil {
			return fail("lobby not found")
		}
		return ok(l)
	case strings.HasPrefix(path, "/stats/"):
		tokenID, err := strconv.ParseInt(strings.TrimPrefix(path, "/stats/"), 10, 64)
		if err != nil {
			return fail("invalid token id")
		}
		s, err := a.st.GetUserStats(ctx, tokenID)
		if err != nil {
			return fail(err.Error())
		}
		if s == nil {
			return fail("stats not found")
		}
		return ok(s)
	case strings.HasPrefix(path, "/account/"):
		acc, err := a.st.Account(ctx, strings.TrimPrefix(path, "/account/"))
		if err != nil {
			return fail(err.Error())
		}
		if acc == nil {
			return fail("account not found")
		}
		return ok(acc)
	default:
		return fail("unknown query path")
	}
}

// blockRun carries the per-block state: the open transaction, the action
// index that derives each action's seed, and the running app hash.
type blockRun struct {
	block  *store.Block
	stf    *stf.Dispatcher
	logger log.Logger
	height int64
	seed   rng.Seed
	index  uint32
	hash   []byte
}

func (b *blockRun) nextContext(sender string) stf.ActionContext {
	actx := stf.ActionContext{
		BlockHeight: b.height,
		Sender:      sender,
		Seed:        rng.ActionSeed(b.seed, b.index),
	}
	b.index++
	return actx
}

// commit applies muts plus host bookkeeping as one action and folds muts into
// the app hash. A failed write rolls back only this action; an aborted block
// is returned as store.ErrBlockAborted.
func (b *blockRun) commit(ctx context.Context, muts []persist.Mutation, extra ...persist.Mutation) error {
	sum, err := persist.Hash(muts)
	if err != nil {
		return err
	}
	if err := b.block.Apply(ctx, append(append([]persist.Mutation(nil), muts...), extra...)); err != nil {
		return err
	}
	h := sha256.New()
	h.Write(b.hash)
	h.Write(sum)
	b.hash = h.Sum(nil)
	return nil
}

// spend writes host bookkeeping that must land even when the action does not.
// Failures here halt the node.
func (b *blockRun) spend(ctx context.Context, m persist.Mutation) error {
	if err := b.block.Apply(ctx, []persist.Mutation{m}); err != nil {
		return fmt.Errorf("%s: %w", m.Op, err)
	}
	return nil
}

// rolledBack reports whether err left the block usable: the action was undone
// and delivery continues.
func (b *blockRun) rolledBack(a codec.Action, sender string, err error) bool {
	if errors.Is(err, store.ErrBlockAborted) {
		return false
	}
	b.logger.Error("action rolled back", "type", a.TxType(), "sender", sender, "err", err)
	return true
}

func (b *blockRun) deliverScheduled(ctx context.Context, in state.ScheduledInput) ([]abci.Event, error) {
	delivered := persist.DeleteDelivered(in)

	env, err := codec.DecodeTxEnvelope([]byte(in.Input))
	if err != nil {
		b.logger.Error("dropping undecodable scheduled input", "err", err)
		return nil, b.spend(ctx, delivered)
	}
	action, err := codec.DecodeAction(env)
	if err != nil {
		b.logger.Error("dropping invalid scheduled input", "type", env.Type, "err", err)
		return nil, b.spend(ctx, delivered)
	}

	muts, err := b.stf.Dispatch(ctx, b.nextContext(env.Signer), action)
	if err != nil {
		// Hard failure: nothing is written for the action, the input is consumed.
		return []abci.Event{failedEvent(action, env.Signer, err)}, b.spend(ctx, delivered)
	}
	if err := b.commit(ctx, muts, delivered); err != nil {
		if !b.rolledBack(action, env.Signer, err) {
			return nil, err
		}
		return []abci.Event{failedEvent(action, env.Signer, err)}, b.spend(ctx, delivered)
	}
	return actionEvents(action, env.Signer, muts), nil
}

func (b *blockRun) deliverTx(ctx context.Context, txBytes []byte) (*abci.ExecTxResult, error) {
	tx, err := authenticateUserTx(ctx, b.block, txBytes)
	if err != nil {
		return &abci.ExecTxResult{Code: 1, Log: err.Error()}, nil
	}
	signer := tx.env.Signer
	nonce := persist.AccountNonce(signer, tx.nonce)

	if tx.register != nil {
		reg := persist.RegisterAccount(tx.register.Account, tx.register.PubKey)
		if err := b.commit(ctx, []persist.Mutation{reg}, nonce); err != nil {
			if errors.Is(err, store.ErrBlockAborted) {
				return nil, err
			}
			return &abci.ExecTxResult{Code: 1, Log: err.Error()}, nil
		}
		return &abci.ExecTxResult{Code: 0, Events: []abci.Event{
			event(types.EventTypeAccountRegistered, map[string]string{"account": signer}),
		}}, nil
	}

	muts, err := b.stf.Dispatch(ctx, b.nextContext(signer), tx.action)
	if err != nil {
		// The nonce is spent even though the action wrote nothing.
		if serr := b.spend(ctx, nonce); serr != nil {
			return nil, serr
		}
		return &abci.ExecTxResult{Code: 1, Log: err.Error(), Events: []abci.Event{failedEvent(tx.action, signer, err)}}, nil
	}
	if err := b.commit(ctx, muts, nonce); err != nil {
		if !b.rolledBack(tx.action, signer, err) {
			return nil, err
		}
		if serr := b.spend(ctx, nonce); serr != nil {
			return nil, serr
		}
		return &abci.ExecTxResult{Code: 1, Log: err.Error(), Events: []abci.Event{failedEvent(tx.action, signer, err)}}, nil
	}
	return &abci.ExecTxResult{Code: 0, Events: actionEvents(tx.action, signer, muts)}, nil
}
