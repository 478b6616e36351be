package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aljosa/paima-cards/internal/persist"
	"github.com/aljosa/paima-cards/internal/rng"
)

// ErrBlockAborted marks a block transaction that can no longer be used. The
// host must stop rather than commit a partial block.
var ErrBlockAborted = errors.New("block transaction aborted")

// Block is the single transaction a block is finalized in. Reads see the
// block's own writes; nothing reaches the committed store before Commit, so a
// crash before Commit leaves the previous height intact for replay.
type Block struct {
	conn
	s      *Store
	tx     *sql.Tx
	seeds  map[int64]rng.Seed
	closed bool
}

// BeginBlock opens a block transaction.
func (s *Store) BeginBlock(ctx context.Context) (*Block, error) {
	// The transaction outlives the FinalizeBlock call that opens it.
	tx, err := s.db.BeginTx(context.WithoutCancel(ctx), nil)
	if err != nil {
		return nil, fmt.Errorf("begin block: %w", err)
	}
	return &Block{
		conn:  conn{q: tx, dialect: s.dialect},
		s:     s,
		tx:    tx,
		seeds: map[int64]rng.Seed{},
	}, nil
}

// inBlock runs fn in a block transaction and commits it without touching
// app_meta.
func (s *Store) inBlock(ctx context.Context, fn func(b *Block) error) error {
	b, err := s.BeginBlock(ctx)
	if err != nil {
		return err
	}
	if err := fn(b); err != nil {
		_ = b.Rollback()
		return err
	}
	return b.commit(ctx, nil)
}

// GetBlockSeed prefers seeds written by this block, then the cache.
func (b *Block) GetBlockSeed(ctx context.Context, height int64) (rng.Seed, bool, error) {
	if seed, ok := b.seeds[height]; ok {
		return seed, true, nil
	}
	if seed, ok := b.s.seeds.Get(height); ok {
		return seed, true, nil
	}
	seed, ok, err := b.blockSeed(ctx, height)
	if err != nil || !ok {
		return rng.Seed{}, ok, err
	}
	// Not written by this block, so it is committed.
	b.s.seeds.Add(height, seed)
	return seed, true, nil
}

// SaveBlockSeed records the entropy of a block. Rewriting a height with a
// different seed is an error.
func (b *Block) SaveBlockSeed(ctx context.Context, height int64, seed rng.Seed) error {
	existing, ok, err := b.GetBlockSeed(ctx, height)
	if err != nil {
		return err
	}
	if ok {
		if existing != seed {
			return fmt.Errorf("block seed %d already recorded with a different value", height)
		}
		return nil
	}
	if _, err := b.exec(ctx, `
INSERT INTO block_seeds (block_height, seed) VALUES (?, ?)`, height, seed.String()); err != nil {
		return fmt.Errorf("save block seed %d: %w", height, err)
	}
	b.seeds[height] = seed
	return nil
}

// Apply writes one action's mutations under a savepoint. A failing mutation
// rolls back the whole action and leaves earlier actions of the block in place.
func (b *Block) Apply(ctx context.Context, muts []persist.Mutation) error {
	if len(muts) == 0 {
		return nil
	}
	if b.closed {
		return ErrBlockAborted
	}
	if _, err := b.tx.ExecContext(ctx, `SAVEPOINT action`); err != nil {
		return b.abort(fmt.Errorf("savepoint: %w", err))
	}
	for i, m := range muts {
		if err := b.applyOne(ctx, m); err != nil {
			undo := context.WithoutCancel(ctx)
			if _, rerr := b.tx.ExecContext(undo, `ROLLBACK TO SAVEPOINT action`); rerr != nil {
				return b.abort(fmt.Errorf("rollback to savepoint: %w", rerr))
			}
			if _, rerr := b.tx.ExecContext(undo, `RELEASE SAVEPOINT action`); rerr != nil {
				return b.abort(fmt.Errorf("release savepoint: %w", rerr))
			}
			return fmt.Errorf("mutation %d (%s): %w", i, m.Op, err)
		}
	}
	if _, err := b.tx.ExecContext(ctx, `RELEASE SAVEPOINT action`); err != nil {
		return b.abort(fmt.Errorf("release savepoint: %w", err))
	}
	return nil
}

// Commit records meta and makes the block visible.
func (b *Block) Commit(ctx context.Context, meta Meta) error {
	return b.commit(ctx, &meta)
}

func (b *Block) commit(ctx context.Context, meta *Meta) error {
	if b.closed {
		return ErrBlockAborted
	}
	if meta != nil {
		if err := b.saveMeta(ctx, *meta); err != nil {
			return b.abort(err)
		}
	}
	b.closed = true
	if err := b.tx.Commit(); err != nil {
		return fmt.Errorf("commit block: %w", err)
	}
	for h, seed := range b.seeds {
		b.s.seeds.Add(h, seed)
	}
	return nil
}

// Rollback discards the block. It is a no-op once the block is closed.
func (b *Block) Rollback() error {
	if b.closed {
		return nil
	}
	b.closed = true
	return b.tx.Rollback()
}

func (b *Block) abort(err error) error {
	_ = b.Rollback()
	return fmt.Errorf("%w: %v", ErrBlockAborted, err)
}
