package store

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
)

const (
	metaHeight  = "last_block_height"
	metaAppHash = "last_app_hash"
	metaChainID = "chain_id"
)

// Meta is the chain bookkeeping the ABCI host needs across restarts.
type Meta struct {
	ChainID string
	Height  int64
	AppHash []byte
}

func (r conn) getMeta(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := r.q.QueryRowContext(ctx, r.dialect.rebind(`SELECT meta_value FROM app_meta WHERE meta_key = ?`), key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get meta %s: %w", key, err)
	}
	return v, true, nil
}

func (s *Store) LoadMeta(ctx context.Context) (Meta, error) {
	var m Meta
	if v, ok, err := s.getMeta(ctx, metaChainID); err != nil {
		return Meta{}, err
	} else if ok {
		m.ChainID = v
	}
	if v, ok, err := s.getMeta(ctx, metaHeight); err != nil {
		return Meta{}, err
	} else if ok {
		h, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return Meta{}, fmt.Errorf("meta height %q: %w", v, err)
		}
		m.Height = h
	}
	if v, ok, err := s.getMeta(ctx, metaAppHash); err != nil {
		return Meta{}, err
	} else if ok {
		b, err := hex.DecodeString(v)
		if err != nil {
			return Meta{}, fmt.Errorf("meta app hash: %w", err)
		}
		m.AppHash = b
	}
	return m, nil
}

// SaveMeta writes all meta keys in one transaction.
func (s *Store) SaveMeta(ctx context.Context, m Meta) error {
	return s.inBlock(ctx, func(b *Block) error {
		return b.saveMeta(ctx, m)
	})
}

func (r conn) saveMeta(ctx context.Context, m Meta) error {
	kv := [][2]string{
		{metaChainID, m.ChainID},
		{metaHeight, strconv.FormatInt(m.Height, 10)},
		{metaAppHash, hex.EncodeToString(m.AppHash)},
	}
	for _, e := range kv {
		if _, err := r.exec(ctx, `
INSERT INTO app_meta (meta_key, meta_value) VALUES (?, ?)
ON CONFLICT (meta_key) DO UPDATE SET meta_value = excluded.meta_value`, e[0], e[1]); err != nil {
			return fmt.Errorf("save meta %s: %w", e[0], err)
		}
	}
	return nil
}
