package store

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
)

// Account is a wallet's registered signing key and the highest tx nonce it
// has used.
type Account struct {
	Wallet   string `json:"wallet"`
	PubKey   []byte `json:"pubKey"`
	NonceMax uint64 `json:"nonceMax"`
}

// Account returns nil when wallet never registered.
func (r conn) Account(ctx context.Context, wallet string) (*Account, error) {
	var (
		acc   Account
		key   string
		nonce int64
	)
	err := r.q.QueryRowContext(ctx, r.dialect.rebind(`
SELECT wallet, pub_key, nonce_max FROM accounts WHERE wallet = ?`), wallet).Scan(&acc.Wallet, &key, &nonce)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get account %s: %w", wallet, err)
	}
	if acc.PubKey, err = hex.DecodeString(key); err != nil {
		return nil, fmt.Errorf("account %s pub key: %w", wallet, err)
	}
	if nonce < 0 {
		return nil, fmt.Errorf("account %s has negative nonce %d", wallet, nonce)
	}
	acc.NonceMax = uint64(nonce)
	return &acc, nil
}
