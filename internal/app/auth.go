package app

import (
	"context"
	"crypto/ed25519"
	"crypto/sha256"
	"fmt"
	"math"
	"strconv"

	"github.com/aljosa/paima-cards/internal/codec"
	"github.com/aljosa/paima-cards/internal/store"
	"github.com/aljosa/paima-cards/internal/types"
)

const txAuthDomainV0 = "dice/tx/v0"

func txAuthSignBytesV0(typ string, value []byte, nonce string, signer string) []byte {
	// signBytes = DOMAIN || 0x00 || type || 0x00 || nonce || 0x00 || signer || 0x00 || sha256(value)
	sum := sha256.Sum256(value)
	out := make([]byte, 0, len(txAuthDomainV0)+1+len(typ)+1+len(nonce)+1+len(signer)+1+sha256.Size)
	out = append(out, []byte(txAuthDomainV0)...)
	out = append(out, 0)
	out = append(out, []byte(typ)...)
	out = append(out, 0)
	out = append(out, []byte(nonce)...)
	out = append(out, 0)
	out = append(out, []byte(signer)...)
	out = append(out, 0)
	out = append(out, sum[:]...)
	return out
}

func requireSignedEnvelope(env codec.TxEnvelope) error {
	if env.Nonce == "" {
		return fmt.Errorf("missing tx.nonce")
	}
	if env.Signer == "" {
		return fmt.Errorf("missing tx.signer")
	}
	if len(env.Sig) == 0 {
		return fmt.Errorf("missing tx.sig")
	}
	if len(env.Sig) != ed25519.SignatureSize {
		return fmt.Errorf("invalid tx.sig length: got %d want %d", len(env.Sig), ed25519.SignatureSize)
	}
	return nil
}

// parseTxNonce accepts 1..MaxInt64 so the value fits a BIGINT column.
func parseTxNonce(nonce string) (uint64, error) {
	n, err := strconv.ParseUint(nonce, 10, 64)
	if err != nil || n == 0 || n > math.MaxInt64 {
		return 0, fmt.Errorf("invalid tx.nonce %q", nonce)
	}
	return n, nil
}

func requireRegisterAccountAuth(env codec.TxEnvelope, msg codec.RegisterAccountTx) error {
	if msg.Account == "" {
		return fmt.Errorf("missing account")
	}
	if len(msg.PubKey) != ed25519.PublicKeySize {
		return fmt.Errorf("pubKey must be %d bytes", ed25519.PublicKeySize)
	}
	if env.Signer != msg.Account {
		return fmt.Errorf("tx signer mismatch: signer=%q want=%q", env.Signer, msg.Account)
	}
	pub := ed25519.PublicKey(msg.PubKey)
	msgBytes := txAuthSignBytesV0(env.Type, env.Value, env.Nonce, env.Signer)
	if !ed25519.Verify(pub, msgBytes, env.Sig) {
		return fmt.Errorf("invalid signature")
	}
	return nil
}

func requireAccountAuth(env codec.TxEnvelope, acc *store.Account) error {
	if acc == nil || len(acc.PubKey) != ed25519.PublicKeySize {
		return fmt.Errorf("account %q missing pubKey (%s required)", env.Signer, codec.TypeRegisterAccount)
	}
	msg := txAuthSignBytesV0(env.Type, env.Value, env.Nonce, env.Signer)
	if !ed25519.Verify(ed25519.PublicKey(acc.PubKey), msg, env.Sig) {
		return fmt.Errorf("invalid signature")
	}
	return nil
}

// accountSource is the committed store for CheckTx and the open block during
// delivery.
type accountSource interface {
	Account(ctx context.Context, wallet string) (*store.Account, error)
}

// userTx is an authenticated user transaction. Exactly one of action and
// register is set.
type userTx struct {
	env      codec.TxEnvelope
	nonce    uint64
	action   codec.Action
	register *codec.RegisterAccountTx
}

// authenticateUserTx decodes txBytes, rejects reserved signers and checks the
// signature and nonce against the signer's registered key.
func authenticateUserTx(ctx context.Context, accounts accountSource, txBytes []byte) (userTx, error) {
	env, err := codec.DecodeTxEnvelope(txBytes)
	if err != nil {
		return userTx{}, err
	}
	if env.Signer == "" {
		return userTx{}, fmt.Errorf("missing tx.signer")
	}
	if types.IsReservedSender(env.Signer) {
		return userTx{}, fmt.Errorf("reserved signer %q", env.Signer)
	}
	if err := requireSignedEnvelope(env); err != nil {
		return userTx{}, err
	}
	nonce, err := parseTxNonce(env.Nonce)
	if err != nil {
		return userTx{}, err
	}
	acc, err := accounts.Account(ctx, env.Signer)
	if err != nil {
		return userTx{}, err
	}

	if env.Type == codec.TypeRegisterAccount {
		msg, err := codec.DecodeRegisterAccount(env)
		if err != nil {
			return userTx{}, err
		}
		if err := requireRegisterAccountAuth(env, msg); err != nil {
			return userTx{}, err
		}
		if acc != nil {
			return userTx{}, fmt.Errorf("account %q already registered", env.Signer)
		}
		return userTx{env: env, nonce: nonce, register: &msg}, nil
	}

	if err := requireAccountAuth(env, acc); err != nil {
		return userTx{}, err
	}
	if nonce <= acc.NonceMax {
		return userTx{}, fmt.Errorf("replayed tx.nonce %d (last %d)", nonce, acc.NonceMax)
	}
	action, err := codec.DecodeAction(env)
	if err != nil {
		return userTx{}, err
	}
	return userTx{env: env, nonce: nonce, action: action}, nil
}
