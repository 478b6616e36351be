package codec

import (
	"encoding/json"
	"fmt"
)

// TxEnvelope is the transaction container.
//
// CometBFT transactions are opaque bytes; inputs are JSON-encoded envelopes.
// Scheduled inputs use the same encoding so they replay through the same decoder.
type TxEnvelope struct {
	// Basic routing.
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`

	// Auth (user transactions):
	// - Signer: the wallet acting.
	// - Nonce: decimal u64, strictly increasing per signer.
	// - Sig: Ed25519 signature over (type, nonce, signer, sha256(value)).
	// Scheduled inputs carry only the scheduler signer.
	Signer string `json:"signer,omitempty"`
	Nonce  string `json:"nonce,omitempty"`
	Sig    []byte `json:"sig,omitempty"`
}

func DecodeTxEnvelope(txBytes []byte) (TxEnvelope, error) {
	var env TxEnvelope
	if err := json.Unmarshal(txBytes, &env); err != nil {
		return TxEnvelope{}, fmt.Errorf("invalid tx json: %w", err)
	}
	if env.Type == "" {
		return TxEnvelope{}, fmt.Errorf("missing tx.type")
	}
	return env, nil
}

// EncodeTxEnvelope wraps an action for delivery by the host.
func EncodeTxEnvelope(a Action, signer string) ([]byte, error) {
	value, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("encode %s value: %w", a.TxType(), err)
	}
	b, err := json.Marshal(TxEnvelope{Type: a.TxType(), Value: value, Signer: signer})
	if err != nil {
		return nil, fmt.Errorf("encode %s envelope: %w", a.TxType(), err)
	}
	return b, nil
}

// RegisterAccountTx binds an Ed25519 key to a wallet. It is signed by that key
// and handled by the host, not the game.
type RegisterAccountTx struct {
	Account string `json:"account"`
	PubKey  []byte `json:"pubKey"`
}

func DecodeRegisterAccount(env TxEnvelope) (RegisterAccountTx, error) {
	var msg RegisterAccountTx
	if env.Type != TypeRegisterAccount {
		return msg, fmt.Errorf("not a %s tx: %s", TypeRegisterAccount, env.Type)
	}
	if len(env.Value) == 0 {
		return msg, fmt.Errorf("missing %s value", env.Type)
	}
	if err := json.Unmarshal(env.Value, &msg); err != nil {
		return msg, fmt.Errorf("bad %s value: %w", env.Type, err)
	}
	return msg, nil
}
