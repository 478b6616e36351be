// Package persist turns game decisions into ordered storage mutations. It never
// touches storage itself; the host applies each action's list atomically.
package persist

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
)

type Op uint8

const (
	OpCreateLobby Op = iota + 1
	OpAddPlayer
	OpActivateLobby
	OpUpdateLobbyStatus
	OpNewMatch
	OpNewRound
	OpExecutedRound
	OpUpdateMatchState
	OpUpdateLobbyPlayer
	OpSubmitMove
	OpMatchResults
	OpBlankStats
	OpUpdateStats
	OpScheduleInput
	OpDeleteScheduledInput
	OpMintNft
	OpRegisterAccount
	OpAccountNonce
)

var opNames = map[Op]string{
	OpCreateLobby:          "create_lobby",
	OpAddPlayer:            "add_player",
	OpActivateLobby:        "activate_lobby",
	OpUpdateLobbyStatus:    "update_lobby_status",
	OpNewMatch:             "new_match",
	OpNewRound:             "new_round",
	OpExecutedRound:        "executed_round",
	OpUpdateMatchState:     "update_match_state",
	OpUpdateLobbyPlayer:    "update_lobby_player",
	OpSubmitMove:           "submit_move",
	OpMatchResults:         "match_results",
	OpBlankStats:           "blank_stats",
	OpUpdateStats:          "update_stats",
	OpScheduleInput:        "schedule_input",
	OpDeleteScheduledInput: "delete_scheduled_input",
	OpMintNft:              "mint_nft",
	OpRegisterAccount:      "register_account",
	OpAccountNonce:         "account_nonce",
}

func (o Op) String() string {
	if s, ok := opNames[o]; ok {
		return s
	}
	return fmt.Sprintf("Op(%d)", uint8(o))
}

func (o Op) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

// Params is the payload of one mutation. The set of implementations is closed.
type Params interface {
	op() Op
}

// Mutation is one storage write.
type Mutation struct {
	Op     Op     `json:"op"`
	Params Params `json:"params"`
}

func newMutation(p Params) Mutation {
	return Mutation{Op: p.op(), Params: p}
}

// Hash returns sha256 over the canonical JSON encoding of muts. Replaying the
// same inputs must reproduce the same hash.
func Hash(muts []Mutation) ([]byte, error) {
	if muts == nil {
		muts = []Mutation{}
	}
	b, err := json.Marshal(muts)
	if err != nil {
		return nil, fmt.Errorf("encode mutations: %w", err)
	}
	h := sha256.Sum256(b)
	return h[:], nil
}

// Ops lists the operations of muts in order.
func Ops(muts []Mutation) []Op {
	out := make([]Op, len(muts))
	for i, m := range muts {
		out[i] = m.Op
	}
	return out
}
