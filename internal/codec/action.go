package codec

import (
	"encoding/json"
	"fmt"

	"github.com/aljosa/paima-cards/internal/state"
	"github.com/aljosa/paima-cards/internal/types"
)

const (
	TypeCreateLobby   = "lobby/create"
	TypeJoinLobby     = "lobby/join"
	TypeCloseLobby    = "lobby/close"
	TypeSubmitMoves   = "game/submit_moves"
	TypePracticeMoves = "game/practice_moves"
	TypeZombieRound   = "scheduled/zombie_round"
	TypeUserStats     = "scheduled/user_stats"
	TypeMintNft       = "nft/mint"

	TypeRegisterAccount = "auth/register_account"
)

// Action is a decoded input. The set of implementations is closed.
type Action interface {
	TxType() string
	ValidateBasic() error
	isAction()
}

// ---- Lobby ----

type CreateLobbyTx struct {
	CreatorTokenID    int64 `json:"creatorNftId"`
	NumOfRounds       int   `json:"numOfRounds"`
	RoundLength       int64 `json:"roundLength"`
	PlayTimePerPlayer int64 `json:"playTimePerPlayer"`
	MaxPlayers        int   `json:"maxPlayers,omitempty"` // default 2
	IsHidden          bool  `json:"isHidden,omitempty"`
	IsPractice        bool  `json:"isPractice,omitempty"`
	PlayerOneIsWhite  bool  `json:"playerOneIsWhite,omitempty"`
}

type JoinLobbyTx struct {
	LobbyID string `json:"lobbyId"`
	TokenID int64  `json:"nftId"`
}

type CloseLobbyTx struct {
	LobbyID string `json:"lobbyId"`
}

// ---- Game ----

type SubmitMovesTx struct {
	LobbyID          string `json:"lobbyId"`
	MatchWithinLobby int    `json:"matchWithinLobby"`
	RoundWithinMatch int    `json:"roundWithinMatch"`
	TokenID          int64  `json:"nftId"`
	RollAgain        bool   `json:"rollAgain"`
}

// PracticeMovesTx asks the practice bot to play its turn.
type PracticeMovesTx struct {
	LobbyID          string `json:"lobbyId"`
	MatchWithinLobby int    `json:"matchWithinLobby"`
	RoundWithinMatch int    `json:"roundWithinMatch"`
}

// ---- Scheduled ----

type ZombieRoundTx struct {
	LobbyID          string `json:"lobbyId"`
	MatchWithinLobby int    `json:"matchWithinLobby"`
	RoundWithinMatch int    `json:"roundWithinMatch"`
}

type UserStatsTx struct {
	TokenID int64               `json:"nftId"`
	Result  state.ConciseResult `json:"result"`
}

// ---- NFT ----

type MintNftTx struct {
	TokenID int64  `json:"tokenId"`
	Owner   string `json:"owner"`
}

func (CreateLobbyTx) TxType() string   { return TypeCreateLobby }
func (JoinLobbyTx) TxType() string     { return TypeJoinLobby }
func (CloseLobbyTx) TxType() string    { return TypeCloseLobby }
func (SubmitMovesTx) TxType() string   { return TypeSubmitMoves }
func (PracticeMovesTx) TxType() string { return TypePracticeMoves }
func (ZombieRoundTx) TxType() string   { return TypeZombieRound }
func (UserStatsTx) TxType() string     { return TypeUserStats }
func (MintNftTx) TxType() string       { return TypeMintNft }

func (CreateLobbyTx) isAction()   {}
func (JoinLobbyTx) isAction()     {}
func (CloseLobbyTx) isAction()    {}
func (SubmitMovesTx) isAction()   {}
func (PracticeMovesTx) isAction() {}
func (ZombieRoundTx) isAction()   {}
func (UserStatsTx) isAction()     {}
func (MintNftTx) isAction()       {}

func (m CreateLobbyTx) ValidateBasic() error {
	if m.NumOfRounds < 0 {
		return types.ErrInvalidInput.Wrap("numOfRounds must be >= 0")
	}
	if m.RoundLength <= 0 {
		return types.ErrInvalidInput.Wrap("roundLength must be > 0")
	}
	if m.PlayTimePerPlayer < 0 {
		return types.ErrInvalidInput.Wrap("playTimePerPlayer must be >= 0")
	}
	if m.MaxPlayers != 0 && m.MaxPlayers != types.DefaultMaxPlayers {
		return types.ErrInvalidInput.Wrapf("maxPlayers=%d unsupported", m.MaxPlayers)
	}
	return nil
}

// Capacity returns MaxPlayers with the default applied.
func (m CreateLobbyTx) Capacity() int {
	if m.MaxPlayers == 0 {
		return types.DefaultMaxPlayers
	}
	return m.MaxPlayers
}

func (m JoinLobbyTx) ValidateBasic() error  { return requireLobbyID(m.LobbyID) }
func (m CloseLobbyTx) ValidateBasic() error { return requireLobbyID(m.LobbyID) }
func (m ZombieRoundTx) ValidateBasic() error {
	return requireIndexes(m.LobbyID, m.MatchWithinLobby, m.RoundWithinMatch)
}

func (m SubmitMovesTx) ValidateBasic() error {
	return requireIndexes(m.LobbyID, m.MatchWithinLobby, m.RoundWithinMatch)
}

func (m PracticeMovesTx) ValidateBasic() error {
	return requireIndexes(m.LobbyID, m.MatchWithinLobby, m.RoundWithinMatch)
}

func (m UserStatsTx) ValidateBasic() error {
	switch m.Result {
	case state.ResultWin, state.ResultTie, state.ResultLoss:
		return nil
	default:
		return types.ErrInvalidInput.Wrapf("unknown result %q", m.Result)
	}
}

func (m MintNftTx) ValidateBasic() error {
	if m.TokenID <= types.PracticeBotTokenID {
		return types.ErrInvalidInput.Wrapf("tokenId %d is reserved", m.TokenID)
	}
	if m.Owner == "" {
		return types.ErrInvalidInput.Wrap("missing owner")
	}
	if types.IsReservedSender(m.Owner) {
		return types.ErrInvalidInput.Wrap("owner is a reserved address")
	}
	return nil
}

func requireLobbyID(id string) error {
	if len(id) != types.LobbyIDLength {
		return types.ErrInvalidInput.Wrapf("lobbyId must be %d characters", types.LobbyIDLength)
	}
	return nil
}

func requireIndexes(lobbyID string, match, round int) error {
	if err := requireLobbyID(lobbyID); err != nil {
		return err
	}
	if match < 0 || round < 0 {
		return types.ErrInvalidInput.Wrap("negative match/round index")
	}
	return nil
}

// DecodeAction maps an envelope onto its action type and runs ValidateBasic.
func DecodeAction(env TxEnvelope) (Action, error) {
	var (
		a   Action
		err error
	)
	switch env.Type {
	case TypeCreateLobby:
		a, err = decodeValue[CreateLobbyTx](env)
	case TypeJoinLobby:
		a, err = decodeValue[JoinLobbyTx](env)
	case TypeCloseLobby:
		a, err = decodeValue[CloseLobbyTx](env)
	case TypeSubmitMoves:
		a, err = decodeValue[SubmitMovesTx](env)
	case TypePracticeMoves:
		a, err = decodeValue[PracticeMovesTx](env)
	case TypeZombieRound:
		a, err = decodeValue[ZombieRoundTx](env)
	case TypeUserStats:
		a, err = decodeValue[UserStatsTx](env)
	case TypeMintNft:
		a, err = decodeValue[MintNftTx](env)
	default:
		return nil, types.ErrInvalidInput.Wrapf("unknown tx type: %s", env.Type)
	}
	if err != nil {
		return nil, err
	}
	if err := a.ValidateBasic(); err != nil {
		return nil, err
	}
	return a, nil
}

func decodeValue[T Action](env TxEnvelope) (Action, error) {
	var v T
	if len(env.Value) == 0 {
		return nil, types.ErrInvalidInput.Wrapf("missing %s value", env.Type)
	}
	if err := json.Unmarshal(env.Value, &v); err != nil {
		return nil, types.ErrInvalidInput.Wrap(fmt.Sprintf("bad %s value: %v", env.Type, err))
	}
	return v, nil
}
