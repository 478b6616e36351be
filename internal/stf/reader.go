package stf

import (
	"context"

	"github.com/aljosa/paima-cards/internal/rng"
	"github.com/aljosa/paima-cards/internal/state"
)

// Reader is the storage the dispatcher reads before deciding. Lookups of
// missing rows return (nil, nil).
type Reader interface {
	GetLobby(ctx context.Context, lobbyID string) (*state.Lobby, error)
	// GetLobbyPlayers returns the players of a lobby ordered by seat.
	GetLobbyPlayers(ctx context.Context, lobbyID string) ([]state.LobbyPlayer, error)
	GetMatch(ctx context.Context, lobbyID string, match int) (*state.Match, error)
	GetRound(ctx context.Context, lobbyID string, match, round int) (*state.Round, error)
	GetRoundMoves(ctx context.Context, lobbyID string, match, round int) ([]state.Move, error)
	GetUserStats(ctx context.Context, tokenID int64) (*state.UserStats, error)
	// GetBlockSeed returns the entropy recorded for height, ok=false if none.
	GetBlockSeed(ctx context.Context, height int64) (seed rng.Seed, ok bool, err error)
	// TokenOwner returns the wallet that minted tokenID, ok=false if unminted.
	TokenOwner(ctx context.Context, tokenID int64) (wallet string, ok bool, err error)
}

// Ownership answers whether a wallet owns an NFT.
type Ownership interface {
	OwnsToken(ctx context.Context, wallet string, tokenID int64) (bool, error)
}
