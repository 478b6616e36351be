package types

import errorsmod "cosmossdk.io/errors"

// Discards: the action is dropped with no state change.
var (
	ErrInvalidInput        = errorsmod.Register(ModuleName, 2, "invalid input")
	ErrLobbyNotFound       = errorsmod.Register(ModuleName, 3, "lobby not found")
	ErrLobbyNotOpen        = errorsmod.Register(ModuleName, 4, "lobby not open")
	ErrLobbyNotActive      = errorsmod.Register(ModuleName, 5, "lobby not active")
	ErrLobbyFull           = errorsmod.Register(ModuleName, 6, "lobby full")
	ErrSelfJoin            = errorsmod.Register(ModuleName, 7, "creator cannot join own lobby")
	ErrNotCreator          = errorsmod.Register(ModuleName, 8, "not the lobby creator")
	ErrNotOwner            = errorsmod.Register(ModuleName, 9, "sender does not own token")
	ErrWrongPlayerCount    = errorsmod.Register(ModuleName, 10, "wrong player count")
	ErrNotYourTurn         = errorsmod.Register(ModuleName, 11, "not your turn")
	ErrRoundNotFound       = errorsmod.Register(ModuleName, 12, "round not found")
	ErrWrongMatch          = errorsmod.Register(ModuleName, 13, "wrong match")
	ErrWrongRound          = errorsmod.Register(ModuleName, 14, "wrong round")
	ErrInvalidMove         = errorsmod.Register(ModuleName, 15, "invalid move")
	ErrSeedUnavailable     = errorsmod.Register(ModuleName, 16, "round seed not yet available")
	ErrStaleScheduledInput = errorsmod.Register(ModuleName, 17, "stale scheduled input")
	ErrUnauthorizedSender  = errorsmod.Register(ModuleName, 18, "unauthorized sender")
	ErrStatsNotFound       = errorsmod.Register(ModuleName, 19, "user stats not found")
	ErrTokenAlreadyMinted  = errorsmod.Register(ModuleName, 20, "token already minted")
	ErrInvalidTransition   = errorsmod.Register(ModuleName, 21, "invalid lobby status transition")
)

// Hard failures: the host reports the action as failed and writes nothing.
var (
	ErrNotImplemented   = errorsmod.Register(ModuleName, 100, "not implemented")
	ErrMissingBlockSeed = errorsmod.Register(ModuleName, 101, "missing block seed")
	ErrCorruptState     = errorsmod.Register(ModuleName, 102, "corrupt state")
	ErrOverflow         = errorsmod.Register(ModuleName, 103, "arithmetic overflow")
)

var discards = []*errorsmod.Error{
	ErrInvalidInput,
	ErrLobbyNotFound,
	ErrLobbyNotOpen,
	ErrLobbyNotActive,
	ErrLobbyFull,
	ErrSelfJoin,
	ErrNotCreator,
	ErrNotOwner,
	ErrWrongPlayerCount,
	ErrNotYourTurn,
	ErrRoundNotFound,
	ErrWrongMatch,
	ErrWrongRound,
	ErrInvalidMove,
	ErrSeedUnavailable,
	ErrStaleScheduledInput,
	ErrUnauthorizedSender,
	ErrStatsNotFound,
	ErrTokenAlreadyMinted,
	ErrInvalidTransition,
}

// IsDiscard reports whether err means "drop this action" rather than a failure.
func IsDiscard(err error) bool {
	if err == nil {
		return false
	}
	for _, d := range discards {
		if errorsmod.IsOf(err, d) {
			return true
		}
	}
	return false
}
