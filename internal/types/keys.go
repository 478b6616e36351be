package types

const (
	// ModuleName is used as the error codespace and the logger "module" key.
	ModuleName = "dice"

	// ScheduledDataAddress is the sender of every input the chain schedules
	// for itself (zombie rounds, stats updates, practice bot moves).
	ScheduledDataAddress = "0x0"

	// PracticeBotAddress is the wallet the practice bot joins lobbies with.
	PracticeBotAddress = "0xpractice"

	// PracticeBotTokenID is the NFT the practice bot plays as.
	PracticeBotTokenID int64 = 0

	// DefaultMaxPlayers is the lobby capacity when the create input omits it.
	// Matches are heads-up only.
	DefaultMaxPlayers = 2

	// LobbyIDLength is the length of generated lobby ids.
	LobbyIDLength = 12
)

// IsReservedSender reports whether addr may only appear on chain-generated inputs.
func IsReservedSender(addr string) bool {
	return addr == ScheduledDataAddress || addr == PracticeBotAddress
}
