package persist

import "github.com/aljosa/paima-cards/internal/state"

type CreateLobbyParams struct {
	LobbyID             string `json:"lobbyId"`
	CreatorWallet       string `json:"creatorWallet"`
	CreatorTokenID      int64  `json:"creatorTokenId"`
	MaxPlayers          int    `json:"maxPlayers"`
	NumOfRounds         int    `json:"numOfRounds"`
	RoundLength         int64  `json:"roundLength"`
	PlayTimePerPlayer   int64  `json:"playTimePerPlayer"`
	Hidden              bool   `json:"hidden"`
	Practice            bool   `json:"practice"`
	PlayerOneIsWhite    bool   `json:"playerOneIsWhite"`
	CreationBlockHeight int64  `json:"creationBlockHeight"`
}

type AddPlayerParams struct {
	LobbyID string `json:"lobbyId"`
	TokenID int64  `json:"tokenId"`
	Wallet  string `json:"wallet"`
	Seat    int    `json:"seat"`
}

// ActivateLobbyParams moves an open lobby to active and sets its counters.
type ActivateLobbyParams struct {
	LobbyID     string `json:"lobbyId"`
	PlayerTwo   string `json:"playerTwo"`
	Match       int    `json:"match"`
	Round       int    `json:"round"`
	Turn        int    `json:"turn"`
	ProperRound int    `json:"properRound"`
}

type UpdateLobbyStatusParams struct {
	LobbyID string            `json:"lobbyId"`
	Status  state.LobbyStatus `json:"status"`
}

type NewMatchParams struct {
	LobbyID             string `json:"lobbyId"`
	Match               int    `json:"match"`
	StartingBlockHeight int64  `json:"startingBlockHeight"`
}

type NewRoundParams struct {
	LobbyID             string `json:"lobbyId"`
	Match               int    `json:"match"`
	Round               int    `json:"round"`
	StartingBlockHeight int64  `json:"startingBlockHeight"`
	RoundLength         int64  `json:"roundLength"`
}

type ExecutedRoundParams struct {
	LobbyID              string `json:"lobbyId"`
	Match                int    `json:"match"`
	Round                int    `json:"round"`
	ExecutionBlockHeight int64  `json:"executionBlockHeight"`
}

type UpdateMatchStateParams struct {
	LobbyID     string `json:"lobbyId"`
	Match       int    `json:"match"`
	Round       int    `json:"round"`
	Turn        int    `json:"turn"`
	ProperRound int    `json:"properRound"`
}

// UpdateLobbyPlayerParams overwrites a player's game columns.
type UpdateLobbyPlayerParams struct {
	LobbyID      string     `json:"lobbyId"`
	TokenID      int64      `json:"tokenId"`
	StartingDeck state.Deck `json:"startingDeck"`
	CurrentDeck  state.Deck `json:"currentDeck"`
	CurrentHand  state.Hand `json:"currentHand"`
	CurrentDraw  int        `json:"currentDraw"`
	Turn         *int       `json:"turn"`
	Points       int        `json:"points"`
	Score        int        `json:"score"`
}

type SubmitMoveParams struct {
	LobbyID   string `json:"lobbyId"`
	Match     int    `json:"match"`
	Round     int    `json:"round"`
	TokenID   int64  `json:"tokenId"`
	Wallet    string `json:"wallet"`
	RollAgain bool   `json:"rollAgain"`
}

type MatchResultsParams struct {
	LobbyID string            `json:"lobbyId"`
	Match   int               `json:"match"`
	Result  state.MatchResult `json:"result"`
}

type BlankStatsParams struct {
	TokenID int64 `json:"tokenId"`
}

type UpdateStatsParams struct {
	TokenID int64 `json:"tokenId"`
	Wins    int   `json:"wins"`
	Losses  int   `json:"losses"`
	Ties    int   `json:"ties"`
}

type ScheduleInputParams struct {
	BlockHeight int64  `json:"blockHeight"`
	Input       string `json:"input"`
}

type DeleteScheduledInputParams struct {
	BlockHeight int64  `json:"blockHeight"`
	Input       string `json:"input"`
}

type MintNftParams struct {
	TokenID int64  `json:"tokenId"`
	Owner   string `json:"owner"`
}

// RegisterAccountParams binds an ed25519 public key to a wallet.
type RegisterAccountParams struct {
	Wallet string `json:"wallet"`
	PubKey []byte `json:"pubKey"`
}

// AccountNonceParams raises the highest nonce a wallet has used.
type AccountNonceParams struct {
	Wallet string `json:"wallet"`
	Nonce  uint64 `json:"nonce"`
}

func (CreateLobbyParams) op() Op          { return OpCreateLobby }
func (AddPlayerParams) op() Op            { return OpAddPlayer }
func (ActivateLobbyParams) op() Op        { return OpActivateLobby }
func (UpdateLobbyStatusParams) op() Op    { return OpUpdateLobbyStatus }
func (NewMatchParams) op() Op             { return OpNewMatch }
func (NewRoundParams) op() Op             { return OpNewRound }
func (ExecutedRoundParams) op() Op        { return OpExecutedRound }
func (UpdateMatchStateParams) op() Op     { return OpUpdateMatchState }
func (UpdateLobbyPlayerParams) op() Op    { return OpUpdateLobbyPlayer }
func (SubmitMoveParams) op() Op           { return OpSubmitMove }
func (MatchResultsParams) op() Op         { return OpMatchResults }
func (BlankStatsParams) op() Op           { return OpBlankStats }
func (UpdateStatsParams) op() Op          { return OpUpdateStats }
func (ScheduleInputParams) op() Op        { return OpScheduleInput }
func (DeleteScheduledInputParams) op() Op { return OpDeleteScheduledInput }
func (MintNftParams) op() Op              { return OpMintNft }
func (RegisterAccountParams) op() Op      { return OpRegisterAccount }
func (AccountNonceParams) op() Op         { return OpAccountNonce }
