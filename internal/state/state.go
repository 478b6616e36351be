// Package state holds the row types the game reads from storage and the
// in-memory match state rebuilt from them for every action.
package state

type LobbyStatus string

const (
	StatusOpen     LobbyStatus = "open"
	StatusActive   LobbyStatus = "active"
	StatusFinished LobbyStatus = "finished"
	StatusClosed   LobbyStatus = "closed"
)

func (s LobbyStatus) Valid() bool {
	switch s {
	case StatusOpen, StatusActive, StatusFinished, StatusClosed:
		return true
	default:
		return false
	}
}

// Terminal reports whether a lobby in status s accepts no further inputs.
func (s LobbyStatus) Terminal() bool {
	return s == StatusFinished || s == StatusClosed
}

type Lobby struct {
	ID     string      `json:"id"`
	Status LobbyStatus `json:"status"`

	CreatorWallet  string `json:"creatorWallet"`
	CreatorTokenID int64  `json:"creatorTokenId"`
	// PlayerTwo is the joiner's wallet; empty until someone joins.
	PlayerTwo string `json:"playerTwo,omitempty"`

	MaxPlayers          int   `json:"maxPlayers"`
	NumOfRounds         int   `json:"numOfRounds"`
	RoundLength         int64 `json:"roundLength"` // blocks
	PlayTimePerPlayer   int64 `json:"playTimePerPlayer"`
	Hidden              bool  `json:"hidden"`
	Practice            bool  `json:"practice"`
	PlayerOneIsWhite    bool  `json:"playerOneIsWhite"`
	CreationBlockHeight int64 `json:"creationBlockHeight"`

	// Set together when the lobby activates, absent before.
	CurrentMatch       *int `json:"currentMatch,omitempty"`
	CurrentRound       *int `json:"currentRound,omitempty"`
	CurrentTurn        *int `json:"currentTurn,omitempty"`
	CurrentProperRound *int `json:"currentProperRound,omitempty"`
}

// ActiveLobby is a lobby whose state counters are all present.
type ActiveLobby struct {
	Lobby
	Match       int
	Round       int
	Turn        int
	ProperRound int
}

// HasStateProps reports whether all four counters are set.
func (l *Lobby) HasStateProps() bool {
	return l.CurrentMatch != nil && l.CurrentRound != nil && l.CurrentTurn != nil && l.CurrentProperRound != nil
}

// Active narrows l to an ActiveLobby. It fails when the lobby is not in status
// active or a counter is missing.
func (l *Lobby) Active() (ActiveLobby, bool) {
	if l == nil || l.Status != StatusActive || !l.HasStateProps() {
		return ActiveLobby{}, false
	}
	return ActiveLobby{
		Lobby:       *l,
		Match:       *l.CurrentMatch,
		Round:       *l.CurrentRound,
		Turn:        *l.CurrentTurn,
		ProperRound: *l.CurrentProperRound,
	}, true
}

type Match struct {
	LobbyID             string      `json:"lobbyId"`
	MatchWithinLobby    int         `json:"matchWithinLobby"`
	StartingBlockHeight int64       `json:"startingBlockHeight"`
	Result              MatchResult `json:"result,omitempty"`
}

type Round struct {
	LobbyID              string `json:"lobbyId"`
	MatchWithinLobby     int    `json:"matchWithinLobby"`
	RoundWithinMatch     int    `json:"roundWithinMatch"`
	StartingBlockHeight  int64  `json:"startingBlockHeight"`
	RoundLength          int64  `json:"roundLength"`
	ExecutionBlockHeight *int64 `json:"executionBlockHeight,omitempty"`
}

func (r *Round) Executed() bool { return r != nil && r.ExecutionBlockHeight != nil }

type LobbyPlayer struct {
	LobbyID      string `json:"lobbyId"`
	TokenID      int64  `json:"tokenId"`
	Wallet       string `json:"wallet"`
	Seat         int    `json:"seat"`
	StartingDeck Deck   `json:"startingDeck"`
	CurrentDeck  Deck   `json:"currentDeck"`
	CurrentHand  Hand   `json:"currentHand"`
	CurrentDraw  int    `json:"currentDraw"`
	// Turn is the player's position in the turn order, set at activation.
	Turn   *int `json:"turn,omitempty"`
	Points int  `json:"points"`
	Score  int  `json:"score"`
}

func (p LobbyPlayer) Clone() LobbyPlayer {
	out := p
	out.StartingDeck = p.StartingDeck.Clone()
	out.CurrentDeck = p.CurrentDeck.Clone()
	out.CurrentHand = p.CurrentHand.Clone()
	if p.Turn != nil {
		t := *p.Turn
		out.Turn = &t
	}
	return out
}

type Move struct {
	LobbyID          string `json:"lobbyId"`
	MatchWithinLobby int    `json:"matchWithinLobby"`
	RoundWithinMatch int    `json:"roundWithinMatch"`
	TokenID          int64  `json:"tokenId"`
	Wallet           string `json:"wallet"`
	RollAgain        bool   `json:"rollAgain"`
}

type UserStats struct {
	TokenID int64 `json:"tokenId"`
	Wins    int   `json:"wins"`
	Losses  int   `json:"losses"`
	Ties    int   `json:"ties"`
}

type ScheduledInput struct {
	BlockHeight int64  `json:"blockHeight"`
	Input       string `json:"input"`
}

type ConciseResult string

const (
	ResultWin  ConciseResult = "w"
	ResultTie  ConciseResult = "t"
	ResultLoss ConciseResult = "l"
)

// MatchResult is one ConciseResult per player, in MatchState.Players order.
type MatchResult []ConciseResult

// MatchState is the in-memory view of a running match.
type MatchState struct {
	Players     []LobbyPlayer `json:"players"`
	ProperRound int           `json:"properRound"`
	Turn        int           `json:"turn"`
	Result      MatchResult   `json:"result,omitempty"`
}

func (ms MatchState) Clone() MatchState {
	out := ms
	out.Players = make([]LobbyPlayer, len(ms.Players))
	for i, p := range ms.Players {
		out.Players[i] = p.Clone()
	}
	if ms.Result != nil {
		out.Result = append(MatchResult(nil), ms.Result...)
	}
	return out
}

// TurnPlayer returns the index into Players of the player holding the turn.
func (ms MatchState) TurnPlayer() (int, bool) {
	for i, p := range ms.Players {
		if p.Turn != nil && *p.Turn == ms.Turn {
			return i, true
		}
	}
	return -1, false
}

func (ms MatchState) Ended() bool { return ms.Result != nil }

func IntPtr(v int) *int { return &v }

func Int64Ptr(v int64) *int64 { return &v }
