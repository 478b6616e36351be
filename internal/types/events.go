package types

// ABCI event types emitted by the host per delivered input.
const (
	EventTypeActionApplied   = "ActionApplied"
	EventTypeActionDiscarded = "ActionDiscarded"
	EventTypeActionFailed    = "ActionFailed"
	EventTypeLobbyCreated    = "LobbyCreated"
	EventTypeLobbyActivated  = "LobbyActivated"
	EventTypeLobbyClosed     = "LobbyClosed"
	EventTypeRoundExecuted   = "RoundExecuted"
	EventTypeMatchFinished   = "MatchFinished"

	EventTypeAccountRegistered = "AccountRegistered"
)
