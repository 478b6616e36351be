package app

import (
	"sort"
	"strconv"

	abci "github.com/cometbft/cometbft/abci/types"

	"github.com/aljosa/paima-cards/internal/codec"
	"github.com/aljosa/paima-cards/internal/persist"
	"github.com/aljosa/paima-cards/internal/state"
	"github.com/aljosa/paima-cards/internal/types"
)

func event(typ string, attrs map[string]string) abci.Event {
	ev := abci.Event{Type: typ}
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		ev.Attributes = append(ev.Attributes, abci.EventAttribute{Key: k, Value: attrs[k], Index: true})
	}
	return ev
}

func failedEvent(a codec.Action, sender string, err error) abci.Event {
	return event(types.EventTypeActionFailed, map[string]string{
		"type":   a.TxType(),
		"sender": sender,
		"error":  err.Error(),
	})
}

// actionEvents describes one delivered action. An empty mutation list means
// the action was discarded.
func actionEvents(a codec.Action, sender string, muts []persist.Mutation) []abci.Event {
	if len(muts) == 0 {
		return []abci.Event{event(types.EventTypeActionDiscarded, map[string]string{
			"type":   a.TxType(),
			"sender": sender,
		})}
	}

	events := []abci.Event{event(types.EventTypeActionApplied, map[string]string{
		"type":      a.TxType(),
		"sender":    sender,
		"mutations": strconv.Itoa(len(muts)),
	})}
	for _, m := range muts {
		switch p := m.Params.(type) {
		case persist.CreateLobbyParams:
			events = append(events, event(types.EventTypeLobbyCreated, map[string]string{
				"lobbyId":  p.LobbyID,
				"creator":  p.CreatorWallet,
				"practice": strconv.FormatBool(p.Practice),
			}))
		case persist.ActivateLobbyParams:
			events = append(events, event(types.EventTypeLobbyActivated, map[string]string{
				"lobbyId":   p.LobbyID,
				"playerTwo": p.PlayerTwo,
			}))
		case persist.ExecutedRoundParams:
			events = append(events, event(types.EventTypeRoundExecuted, map[string]string{
				"lobbyId": p.LobbyID,
				"match":   strconv.Itoa(p.Match),
				"round":   strconv.Itoa(p.Round),
			}))
		case persist.UpdateLobbyStatusParams:
			typ := types.EventTypeLobbyClosed
			if p.Status == state.StatusFinished {
				typ = types.EventTypeMatchFinished
			}
			events = append(events, event(typ, map[string]string{
				"lobbyId": p.LobbyID,
				"status":  string(p.Status),
			}))
		}
	}
	return events
}
