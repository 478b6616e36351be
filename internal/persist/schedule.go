package persist

import (
	"github.com/aljosa/paima-cards/internal/codec"
	"github.com/aljosa/paima-cards/internal/state"
	"github.com/aljosa/paima-cards/internal/types"
)

// ScheduleInput queues a for delivery at height, sent by ScheduledDataAddress.
func ScheduleInput(height int64, a codec.Action) (Mutation, error) {
	b, err := codec.EncodeTxEnvelope(a, types.ScheduledDataAddress)
	if err != nil {
		return Mutation{}, err
	}
	return newMutation(ScheduleInputParams{BlockHeight: height, Input: string(b)}), nil
}

func DeleteScheduledInput(height int64, a codec.Action) (Mutation, error) {
	b, err := codec.EncodeTxEnvelope(a, types.ScheduledDataAddress)
	if err != nil {
		return Mutation{}, err
	}
	return newMutation(DeleteScheduledInputParams{BlockHeight: height, Input: string(b)}), nil
}

// DeleteDelivered removes a scheduled input after the host delivered it.
func DeleteDelivered(in state.ScheduledInput) Mutation {
	return newMutation(DeleteScheduledInputParams{BlockHeight: in.BlockHeight, Input: in.Input})
}

// SchedulePracticeMove has the practice bot play round at height+1.
func SchedulePracticeMove(lobbyID string, match, round int, height int64) (Mutation, error) {
	at, err := nextHeight(height)
	if err != nil {
		return Mutation{}, err
	}
	return ScheduleInput(at, codec.PracticeMovesTx{LobbyID: lobbyID, MatchWithinLobby: match, RoundWithinMatch: round})
}
