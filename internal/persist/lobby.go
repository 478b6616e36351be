package persist

import "github.com/aljosa/paima-cards/internal/state"

func CreateLobby(p CreateLobbyParams) Mutation { return newMutation(p) }

func AddPlayer(lobbyID string, tokenID int64, wallet string, seat int) Mutation {
	return newMutation(AddPlayerParams{LobbyID: lobbyID, TokenID: tokenID, Wallet: wallet, Seat: seat})
}

// ActivateLobby starts match 0 at round 0 with turn 0.
func ActivateLobby(lobbyID, playerTwo string) Mutation {
	return newMutation(ActivateLobbyParams{LobbyID: lobbyID, PlayerTwo: playerTwo})
}

func UpdateLobbyStatus(lobbyID string, status state.LobbyStatus) Mutation {
	return newMutation(UpdateLobbyStatusParams{LobbyID: lobbyID, Status: status})
}

func UpdateLobbyPlayer(p state.LobbyPlayer) Mutation {
	var turn *int
	if p.Turn != nil {
		turn = state.IntPtr(*p.Turn)
	}
	return newMutation(UpdateLobbyPlayerParams{
		LobbyID:      p.LobbyID,
		TokenID:      p.TokenID,
		StartingDeck: p.StartingDeck.Clone(),
		CurrentDeck:  p.CurrentDeck.Clone(),
		CurrentHand:  p.CurrentHand.Clone(),
		CurrentDraw:  p.CurrentDraw,
		Turn:         turn,
		Points:       p.Points,
		Score:        p.Score,
	})
}
