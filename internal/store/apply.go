package store

import (
	"context"
	"database/sql"
	"encoding/hex"
	"fmt"
	"math"

	"github.com/aljosa/paima-cards/internal/persist"
)

// Apply executes muts in order inside one transaction.
func (s *Store) Apply(ctx context.Context, muts []persist.Mutation) error {
	if len(muts) == 0 {
		return nil
	}
	return s.inBlock(ctx, func(b *Block) error {
		return b.Apply(ctx, muts)
	})
}

func (r conn) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return r.q.ExecContext(ctx, r.dialect.rebind(query), args...)
}

// execOne fails unless exactly one row was touched.
func (r conn) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.exec(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n != 1 {
		return fmt.Errorf("expected 1 row, touched %d", n)
	}
	return nil
}

func (r conn) applyOne(ctx context.Context, m persist.Mutation) error {
	switch p := m.Params.(type) {
	case persist.CreateLobbyParams:
		_, err := r.exec(ctx, `
INSERT INTO lobbies (
    lobby_id, lobby_state, creator_wallet, creator_token_id, max_players, num_of_rounds,
    round_length, play_time_per_player, hidden, practice, player_one_is_white, creation_block_height
)
VALUES (?, 'open', ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.LobbyID, p.CreatorWallet, p.CreatorTokenID, p.MaxPlayers, p.NumOfRounds,
			p.RoundLength, p.PlayTimePerPlayer, p.Hidden, p.Practice, p.PlayerOneIsWhite, p.CreationBlockHeight)
		return err

	case persist.AddPlayerParams:
		_, err := r.exec(ctx, `
INSERT INTO lobby_players (lobby_id, token_id, wallet, seat) VALUES (?, ?, ?, ?)`,
			p.LobbyID, p.TokenID, p.Wallet, p.Seat)
		return err

	case persist.ActivateLobbyParams:
		return r.execOne(ctx, `
UPDATE lobbies
SET lobby_state = 'active', player_two = ?, current_match = ?, current_round = ?,
    current_turn = ?, current_proper_round = ?
WHERE lobby_id = ? AND lobby_state = 'open'`,
			p.PlayerTwo, p.Match, p.Round, p.Turn, p.ProperRound, p.LobbyID)

	case persist.UpdateLobbyStatusParams:
		return r.execOne(ctx, `UPDATE lobbies SET lobby_state = ? WHERE lobby_id = ?`, string(p.Status), p.LobbyID)

	case persist.NewMatchParams:
		_, err := r.exec(ctx, `
INSERT INTO matches (lobby_id, match_within_lobby, starting_block_height) VALUES (?, ?, ?)`,
			p.LobbyID, p.Match, p.StartingBlockHeight)
		return err

	case persist.NewRoundParams:
		_, err := r.exec(ctx, `
INSERT INTO rounds (lobby_id, match_within_lobby, round_within_match, starting_block_height, round_length)
VALUES (?, ?, ?, ?, ?)`,
			p.LobbyID, p.Match, p.Round, p.StartingBlockHeight, p.RoundLength)
		return err

	case persist.ExecutedRoundParams:
		return r.execOne(ctx, `
UPDATE rounds SET execution_block_height = ?
WHERE lobby_id = ? AND match_within_lobby = ? AND round_within_match = ? AND execution_block_height IS NULL`,
			p.ExecutionBlockHeight, p.LobbyID, p.Match, p.Round)

	case persist.UpdateMatchStateParams:
		return r.execOne(ctx, `
UPDATE lobbies SET current_match = ?, current_round = ?, current_turn = ?, current_proper_round = ?
WHERE lobby_id = ?`,
			p.Match, p.Round, p.Turn, p.ProperRound, p.LobbyID)

	case persist.UpdateLobbyPlayerParams:
		hand, err := p.CurrentHand.Marshal()
		if err != nil {
			return err
		}
		var turn any
		if p.Turn != nil {
			turn = int64(*p.Turn)
		}
		return r.execOne(ctx, `
UPDATE lobby_players
SET starting_deck = ?, current_deck = ?, current_hand = ?, current_draw = ?, turn = ?, points = ?, score = ?
WHERE lobby_id = ? AND token_id = ?`,
			p.StartingDeck.String(), p.CurrentDeck.String(), hand, p.CurrentDraw, turn, p.Points, p.Score,
			p.LobbyID, p.TokenID)

	case persist.SubmitMoveParams:
		_, err := r.exec(ctx, `
INSERT INTO moves (lobby_id, match_within_lobby, round_within_match, token_id, wallet, roll_again)
VALUES (?, ?, ?, ?, ?, ?)`,
			p.LobbyID, p.Match, p.Round, p.TokenID, p.Wallet, p.RollAgain)
		return err

	case persist.MatchResultsParams:
		return r.execOne(ctx, `
UPDATE matches SET result = ? WHERE lobby_id = ? AND match_within_lobby = ?`,
			p.Result.String(), p.LobbyID, p.Match)

	case persist.BlankStatsParams:
		_, err := r.exec(ctx, `
INSERT INTO user_stats (token_id) VALUES (?)
ON CONFLICT (token_id) DO NOTHING`, p.TokenID)
		return err

	case persist.UpdateStatsParams:
		_, err := r.exec(ctx, `
INSERT INTO user_stats (token_id, wins, losses, ties) VALUES (?, ?, ?, ?)
ON CONFLICT (token_id) DO UPDATE SET wins = excluded.wins, losses = excluded.losses, ties = excluded.ties`,
			p.TokenID, p.Wins, p.Losses, p.Ties)
		return err

	case persist.ScheduleInputParams:
		_, err := r.exec(ctx, `
INSERT INTO scheduled_inputs (block_height, input_data) VALUES (?, ?)`, p.BlockHeight, p.Input)
		return err

	case persist.DeleteScheduledInputParams:
		// Removes one copy; a missing row is not an error since the input may
		// already have been delivered.
		_, err := r.exec(ctx, `
DELETE FROM scheduled_inputs
WHERE id = (SELECT MIN(id) FROM scheduled_inputs WHERE block_height = ? AND input_data = ?)`,
			p.BlockHeight, p.Input)
		return err

	case persist.MintNftParams:
		_, err := r.exec(ctx, `
INSERT INTO nft_owners (token_id, owner_wallet) VALUES (?, ?)`, p.TokenID, p.Owner)
		return err

	case persist.RegisterAccountParams:
		_, err := r.exec(ctx, `
INSERT INTO accounts (wallet, pub_key) VALUES (?, ?)`, p.Wallet, hex.EncodeToString(p.PubKey))
		return err

	case persist.AccountNonceParams:
		if p.Nonce > math.MaxInt64 {
			return fmt.Errorf("nonce %d out of range", p.Nonce)
		}
		return r.execOne(ctx, `
UPDATE accounts SET nonce_max = ? WHERE wallet = ? AND nonce_max < ?`,
			int64(p.Nonce), p.Wallet, int64(p.Nonce))

	default:
		return fmt.Errorf("unknown mutation params %T", p)
	}
}
