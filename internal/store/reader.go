package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aljosa/paima-cards/internal/rng"
	"github.com/aljosa/paima-cards/internal/state"
)

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// conn runs statements against the committed database or an open block.
// Reads through the database only see committed rows.
type conn struct {
	q       querier
	dialect dialect
}

func nullInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	return state.IntPtr(int(v.Int64))
}

func (r conn) GetLobby(ctx context.Context, lobbyID string) (*state.Lobby, error) {
	var (
		l                               state.Lobby
		status                          string
		match, round, turn, properRound sql.NullInt64
	)
	err := r.q.QueryRowContext(ctx, r.dialect.rebind(`
SELECT lobby_id, lobby_state, creator_wallet, creator_token_id, player_two,
       max_players, num_of_rounds, round_length, play_time_per_player,
       hidden, practice, player_one_is_white, creation_block_height,
       current_match, current_round, current_turn, current_proper_round
FROM lobbies
WHERE lobby_id = ?`), lobbyID).Scan(
		&l.ID, &status, &l.CreatorWallet, &l.CreatorTokenID, &l.PlayerTwo,
		&l.MaxPlayers, &l.NumOfRounds, &l.RoundLength, &l.PlayTimePerPlayer,
		&l.Hidden, &l.Practice, &l.PlayerOneIsWhite, &l.CreationBlockHeight,
		&match, &round, &turn, &properRound,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get lobby %s: %w", lobbyID, err)
	}
	l.Status = state.LobbyStatus(status)
	if !l.Status.Valid() {
		return nil, fmt.Errorf("lobby %s has unknown state %q", lobbyID, status)
	}
	l.CurrentMatch = nullInt(match)
	l.CurrentRound = nullInt(round)
	l.CurrentTurn = nullInt(turn)
	l.CurrentProperRound = nullInt(properRound)
	return &l, nil
}

func (r conn) GetLobbyPlayers(ctx context.Context, lobbyID string) ([]state.LobbyPlayer, error) {
	rows, err := r.q.QueryContext(ctx, r.dialect.rebind(`
SELECT lobby_id, token_id, wallet, seat, starting_deck, current_deck, current_hand,
       current_draw, turn, points, score
FROM lobby_players
WHERE lobby_id = ?
ORDER BY seat ASC`), lobbyID)
	if err != nil {
		return nil, fmt.Errorf("get players of %s: %w", lobbyID, err)
	}
	defer rows.Close()

	var out []state.LobbyPlayer
	for rows.Next() {
		var (
			p                        state.LobbyPlayer
			startDeck, curDeck, hand string
			turn                     sql.NullInt64
		)
		if err := rows.Scan(&p.LobbyID, &p.TokenID, &p.Wallet, &p.Seat, &startDeck, &curDeck, &hand,
			&p.CurrentDraw, &turn, &p.Points, &p.Score); err != nil {
			return nil, err
		}
		if p.StartingDeck, err = state.ParseDeck(startDeck); err != nil {
			return nil, fmt.Errorf("player %d starting deck: %w", p.TokenID, err)
		}
		if p.CurrentDeck, err = state.ParseDeck(curDeck); err != nil {
			return nil, fmt.Errorf("player %d current deck: %w", p.TokenID, err)
		}
		if p.CurrentHand, err = state.ParseHand(hand); err != nil {
			return nil, fmt.Errorf("player %d hand: %w", p.TokenID, err)
		}
		p.Turn = nullInt(turn)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r conn) GetMatch(ctx context.Context, lobbyID string, match int) (*state.Match, error) {
	var (
		m      state.Match
		result string
	)
	err := r.q.QueryRowContext(ctx, r.dialect.rebind(`
SELECT lobby_id, match_within_lobby, starting_block_height, result
FROM matches
WHERE lobby_id = ? AND match_within_lobby = ?`), lobbyID, match).Scan(
		&m.LobbyID, &m.MatchWithinLobby, &m.StartingBlockHeight, &result)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get match %s/%d: %w", lobbyID, match, err)
	}
	if m.Result, err = state.ParseMatchResult(result); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r conn) GetRound(ctx context.Context, lobbyID string, match, round int) (*state.Round, error) {
	var (
		rd   state.Round
		exec sql.NullInt64
	)
	err := r.q.QueryRowContext(ctx, r.dialect.rebind(`
SELECT lobby_id, match_within_lobby, round_within_match, starting_block_height, round_length, execution_block_height
FROM rounds
WHERE lobby_id = ? AND match_within_lobby = ? AND round_within_match = ?`), lobbyID, match, round).Scan(
		&rd.LobbyID, &rd.MatchWithinLobby, &rd.RoundWithinMatch, &rd.StartingBlockHeight, &rd.RoundLength, &exec)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get round %s/%d/%d: %w", lobbyID, match, round, err)
	}
	if exec.Valid {
		rd.ExecutionBlockHeight = state.Int64Ptr(exec.Int64)
	}
	return &rd, nil
}

func (r conn) GetRoundMoves(ctx context.Context, lobbyID string, match, round int) ([]state.Move, error) {
	rows, err := r.q.QueryContext(ctx, r.dialect.rebind(`
SELECT lobby_id, match_within_lobby, round_within_match, token_id, wallet, roll_again
FROM moves
WHERE lobby_id = ? AND match_within_lobby = ? AND round_within_match = ?
ORDER BY token_id ASC`), lobbyID, match, round)
	if err != nil {
		return nil, fmt.Errorf("get moves %s/%d/%d: %w", lobbyID, match, round, err)
	}
	defer rows.Close()

	var out []state.Move
	for rows.Next() {
		var m state.Move
		if err := rows.Scan(&m.LobbyID, &m.MatchWithinLobby, &m.RoundWithinMatch, &m.TokenID, &m.Wallet, &m.RollAgain); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r conn) GetUserStats(ctx context.Context, tokenID int64) (*state.UserStats, error) {
	var st state.UserStats
	err := r.q.QueryRowContext(ctx, r.dialect.rebind(`
SELECT token_id, wins, losses, ties FROM user_stats WHERE token_id = ?`), tokenID).Scan(
		&st.TokenID, &st.Wins, &st.Losses, &st.Ties)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get stats %d: %w", tokenID, err)
	}
	return &st, nil
}

func (r conn) blockSeed(ctx context.Context, height int64) (rng.Seed, bool, error) {
	var raw string
	err := r.q.QueryRowContext(ctx, r.dialect.rebind(`
SELECT seed FROM block_seeds WHERE block_height = ?`), height).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return rng.Seed{}, false, nil
	}
	if err != nil {
		return rng.Seed{}, false, fmt.Errorf("get block seed %d: %w", height, err)
	}
	seed, err := rng.SeedFromHex(raw)
	if err != nil {
		return rng.Seed{}, false, fmt.Errorf("block seed %d: %w", height, err)
	}
	return seed, true, nil
}

// GetBlockSeed serves recent heights from the LRU cache.
func (s *Store) GetBlockSeed(ctx context.Context, height int64) (rng.Seed, bool, error) {
	if seed, ok := s.seeds.Get(height); ok {
		return seed, true, nil
	}
	seed, ok, err := s.blockSeed(ctx, height)
	if err != nil || !ok {
		return rng.Seed{}, ok, err
	}
	s.seeds.Add(height, seed)
	return seed, true, nil
}

// SaveBlockSeed records the entropy of a block in its own transaction.
func (s *Store) SaveBlockSeed(ctx context.Context, height int64, seed rng.Seed) error {
	return s.inBlock(ctx, func(b *Block) error {
		return b.SaveBlockSeed(ctx, height, seed)
	})
}

func (r conn) TokenOwner(ctx context.Context, tokenID int64) (string, bool, error) {
	var owner string
	err := r.q.QueryRowContext(ctx, r.dialect.rebind(`
SELECT owner_wallet FROM nft_owners WHERE token_id = ?`), tokenID).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get owner of %d: %w", tokenID, err)
	}
	return owner, true, nil
}

// OwnsToken answers ownership from the minted-token table.
func (r conn) OwnsToken(ctx context.Context, wallet string, tokenID int64) (bool, error) {
	if wallet == "" {
		return false, nil
	}
	owner, ok, err := r.TokenOwner(ctx, tokenID)
	if err != nil || !ok {
		return false, err
	}
	return owner == wallet, nil
}

// DueScheduledInputs returns the inputs scheduled at height in insertion order.
func (r conn) DueScheduledInputs(ctx context.Context, height int64) ([]state.ScheduledInput, error) {
	rows, err := r.q.QueryContext(ctx, r.dialect.rebind(`
SELECT block_height, input_data FROM scheduled_inputs
WHERE block_height = ?
ORDER BY id ASC`), height)
	if err != nil {
		return nil, fmt.Errorf("scheduled inputs at %d: %w", height, err)
	}
	defer rows.Close()

	var out []state.ScheduledInput
	for rows.Next() {
		var in state.ScheduledInput
		if err := rows.Scan(&in.BlockHeight, &in.Input); err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	return out, rows.Err()
}
