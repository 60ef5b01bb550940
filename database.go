package main

import (
	"database/sql"
	"time"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite database. It mirrors room/user metadata and stores
// accounts and win/game stats. The simulation never reads game state back
// from it; everything here is telemetry or account bookkeeping.
type DB struct {
	conn *sql.DB
}

// UserRow represents an account record
type UserRow struct {
	ID        int64
	Username  string
	PassHash  string
	CreatedAt time.Time
}

// StatsRow represents per-account aggregate stats
type StatsRow struct {
	PlayerID int64
	Wins     int
	Games    int
}

// OpenDB opens (or creates) the SQLite database
func OpenDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// WAL for concurrent readers against the mirror writer
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates tables if they don't exist
func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		pass_hash TEXT NOT NULL DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS stats (
		player_id INTEGER PRIMARY KEY REFERENCES users(id),
		wins INTEGER NOT NULL DEFAULT 0,
		games INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS rooms (
		code TEXT PRIMARY KEY,
		player_count INTEGER NOT NULL DEFAULT 0,
		max_players INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'open',
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS room_players (
		room_code TEXT NOT NULL,
		session_id TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (room_code, session_id)
	);

	CREATE TABLE IF NOT EXISTS sessions_seen (
		session_id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		seen_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		room_code TEXT NOT NULL,
		winner_session TEXT NOT NULL,
		winner_name TEXT NOT NULL,
		score INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_results_room ON results(room_code);
	`
	_, err := db.conn.Exec(schema)
	if err != nil {
		Log.Errorf("db migration error: %v", err)
	}
	return err
}

// GetSetting returns a settings value or "" when absent.
func (db *DB) GetSetting(key string) string {
	var v string
	err := db.conn.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&v)
	if err != nil {
		return ""
	}
	return v
}

// SetSetting stores a settings value.
func (db *DB) SetSetting(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	return err
}

// CreateUser creates a new account (returns its id)
func (db *DB) CreateUser(username, passHash string) (int64, error) {
	res, err := db.conn.Exec(
		"INSERT INTO users (username, pass_hash) VALUES (?, ?)",
		username, passHash,
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	_, err = db.conn.Exec("INSERT INTO stats (player_id) VALUES (?)", id)
	return id, err
}

// GetUserByUsername returns an account by username, nil if absent
func (db *DB) GetUserByUsername(username string) (*UserRow, error) {
	row := db.conn.QueryRow(
		"SELECT id, username, pass_hash, created_at FROM users WHERE username = ?",
		username,
	)
	u := &UserRow{}
	err := row.Scan(&u.ID, &u.Username, &u.PassHash, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return u, err
}

// GetStats returns aggregate stats for an account, nil if absent
func (db *DB) GetStats(playerID int64) (*StatsRow, error) {
	row := db.conn.QueryRow(
		"SELECT player_id, wins, games FROM stats WHERE player_id = ?",
		playerID,
	)
	s := &StatsRow{}
	err := row.Scan(&s.PlayerID, &s.Wins, &s.Games)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return s, err
}

// UsernameExists checks if a username is taken
func (db *DB) UsernameExists(username string) (bool, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM users WHERE username = ?", username).Scan(&count)
	return count > 0, err
}

// AddGameResult bumps games (and wins) for an account after a finished game
func (db *DB) AddGameResult(playerID int64, won bool) error {
	winInc := 0
	if won {
		winInc = 1
	}
	_, err := db.conn.Exec(
		"UPDATE stats SET wins = wins + ?, games = games + 1 WHERE player_id = ?",
		winInc, playerID,
	)
	return err
}

// UpsertRoom mirrors a room's occupancy row
func (db *DB) UpsertRoom(code string, playerCount, maxPlayers int, status string) error {
	_, err := db.conn.Exec(`
		INSERT INTO rooms (code, player_count, max_players, status, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(code) DO UPDATE SET
			player_count = excluded.player_count,
			max_players = excluded.max_players,
			status = excluded.status,
			updated_at = CURRENT_TIMESTAMP`,
		code, playerCount, maxPlayers, status,
	)
	return err
}

// DeleteRoom removes a released room's mirror rows
func (db *DB) DeleteRoom(code string) error {
	if _, err := db.conn.Exec("DELETE FROM room_players WHERE room_code = ?", code); err != nil {
		return err
	}
	_, err := db.conn.Exec("DELETE FROM rooms WHERE code = ?", code)
	return err
}

// AddRoomPlayer mirrors a join
func (db *DB) AddRoomPlayer(code, sessionID, name string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO room_players (room_code, session_id, name) VALUES (?, ?, ?)",
		code, sessionID, name,
	)
	return err
}

// RemoveRoomPlayer mirrors a leave
func (db *DB) RemoveRoomPlayer(code, sessionID string) error {
	_, err := db.conn.Exec(
		"DELETE FROM room_players WHERE room_code = ? AND session_id = ?",
		code, sessionID,
	)
	return err
}

// MarkSessionSeen mirrors a connection
func (db *DB) MarkSessionSeen(sessionID, name string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO sessions_seen (session_id, name, seen_at) VALUES (?, ?, CURRENT_TIMESTAMP)",
		sessionID, name,
	)
	return err
}

// RecordResult stores a finished game's outcome
func (db *DB) RecordResult(roomCode, winnerSession, winnerName string, score int) error {
	_, err := db.conn.Exec(
		"INSERT INTO results (room_code, winner_session, winner_name, score) VALUES (?, ?, ?, ?)",
		roomCode, winnerSession, winnerName, score,
	)
	return err
}
