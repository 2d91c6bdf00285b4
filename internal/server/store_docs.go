package server

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/7LayerLabs/SundaySquares/internal/squares"
)

// Document types stored as JSONB in per-model tables.

type sessionDoc struct {
	PoolID string `json:"poolId"`
	Role   string `json:"role"`
}

type ownerDoc struct {
	ID      string `json:"id"`
	PinHash string `json:"pinHash"`
}

type ownerSessionDoc struct {
	OwnerID string `json:"ownerId"`
}

// DocStore implements Store using per-model tables with JSONB data
// columns. Pools are keyed by an internal id; the join code is a
// separate unique column so rotating it never orphans sessions.
type DocStore struct {
	db *sql.DB
}

func NewDocStore(ctx context.Context, db *sql.DB) (*DocStore, error) {
	for _, ddl := range []string{
		`CREATE TABLE IF NOT EXISTS pools (
			id   TEXT PRIMARY KEY,
			code TEXT UNIQUE NOT NULL,
			data JSONB NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS sessions (
			id   TEXT PRIMARY KEY,
			data JSONB NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS directory (
			pool_code TEXT PRIMARY KEY,
			data      JSONB NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS owners (
			id   TEXT PRIMARY KEY,
			data JSONB NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS owner_sessions (
			id   TEXT PRIMARY KEY,
			data JSONB NOT NULL
		)`,
	} {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return nil, fmt.Errorf("creating table: %w", err)
		}
	}

	return &DocStore{db: db}, nil
}

func newID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}

func nowUTC() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05.000Z")
}

// Pools

func (s *DocStore) CreatePool(ctx context.Context, p *squares.Pool) (string, error) {
	id := newID()
	if p.CreatedAt == "" {
		p.CreatedAt = nowUTC()
	}

	// Codes are six base36 chars; collisions are rare but real, so
	// redraw a few times before giving up.
	for attempt := 0; attempt < 5; attempt++ {
		data, err := json.Marshal(p)
		if err != nil {
			return "", err
		}
		_, err = s.db.ExecContext(ctx,
			`INSERT INTO pools (id, code, data) VALUES (?, ?, jsonb(?))`,
			id, p.PoolCode, string(data),
		)
		if err == nil {
			return id, nil
		}
		if !strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return "", err
		}
		p.PoolCode = squares.NewCode()
	}
	return "", fmt.Errorf("could not allocate a unique pool code")
}

func (s *DocStore) GetPool(ctx context.Context, code string) (string, *squares.Pool, error) {
	var id, data string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, json(data) FROM pools WHERE code = ?`, code,
	).Scan(&id, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil, ErrNotFound
	}
	if err != nil {
		return "", nil, err
	}
	p, err := decodePool(data)
	if err != nil {
		return "", nil, err
	}
	return id, p, nil
}

// decodePool unmarshals a snapshot and fills defaults older exports
// lack. The defaults run here, at the load boundary, and nowhere else.
func decodePool(data string) (*squares.Pool, error) {
	var p squares.Pool
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return nil, err
	}
	p.ApplyDefaults()
	return &p, nil
}

// ModifyPool loads a pool, applies fn, and saves the whole snapshot in
// a transaction. All pool mutations go through here; fn returning an
// error rolls everything back.
func (s *DocStore) ModifyPool(ctx context.Context, id string, fn func(*squares.Pool) error) (*squares.Pool, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var data string
	err = tx.QueryRowContext(ctx,
		`SELECT json(data) FROM pools WHERE id = ?`, id,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	p, err := decodePool(data)
	if err != nil {
		return nil, err
	}

	if err := fn(p); err != nil {
		return nil, err
	}

	out, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE pools SET code = ?, data = jsonb(?) WHERE id = ?`,
		p.PoolCode, string(out), id,
	)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return p, nil
}

// Pool sessions

func (s *DocStore) CreateSession(ctx context.Context, poolID string, role squares.Role) (string, error) {
	token := newID()
	err := s.putDoc(ctx, "sessions", token, sessionDoc{PoolID: poolID, Role: string(role)})
	if err != nil {
		return "", err
	}
	return token, nil
}

func (s *DocStore) SessionFromToken(ctx context.Context, token string) (poolSession, error) {
	var doc sessionDoc
	err := s.getDoc(ctx, "sessions", token, &doc)
	if errors.Is(err, ErrNotFound) {
		return poolSession{}, errNoSession
	}
	if err != nil {
		return poolSession{}, err
	}
	return poolSession{PoolID: doc.PoolID, Role: squares.Role(doc.Role)}, nil
}

func (s *DocStore) DeleteSession(ctx context.Context, token string) error {
	return s.delDoc(ctx, "sessions", token)
}

func (s *DocStore) DeletePoolSessions(ctx context.Context, poolID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE json_extract(data, '$.poolId') = ?`, poolID,
	)
	return err
}

// Directory

func (s *DocStore) UpsertDirectory(ctx context.Context, e DirectoryEntry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO directory (pool_code, data) VALUES (?, jsonb(?))`,
		e.PoolCode, string(data),
	)
	return err
}

func (s *DocStore) UpdateDirectoryStats(ctx context.Context, poolCode string, stats DirectoryStats) error {
	var e DirectoryEntry
	err := s.getDirectory(ctx, poolCode, &e)
	if errors.Is(err, ErrNotFound) {
		// Unactivated pools have no directory row; nothing to sync.
		return nil
	}
	if err != nil {
		return err
	}
	e.DirectoryStats = stats
	return s.UpsertDirectory(ctx, e)
}

func (s *DocStore) getDirectory(ctx context.Context, poolCode string, dest *DirectoryEntry) error {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT json(data) FROM directory WHERE pool_code = ?`, poolCode,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(data), dest)
}

func (s *DocStore) ListDirectory(ctx context.Context) ([]DirectoryEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT json(data) FROM directory`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []DirectoryEntry
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var e DirectoryEntry
		if err := json.Unmarshal([]byte(data), &e); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CreatedAt > entries[j].CreatedAt
	})
	return entries, nil
}

// Owner credential and sessions

func (s *DocStore) SeedOwner(ctx context.Context, pinHash []byte) error {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM owners`).Scan(&n)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	return s.putDoc(ctx, "owners", newID(), ownerDoc{PinHash: string(pinHash)})
}

func (s *DocStore) OwnerPinHash(ctx context.Context) (string, []byte, error) {
	var id, data string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, json(data) FROM owners LIMIT 1`,
	).Scan(&id, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil, ErrNotFound
	}
	if err != nil {
		return "", nil, err
	}
	var doc ownerDoc
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return "", nil, err
	}
	return id, []byte(doc.PinHash), nil
}

func (s *DocStore) CreateOwnerSession(ctx context.Context, ownerID string) (string, error) {
	token := newID()
	if err := s.putDoc(ctx, "owner_sessions", token, ownerSessionDoc{OwnerID: ownerID}); err != nil {
		return "", err
	}
	return token, nil
}

func (s *DocStore) OwnerFromSession(ctx context.Context, token string) (ownerSession, error) {
	var doc ownerSessionDoc
	err := s.getDoc(ctx, "owner_sessions", token, &doc)
	if errors.Is(err, ErrNotFound) {
		return ownerSession{}, errNoSession
	}
	if err != nil {
		return ownerSession{}, err
	}
	return ownerSession{OwnerID: doc.OwnerID}, nil
}

func (s *DocStore) DeleteOwnerSession(ctx context.Context, token string) error {
	return s.delDoc(ctx, "owner_sessions", token)
}

// Generic id/data helpers shared by the session and owner tables.

func (s *DocStore) getDoc(ctx context.Context, table, id string, dest any) error {
	var data string
	err := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT json(data) FROM %s WHERE id = ?`, table), id,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(data), dest)
}

func (s *DocStore) putDoc(ctx context.Context, table, id string, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		fmt.Sprintf(`INSERT OR REPLACE INTO %s (id, data) VALUES (?, jsonb(?))`, table),
		id, string(data),
	)
	return err
}

func (s *DocStore) delDoc(ctx context.Context, table, id string) error {
	result, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, table), id,
	)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Ensure DocStore implements Store at compile time.
var _ Store = (*DocStore)(nil)
