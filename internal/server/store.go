package server

import (
	"context"
	"errors"

	"github.com/7LayerLabs/SundaySquares/internal/squares"
)

var ErrNotFound = errors.New("not found")

var errNoSession = errors.New("no session")

// poolSession ties a bearer token to a pool. Pools are keyed by an
// internal id, not the join code, so a code rotation invalidates shared
// links without logging the host out.
type poolSession struct {
	PoolID string
	Role   squares.Role
}

// ownerSession is the cross-pool operator's cookie session.
type ownerSession struct {
	OwnerID string
}

// DirectoryStats is the denormalized slice of pool state mirrored into
// the directory for the owner dashboard. The price rides along with the
// counts so a settings change refreshes it together with the pot.
type DirectoryStats struct {
	SquaresClaimed int    `json:"squaresClaimed"`
	SquaresPaid    int    `json:"squaresPaid"`
	TotalPot       int    `json:"totalPot"`
	PricePerSquare string `json:"pricePerSquare"`
	IsLocked       bool   `json:"isLocked"`
}

// DirectoryEntry is one row of the owner's pool directory.
type DirectoryEntry struct {
	PoolCode   string `json:"poolCode"`
	Title      string `json:"title"`
	LicenseKey string `json:"licenseKey,omitempty"`
	CreatedAt  string `json:"createdAt"`
	DirectoryStats
}

type Store interface {
	// CreatePool persists a fresh pool and returns its internal id.
	// Retries the join code on a uniqueness collision.
	CreatePool(ctx context.Context, p *squares.Pool) (string, error)
	// GetPool resolves a join code to the pool and its internal id.
	GetPool(ctx context.Context, code string) (string, *squares.Pool, error)
	// ModifyPool runs a read-modify-write of the whole snapshot inside
	// a transaction and returns the updated pool.
	ModifyPool(ctx context.Context, id string, fn func(*squares.Pool) error) (*squares.Pool, error)

	CreateSession(ctx context.Context, poolID string, role squares.Role) (string, error)
	SessionFromToken(ctx context.Context, token string) (poolSession, error)
	DeleteSession(ctx context.Context, token string) error
	// DeletePoolSessions revokes every session for a pool (full reset).
	DeletePoolSessions(ctx context.Context, poolID string) error

	UpsertDirectory(ctx context.Context, e DirectoryEntry) error
	UpdateDirectoryStats(ctx context.Context, poolCode string, stats DirectoryStats) error
	ListDirectory(ctx context.Context) ([]DirectoryEntry, error)

	SeedOwner(ctx context.Context, pinHash []byte) error
	OwnerPinHash(ctx context.Context) (string, []byte, error)
	CreateOwnerSession(ctx context.Context, ownerID string) (string, error)
	OwnerFromSession(ctx context.Context, token string) (ownerSession, error)
	DeleteOwnerSession(ctx context.Context, token string) error
}
