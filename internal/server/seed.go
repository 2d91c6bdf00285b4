package server

import (
	"context"

	"github.com/7LayerLabs/SundaySquares/internal/squares"
)

// SeedDemo creates a demo pool if the store is empty, so a fresh
// install has something to click on. Join code DEMO01, admin PIN 1234.
func (s *DocStore) SeedDemo(ctx context.Context) error {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pools`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	p, err := squares.New("Big Game Squares", squares.DefaultAdminPin)
	if err != nil {
		return err
	}
	p.PoolCode = "DEMO01"
	p.HomeTeam = "Patriots"
	p.AwayTeam = "Eagles"
	p.Activate()

	for i, owner := range []string{"dave", "maria", "tony", "beth"} {
		if err := p.ClaimCell(squares.RoleAdmin, i, i, owner, squares.MethodVenmo, nil); err != nil {
			return err
		}
	}
	if err := p.SetVerification(squares.RoleAdmin, 0, 0, true, false); err != nil {
		return err
	}
	if err := p.SetVerification(squares.RoleAdmin, 1, 1, false, true); err != nil {
		return err
	}

	_, err = s.CreatePool(ctx, p)
	return err
}
