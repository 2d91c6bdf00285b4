package squares

import "math/rand"

// RollNumbers draws two independent random permutations of 0-9 and
// assigns them to the home (column) and away (row) axes. Rolling
// requires the grid to be locked first so claims cannot shift under the
// draw; it also locks the pool globally. An admin may re-roll while
// locked, replacing both permutations.
func (p *Pool) RollNumbers(role Role) error {
	if role != RoleAdmin {
		return ErrForbidden
	}
	if !p.IsGridLocked {
		return ErrGridUnlocked
	}
	p.HomeNumbers = rand.Perm(GridSize)
	p.AwayNumbers = rand.Perm(GridSize)
	p.IsLocked = true
	p.IsGridLocked = true
	return nil
}

// HasNumbers reports whether the digit permutations have been drawn.
// The two axes are always assigned together.
func (p *Pool) HasNumbers() bool {
	return len(p.HomeNumbers) == GridSize && len(p.AwayNumbers) == GridSize
}
