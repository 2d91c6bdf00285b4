package squares

import "strings"

// Role is the capability level a session carries. Pools know nothing
// about tokens; the server layer mints those. Everything above player
// level is gated on RoleAdmin.
type Role string

const (
	RoleNone   Role = ""
	RolePlayer Role = "player"
	RoleAdmin  Role = "admin"
)

// Authenticate resolves a join input against the pool's credentials.
// The admin PIN and the pool code share one input field, so matching is
// ordered: PIN first, then code, both case-insensitive. A PIN match on
// a fresh pool also marks it initialized, since the host has arrived.
// No match yields RoleNone; callers should surface a generic failure
// rather than reveal which credential was wrong.
func (p *Pool) Authenticate(input string) Role {
	input = strings.TrimSpace(input)
	if input == "" {
		return RoleNone
	}
	if strings.EqualFold(input, p.AdminPin) {
		p.IsInitialized = true
		return RoleAdmin
	}
	if strings.EqualFold(input, p.PoolCode) {
		return RolePlayer
	}
	return RoleNone
}
