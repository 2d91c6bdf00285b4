// Package squares defines the core squares-pool domain: the Pool
// aggregate, the per-cell claim state machine, winner resolution, and
// the prize ledger. It has zero external dependencies — everything here
// is pure Go. Persistence and HTTP are callers of these functions, not
// co-owners of the state.
package squares

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	// GridSize is the number of rows and columns; cells carry one digit
	// per axis, so the grid is always 10x10.
	GridSize = 10

	DefaultAdminPin = "1234"
)

var (
	ErrForbidden       = errors.New("admin capability required")
	ErrPoolLocked      = errors.New("pool is locked")
	ErrGridUnlocked    = errors.New("grid must be locked before rolling numbers")
	ErrCellTaken       = errors.New("square is already claimed and paid or pending")
	ErrCellOutOfRange  = errors.New("row and col must be between 0 and 9")
	ErrNoSquare        = errors.New("square is not claimed")
	ErrEmptyOwner      = errors.New("owner name is required")
	ErrNoPaymentMethod = errors.New("payment method is required")
	ErrBadMethod       = errors.New("unknown payment method")
	ErrBadPin          = errors.New("admin PIN must be exactly 4 characters")
	ErrBadQuarter      = errors.New("unknown quarter")
	ErrNoWinner        = errors.New("no winner resolves for the current score")
	ErrUnclaimedWinner = errors.New("winning square is unclaimed")
	ErrEmptyTitle      = errors.New("title is required")
)

// PaymentMethod identifies the channel a player pays through.
type PaymentMethod string

const (
	MethodVenmo   PaymentMethod = "venmo"
	MethodCashApp PaymentMethod = "cashapp"
	MethodCash    PaymentMethod = "cash"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodVenmo, MethodCashApp, MethodCash:
		return true
	}
	return false
}

// ClaimStatus is the payment state of a claimed square. The legacy
// snapshot format carries two independent booleans (isPaid, isPending);
// internally a claim is always exactly one of these three states, and
// the booleans exist only on the wire.
type ClaimStatus int

const (
	StatusUnpaid ClaimStatus = iota
	StatusPending
	StatusPaid
)

func (s ClaimStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusPaid:
		return "paid"
	default:
		return "unpaid"
	}
}

// statusFromFlags maps the legacy boolean pair onto the enum. Paid wins
// over pending when a snapshot carries both.
func statusFromFlags(isPaid, isPending bool) ClaimStatus {
	switch {
	case isPaid:
		return StatusPaid
	case isPending:
		return StatusPending
	default:
		return StatusUnpaid
	}
}

func (s ClaimStatus) flags() (isPaid, isPending bool) {
	return s == StatusPaid, s == StatusPending
}

// Square is one claimed grid cell.
type Square struct {
	ID     string
	Owner  string
	Row    int
	Col    int
	Status ClaimStatus
	Method PaymentMethod
}

// squareJSON is the wire/snapshot shape, kept compatible with exports
// from older versions of the app.
type squareJSON struct {
	ID            string        `json:"id"`
	Owner         string        `json:"owner"`
	Row           int           `json:"row"`
	Col           int           `json:"col"`
	IsPaid        bool          `json:"isPaid"`
	IsPending     bool          `json:"isPending"`
	PaymentMethod PaymentMethod `json:"paymentMethod,omitempty"`
}

func (s Square) MarshalJSON() ([]byte, error) {
	paid, pending := s.Status.flags()
	return json.Marshal(squareJSON{
		ID:            s.ID,
		Owner:         s.Owner,
		Row:           s.Row,
		Col:           s.Col,
		IsPaid:        paid,
		IsPending:     pending,
		PaymentMethod: s.Method,
	})
}

func (s *Square) UnmarshalJSON(data []byte) error {
	var j squareJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	*s = Square{
		ID:     j.ID,
		Owner:  j.Owner,
		Row:    j.Row,
		Col:    j.Col,
		Status: statusFromFlags(j.IsPaid, j.IsPending),
		Method: j.PaymentMethod,
	}
	return nil
}

// Quarter keys a recorded quarter winner. The final payout bucket has
// no quarter-winner key; the game-end winner is whoever holds the last
// resolved cell.
type Quarter string

const (
	QuarterQ1 Quarter = "q1"
	QuarterQ2 Quarter = "q2"
	QuarterQ3 Quarter = "q3"
)

func ParseQuarter(s string) (Quarter, error) {
	switch q := Quarter(strings.ToLower(strings.TrimSpace(s))); q {
	case QuarterQ1, QuarterQ2, QuarterQ3:
		return q, nil
	}
	return "", ErrBadQuarter
}

// PaymentSettings holds the host's collection handles and the price of
// one square as free-form text.
type PaymentSettings struct {
	Venmo          string `json:"venmo"`
	CashApp        string `json:"cashApp"`
	Cash           string `json:"cash"`
	PricePerSquare string `json:"pricePerSquare"`
}

// Pool is the aggregate root for one squares game.
type Pool struct {
	Title             string             `json:"title"`
	HomeTeam          string             `json:"homeTeam"`
	AwayTeam          string             `json:"awayTeam"`
	HomeNumbers       []int              `json:"homeNumbers"`
	AwayNumbers       []int              `json:"awayNumbers"`
	Squares           map[string]Square  `json:"squares"`
	IsLocked          bool               `json:"isLocked"`
	IsGridLocked      bool               `json:"isGridLocked"`
	HomeScore         string             `json:"homeScore"`
	AwayScore         string             `json:"awayScore"`
	QuarterWinners    map[Quarter]string `json:"quarterWinners"`
	PaymentSettings   PaymentSettings    `json:"paymentSettings"`
	PrizeDistribution PrizeDistribution  `json:"prizeDistribution"`
	PoolCode          string             `json:"poolCode"`
	AdminPin          string             `json:"adminPin,omitempty"`
	IsInitialized     bool               `json:"isInitialized"`
	IsPaidPool        bool               `json:"isPaidPool"`
	CreatedAt         string             `json:"createdAt,omitempty"`
}

// New creates an empty pool: no numbers, no squares, awaiting
// activation. The admin PIN must be exactly 4 characters.
func New(title, adminPin string) (*Pool, error) {
	if !ValidPin(adminPin) {
		return nil, ErrBadPin
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = "Squares Pool"
	}
	return &Pool{
		Title:             title,
		HomeTeam:          "AFC Champions",
		AwayTeam:          "NFC Champions",
		Squares:           map[string]Square{},
		QuarterWinners:    map[Quarter]string{},
		PaymentSettings:   PaymentSettings{PricePerSquare: strconv.Itoa(DefaultPricePerSquare)},
		PrizeDistribution: DefaultPrizeDistribution,
		PoolCode:          NewCode(),
		AdminPin:          adminPin,
	}, nil
}

// ApplyDefaults fills fields that older snapshots may lack. It runs
// once at the load boundary, never inside business logic.
func (p *Pool) ApplyDefaults() {
	if p.PoolCode == "" {
		p.PoolCode = NewCode()
	}
	if p.AdminPin == "" {
		p.AdminPin = DefaultAdminPin
	}
	if p.Squares == nil {
		p.Squares = map[string]Square{}
	}
	if p.QuarterWinners == nil {
		p.QuarterWinners = map[Quarter]string{}
	}
	if p.PaymentSettings.PricePerSquare == "" {
		p.PaymentSettings.PricePerSquare = strconv.Itoa(DefaultPricePerSquare)
	}
	if p.PrizeDistribution == (PrizeDistribution{}) {
		p.PrizeDistribution = DefaultPrizeDistribution
	}
}

// CellID renders the canonical "{row}-{col}" cell identifier.
func CellID(row, col int) string {
	return fmt.Sprintf("%d-%d", row, col)
}

// ParseCellID decodes a cell identifier, rejecting anything outside the
// 10x10 grid.
func ParseCellID(id string) (row, col int, err error) {
	r, c, ok := strings.Cut(id, "-")
	if !ok {
		return 0, 0, ErrCellOutOfRange
	}
	row, err = strconv.Atoi(r)
	if err != nil {
		return 0, 0, ErrCellOutOfRange
	}
	col, err = strconv.Atoi(c)
	if err != nil {
		return 0, 0, ErrCellOutOfRange
	}
	if !inGrid(row, col) {
		return 0, 0, ErrCellOutOfRange
	}
	return row, col, nil
}

func inGrid(row, col int) bool {
	return row >= 0 && row < GridSize && col >= 0 && col < GridSize
}

// ForcedStatus overrides the paid/pending flags on a claim. The HTTP
// layer passes it for admin sessions only; player claims always start
// unpaid.
type ForcedStatus struct {
	IsPaid    bool
	IsPending bool
}

// ClaimCell upserts a square at (row, col). Owner names are trimmed and
// uppercased; duplicate owners across cells are permitted. Re-claiming
// a cell replaces owner and flags in place.
//
// Gating: a globally locked pool rejects non-admin claims outright. A
// grid-locked pool rejects non-admin claims only on cells that are paid
// or pending — an unpaid reservation may still be taken over, matching
// the behavior hosts rely on to reshuffle unpaid entries.
func (p *Pool) ClaimCell(role Role, row, col int, owner string, method PaymentMethod, forced *ForcedStatus) error {
	if !inGrid(row, col) {
		return ErrCellOutOfRange
	}
	admin := role == RoleAdmin
	if p.IsLocked && !admin {
		return ErrPoolLocked
	}
	owner = strings.ToUpper(strings.TrimSpace(owner))
	if owner == "" {
		return ErrEmptyOwner
	}
	if method != "" && !method.Valid() {
		return ErrBadMethod
	}
	if !admin && method == "" {
		return ErrNoPaymentMethod
	}
	id := CellID(row, col)
	if p.IsGridLocked && !admin {
		if sq, ok := p.Squares[id]; ok && sq.Status != StatusUnpaid {
			return ErrCellTaken
		}
	}
	status := StatusUnpaid
	if forced != nil {
		status = statusFromFlags(forced.IsPaid, forced.IsPending)
	}
	p.Squares[id] = Square{
		ID:     id,
		Owner:  owner,
		Row:    row,
		Col:    col,
		Status: status,
		Method: method,
	}
	return nil
}

// DeleteCell removes a square entirely, returning the cell to open.
func (p *Pool) DeleteCell(role Role, row, col int) error {
	if role != RoleAdmin {
		return ErrForbidden
	}
	if !inGrid(row, col) {
		return ErrCellOutOfRange
	}
	id := CellID(row, col)
	if _, ok := p.Squares[id]; !ok {
		return ErrNoSquare
	}
	delete(p.Squares, id)
	return nil
}

// SetVerification overrides the payment flags on a claimed square. Used
// for individual edits and as the building block of bulk verification.
func (p *Pool) SetVerification(role Role, row, col int, isPaid, isPending bool) error {
	if role != RoleAdmin {
		return ErrForbidden
	}
	if !inGrid(row, col) {
		return ErrCellOutOfRange
	}
	id := CellID(row, col)
	sq, ok := p.Squares[id]
	if !ok {
		return ErrNoSquare
	}
	sq.Status = statusFromFlags(isPaid, isPending)
	p.Squares[id] = sq
	return nil
}

// ToggleGridLock flips the claim-edit freeze. Independent of whether
// numbers have been rolled; may be toggled any number of times.
func (p *Pool) ToggleGridLock(role Role) error {
	if role != RoleAdmin {
		return ErrForbidden
	}
	p.IsGridLocked = !p.IsGridLocked
	return nil
}

// SetScore updates the live score text. Empty strings mean the game is
// not yet live; the text is otherwise free-form.
func (p *Pool) SetScore(role Role, homeScore, awayScore string) error {
	if role != RoleAdmin {
		return ErrForbidden
	}
	p.HomeScore = strings.TrimSpace(homeScore)
	p.AwayScore = strings.TrimSpace(awayScore)
	return nil
}

func (p *Pool) SetTitle(role Role, title string) error {
	if role != RoleAdmin {
		return ErrForbidden
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrEmptyTitle
	}
	p.Title = title
	return nil
}

func (p *Pool) SetTeams(role Role, homeTeam, awayTeam string) error {
	if role != RoleAdmin {
		return ErrForbidden
	}
	if t := strings.TrimSpace(homeTeam); t != "" {
		p.HomeTeam = t
	}
	if t := strings.TrimSpace(awayTeam); t != "" {
		p.AwayTeam = t
	}
	return nil
}

func (p *Pool) SetPaymentSettings(role Role, s PaymentSettings) error {
	if role != RoleAdmin {
		return ErrForbidden
	}
	p.PaymentSettings = s
	return nil
}

// SetPrizeDistribution stores the four payout percentages. A sum other
// than 100 is surfaced by PrizeDistribution.Balanced but never blocks
// the save.
func (p *Pool) SetPrizeDistribution(role Role, d PrizeDistribution) error {
	if role != RoleAdmin {
		return ErrForbidden
	}
	p.PrizeDistribution = d
	return nil
}

func (p *Pool) SetAdminPin(role Role, pin string) error {
	if role != RoleAdmin {
		return ErrForbidden
	}
	if !ValidPin(pin) {
		return ErrBadPin
	}
	p.AdminPin = pin
	return nil
}

// RotateCode regenerates the player-facing join code, invalidating any
// previously shared links.
func (p *Pool) RotateCode(role Role) (string, error) {
	if role != RoleAdmin {
		return "", ErrForbidden
	}
	p.PoolCode = NewCode()
	return p.PoolCode, nil
}

// Activate marks the pool paid and initialized after the host fee has
// cleared.
func (p *Pool) Activate() {
	p.IsPaidPool = true
	p.IsInitialized = true
}

// Reset wipes numbers, squares, scores, winners, and locks, re-opening
// the pool for claims. Code, PIN, teams, and payment settings survive.
func (p *Pool) Reset(role Role) error {
	if role != RoleAdmin {
		return ErrForbidden
	}
	p.HomeNumbers = nil
	p.AwayNumbers = nil
	p.Squares = map[string]Square{}
	p.IsLocked = false
	p.IsGridLocked = false
	p.HomeScore = ""
	p.AwayScore = ""
	p.QuarterWinners = map[Quarter]string{}
	p.IsInitialized = false
	return nil
}

// ClearSquares wipes only the claims, keeping numbers and lock state.
func (p *Pool) ClearSquares(role Role) error {
	if role != RoleAdmin {
		return ErrForbidden
	}
	p.Squares = map[string]Square{}
	return nil
}
