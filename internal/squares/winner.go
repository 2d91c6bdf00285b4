package squares

import "strings"

// ResolveWinner maps a score pair onto a cell id. The last character of
// each score text is the significant digit: its index in homeNumbers is
// the winning column, in awayNumbers the winning row. Resolution is
// pure and ignores claim state entirely; missing numbers, an empty
// score, or a non-digit last character yield no winner rather than an
// error.
func ResolveWinner(homeScore, awayScore string, homeNumbers, awayNumbers []int) (string, bool) {
	if len(homeNumbers) != GridSize || len(awayNumbers) != GridSize {
		return "", false
	}
	hd, ok := lastDigit(homeScore)
	if !ok {
		return "", false
	}
	ad, ok := lastDigit(awayScore)
	if !ok {
		return "", false
	}
	col := indexOf(homeNumbers, hd)
	row := indexOf(awayNumbers, ad)
	if col < 0 || row < 0 {
		return "", false
	}
	return CellID(row, col), true
}

func lastDigit(score string) (int, bool) {
	score = strings.TrimSpace(score)
	if score == "" {
		return 0, false
	}
	c := score[len(score)-1]
	if c < '0' || c > '9' {
		return 0, false
	}
	return int(c - '0'), true
}

func indexOf(nums []int, d int) int {
	for i, n := range nums {
		if n == d {
			return i
		}
	}
	return -1
}

// WinningCell resolves the winner for the pool's current score.
func (p *Pool) WinningCell() (string, bool) {
	return ResolveWinner(p.HomeScore, p.AwayScore, p.HomeNumbers, p.AwayNumbers)
}

// CurrentWinner returns the square holding the currently resolved cell,
// if that cell is claimed.
func (p *Pool) CurrentWinner() (Square, bool) {
	id, ok := p.WinningCell()
	if !ok {
		return Square{}, false
	}
	sq, ok := p.Squares[id]
	return sq, ok
}

// RecordQuarterWinner freezes the current winner's name under the given
// quarter. The cell must resolve and be claimed. Recording the same
// quarter again overwrites silently, so a corrected score can re-record.
func (p *Pool) RecordQuarterWinner(role Role, q Quarter) (string, error) {
	if role != RoleAdmin {
		return "", ErrForbidden
	}
	id, ok := p.WinningCell()
	if !ok {
		return "", ErrNoWinner
	}
	sq, ok := p.Squares[id]
	if !ok {
		return "", ErrUnclaimedWinner
	}
	if p.QuarterWinners == nil {
		p.QuarterWinners = map[Quarter]string{}
	}
	p.QuarterWinners[q] = sq.Owner
	return sq.Owner, nil
}
