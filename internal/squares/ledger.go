package squares

import (
	"math"
	"strconv"
)

// DefaultPricePerSquare applies when the configured price text does not
// parse as a number.
const DefaultPricePerSquare = 10

// PrizeDistribution is the payout split in whole percents of the pot.
// "final" is the end-of-game bucket; it is never a quarter-winner key.
type PrizeDistribution struct {
	Q1    int `json:"q1"`
	Q2    int `json:"q2"`
	Q3    int `json:"q3"`
	Final int `json:"final"`
}

var DefaultPrizeDistribution = PrizeDistribution{Q1: 20, Q2: 20, Q3: 20, Final: 40}

func (d PrizeDistribution) Sum() int {
	return d.Q1 + d.Q2 + d.Q3 + d.Final
}

// Balanced reports whether the four buckets cover the pot exactly. An
// unbalanced split is flagged to the host but never blocks saving or
// paying out.
func (d PrizeDistribution) Balanced() bool {
	return d.Sum() == 100
}

// Stats summarizes the money side of a pool. TotalPot counts every
// claim regardless of payment state; Collected counts paid claims only.
type Stats struct {
	TotalClaimed int `json:"totalClaimed"`
	TotalPaid    int `json:"totalPaid"`
	TotalPending int `json:"totalPending"`
	TotalPot     int `json:"totalPot"`
	Collected    int `json:"collected"`
}

func (p *Pool) Stats() Stats {
	var s Stats
	for _, sq := range p.Squares {
		s.TotalClaimed++
		switch sq.Status {
		case StatusPaid:
			s.TotalPaid++
		case StatusPending:
			s.TotalPending++
		}
	}
	price := ParsePrice(p.PaymentSettings.PricePerSquare)
	s.TotalPot = s.TotalClaimed * price
	s.Collected = s.TotalPaid * price
	return s
}

// ParsePrice reads the square price from its free-form text field,
// falling back to the default on anything non-numeric or negative.
func ParsePrice(text string) int {
	n, err := strconv.Atoi(text)
	if err != nil || n < 0 {
		return DefaultPricePerSquare
	}
	return n
}

// Payout is the dollar amount of one bucket, rounded to cents.
func Payout(totalPot, percent int) float64 {
	return math.Round(float64(totalPot)*float64(percent)) / 100
}

// Payouts expands the distribution over a pot.
type Payouts struct {
	Q1    float64 `json:"q1"`
	Q2    float64 `json:"q2"`
	Q3    float64 `json:"q3"`
	Final float64 `json:"final"`
}

func (p *Pool) Payouts() Payouts {
	pot := p.Stats().TotalPot
	d := p.PrizeDistribution
	return Payouts{
		Q1:    Payout(pot, d.Q1),
		Q2:    Payout(pot, d.Q2),
		Q3:    Payout(pot, d.Q3),
		Final: Payout(pot, d.Final),
	}
}
