package workload

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/rpmontada/equinos/internal/domain/models"
)

const (
	// DefaultTopN is the number of highlighted horses per bucket.
	DefaultTopN = 3

	// NoHighlights is returned by TopN when the bucket carries no hours.
	NoHighlights = "Sem destaques"
)

// PerHorse accumulates hours per horse id, remembering first appearance.
type PerHorse struct {
	order []string
	hours map[string]decimal.Decimal
}

// NewPerHorse returns an empty accumulator.
func NewPerHorse() *PerHorse {
	return &PerHorse{hours: make(map[string]decimal.Decimal)}
}

// Add credits hours to a horse; repeated ids add up.
func (p *PerHorse) Add(horseID string, hours decimal.Decimal) {
	current, seen := p.hours[horseID]
	if !seen {
		p.order = append(p.order, horseID)
	}
	p.hours[horseID] = current.Add(hours)
}

// IDs returns horse ids in order of first appearance.
func (p *PerHorse) IDs() []string {
	out := make([]string, len(p.order))
	copy(out, p.order)
	return out
}

// Hours returns the accumulated hours of a horse.
func (p *PerHorse) Hours(horseID string) float64 {
	return p.hours[horseID].InexactFloat64()
}

// Len is the number of distinct horses.
func (p *PerHorse) Len() int { return len(p.order) }

// Sum adds every horse's subtotal.
func (p *PerHorse) Sum() float64 {
	total := decimal.Zero
	for _, id := range p.order {
		total = total.Add(p.hours[id])
	}
	return total.InexactFloat64()
}

// Totals is the aggregation of one bucket.
type Totals struct {
	Total    float64
	PerHorse *PerHorse
}

// Aggregate sums coerced work hours of the bucket overall and per horse.
func Aggregate(records []models.ScheduleRecord) Totals {
	total := decimal.Zero
	perHorse := NewPerHorse()

	for _, record := range records {
		hours := decimal.NewFromFloat(float64(record.WorkHours.Coerce()))
		total = total.Add(hours)
		perHorse.Add(string(record.HorseID), hours)
	}

	return Totals{Total: total.InexactFloat64(), PerHorse: perHorse}
}

// TopN ranks the horses by descending hours and formats the first n as
// "name — Hh". Ties keep first-appearance order and horses without hours are
// not ranked. A non-positive n means DefaultTopN.
func TopN(perHorse *PerHorse, lookup models.HorseLookup, n int) []string {
	if n <= 0 {
		n = DefaultTopN
	}
	if perHorse == nil || perHorse.Sum() == 0 {
		return []string{NoHighlights}
	}

	type entry struct {
		id    string
		hours decimal.Decimal
	}

	entries := make([]entry, 0, perHorse.Len())
	for _, id := range perHorse.order {
		hours := perHorse.hours[id]
		if hours.IsPositive() {
			entries = append(entries, entry{id: id, hours: hours})
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].hours.GreaterThan(entries[j].hours)
	})

	if len(entries) > n {
		entries = entries[:n]
	}

	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, fmt.Sprintf("%s — %sh", lookup.Name(e.id), e.hours.Round(2).String()))
	}
	return out
}

// Breakdown lists each horse's hours in first-appearance order.
func Breakdown(perHorse *PerHorse, lookup models.HorseLookup) []models.HorseHours {
	if perHorse == nil {
		return nil
	}
	out := make([]models.HorseHours, 0, perHorse.Len())
	for _, id := range perHorse.order {
		out = append(out, models.HorseHours{
			HorseID: id,
			Name:    lookup.Name(id),
			Hours:   perHorse.Hours(id),
		})
	}
	return out
}
