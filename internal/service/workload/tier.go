package workload

import (
	"errors"
	"fmt"
	"math"
)

// Tier validation errors.
var (
	ErrEmptyTierTable = errors.New("tier table is empty")
	ErrTierNegative   = errors.New("tier table starts below zero")
	ErrTierOrder      = errors.New("tier high bound must exceed its low bound")
	ErrTierGap        = errors.New("tiers are not contiguous")
	ErrTierUnbounded  = errors.New("last tier must be open ended")
)

// Tier is the half-open range (Low, High] mapped to a color label.
type Tier struct {
	Low   float64
	High  float64
	Label string
}

// TierTable is an ascending list of contiguous tiers and the label used for
// totals that reach none of them.
type TierTable struct {
	Tiers    []Tier
	Baseline string
}

// BaselineColor marks buckets without hours.
const BaselineColor = "#e0e0e0"

// MonthlyTiers colors the total of a single month.
var MonthlyTiers = TierTable{
	Baseline: BaselineColor,
	Tiers: []Tier{
		{Low: 0, High: 30, Label: "#c8e6c9"},
		{Low: 30, High: 60, Label: "#81c784"},
		{Low: 60, High: 90, Label: "#fff176"},
		{Low: 90, High: 120, Label: "#ffb74d"},
		{Low: 120, High: 180, Label: "#f57c00"},
		{Low: 180, High: math.Inf(1), Label: "#c62828"},
	},
}

// AnnualTiers colors month totals on the yearly chart.
var AnnualTiers = TierTable{
	Baseline: BaselineColor,
	Tiers: []Tier{
		{Low: 0, High: 150, Label: "#c8e6c9"},
		{Low: 150, High: 300, Label: "#fff176"},
		{Low: 300, High: 450, Label: "#ffb74d"},
		{Low: 450, High: 600, Label: "#f57c00"},
		{Low: 600, High: math.Inf(1), Label: "#c62828"},
	},
}

// Classify returns the label of the first tier with Low < total <= High.
func Classify(total float64, table TierTable) string {
	if math.IsNaN(total) || total == 0 || len(table.Tiers) == 0 || total <= table.Tiers[0].Low {
		return table.Baseline
	}
	for _, tier := range table.Tiers {
		if total > tier.Low && total <= tier.High {
			return tier.Label
		}
	}
	return table.Baseline
}

// ValidateTiers checks that the table is ascending, contiguous and open ended.
func ValidateTiers(table TierTable) error {
	if len(table.Tiers) == 0 {
		return ErrEmptyTierTable
	}
	if table.Tiers[0].Low < 0 {
		return ErrTierNegative
	}
	for i, tier := range table.Tiers {
		if !(tier.High > tier.Low) {
			return fmt.Errorf("tier %d (%s): %w", i, tier.Label, ErrTierOrder)
		}
		if i > 0 && tier.Low != table.Tiers[i-1].High {
			return fmt.Errorf("tier %d (%s): %w", i, tier.Label, ErrTierGap)
		}
	}
	if last := table.Tiers[len(table.Tiers)-1]; !math.IsInf(last.High, 1) {
		return ErrTierUnbounded
	}
	return nil
}
