package analytics

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/stocklot/backend/internal/domain/lot"
)

// RotationBand classifies annualized lot rotation
type RotationBand string

const (
	RotationFast   RotationBand = "FAST"
	RotationMedium RotationBand = "MEDIUM"
	RotationSlow   RotationBand = "SLOW"
)

var (
	fastRotationFloor   = decimal.NewFromInt(12)
	mediumRotationFloor = decimal.NewFromInt(6)
	daysPerYear         = decimal.NewFromInt(365)
	hundred             = decimal.NewFromInt(100)
)

// RotationRate returns the annualized turnover of a lot: the consumption
// observed since reception, extrapolated to a year and divided by the lot
// size. A lot sold out within a month rates above 12.
func RotationRate(l *lot.Lot, asOf time.Time) decimal.Decimal {
	if l.InitialQuantity.IsZero() {
		return decimal.Zero
	}
	days := decimal.NewFromInt(int64(l.DaysInStock(asOf)))
	annualized := l.ConsumedQuantity().Div(days).Mul(daysPerYear)
	return annualized.Div(l.InitialQuantity).Round(4)
}

// ClassifyRotation maps a rotation rate onto its band
func ClassifyRotation(rate decimal.Decimal) RotationBand {
	switch {
	case rate.GreaterThanOrEqual(fastRotationFloor):
		return RotationFast
	case rate.GreaterThanOrEqual(mediumRotationFloor):
		return RotationMedium
	}
	return RotationSlow
}

// AvgDailyConsumption returns the mean daily outflow of a lot since
// reception
func AvgDailyConsumption(l *lot.Lot, asOf time.Time) decimal.Decimal {
	days := decimal.NewFromInt(int64(l.DaysInStock(asOf)))
	return l.ConsumedQuantity().Div(days).Round(4)
}

// PredictedStockoutDate projects when the lot runs out at the given daily
// consumption. Returns nil when the product does not move or the lot is
// already empty.
func PredictedStockoutDate(l *lot.Lot, avgDailyConsumption decimal.Decimal, asOf time.Time) *time.Time {
	if avgDailyConsumption.LessThanOrEqual(decimal.Zero) || !l.HasStock() {
		return nil
	}

	days := l.RemainingQuantity.Div(avgDailyConsumption).Ceil().IntPart()
	at := asOf.AddDate(0, 0, int(days))
	return &at
}

// CarryingCost values the cost of having held the remaining stock since
// reception, at an annual carrying rate expressed in percent.
func CarryingCost(l *lot.Lot, annualRatePercent decimal.Decimal, asOf time.Time) decimal.Decimal {
	value := l.StockValue()
	if value.IsZero() || annualRatePercent.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	days := decimal.NewFromInt(int64(l.DaysInStock(asOf)))
	return value.Mul(annualRatePercent).Div(hundred).Mul(days).Div(daysPerYear).Round(4)
}

// SalePriorityScore ranks how urgently a lot should be pushed out, on a
// [0, 100] scale. Three pressures compose the score: expiry (few days
// left), coverage (the observed consumption cannot drain the remaining
// quantity before expiry) and depletion order (the lot is next in line).
// fifoPosition is the lot's zero-based rank among candidateCount depletion
// candidates; pass a negative position for a lot that is not a candidate.
func SalePriorityScore(l *lot.Lot, dailyConsumption decimal.Decimal, fifoPosition, candidateCount int, asOf time.Time) decimal.Decimal {
	score := expiryPressure(l, asOf).Mul(decimal.NewFromFloat(0.4)).
		Add(coveragePressure(l, dailyConsumption, asOf).Mul(decimal.NewFromFloat(0.3))).
		Add(positionPressure(fifoPosition, candidateCount).Mul(decimal.NewFromFloat(0.3))).
		Round(2)

	switch {
	case score.GreaterThan(hundred):
		return hundred
	case score.IsNegative():
		return decimal.Zero
	}
	return score
}

// expiryPressure peaks for expired lots and fades linearly to zero at 100
// days out. Lots without an expiration date score on stagnation instead,
// so old untouched stock still surfaces.
func expiryPressure(l *lot.Lot, asOf time.Time) decimal.Decimal {
	days, ok := l.DaysUntilExpiry(asOf)
	if !ok {
		return hundred.Sub(l.UsagePercent())
	}
	switch {
	case days <= 0:
		return hundred
	case days >= 100:
		return decimal.Zero
	}
	return hundred.Sub(decimal.NewFromInt(int64(days)))
}

// coveragePressure compares the sell-through time (remaining divided by
// daily consumption) against the days left before expiry. Stock that
// cannot be drained in time scores full pressure; without an expiration
// date the sell-through is normalized against a one-year horizon.
func coveragePressure(l *lot.Lot, dailyConsumption decimal.Decimal, asOf time.Time) decimal.Decimal {
	if !l.HasStock() {
		return decimal.Zero
	}
	if dailyConsumption.LessThanOrEqual(decimal.Zero) {
		return hundred
	}
	sellThroughDays := l.RemainingQuantity.Div(dailyConsumption)

	horizon := daysPerYear
	if days, ok := l.DaysUntilExpiry(asOf); ok {
		if days <= 0 {
			return hundred
		}
		horizon = decimal.NewFromInt(int64(days))
	}
	if sellThroughDays.GreaterThanOrEqual(horizon) {
		return hundred
	}
	return sellThroughDays.Div(horizon).Mul(hundred)
}

// positionPressure grants the front of the depletion order full pressure
// and decays linearly down the ranking. Non-candidates score zero.
func positionPressure(fifoPosition, candidateCount int) decimal.Decimal {
	if fifoPosition < 0 || candidateCount <= 0 || fifoPosition >= candidateCount {
		return decimal.Zero
	}
	if candidateCount == 1 {
		return hundred
	}
	spread := decimal.NewFromInt(int64(candidateCount - 1))
	rank := decimal.NewFromInt(int64(candidateCount - 1 - fifoPosition))
	return rank.Div(spread).Mul(hundred)
}
