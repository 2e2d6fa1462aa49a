package expiration

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stocklot/backend/internal/domain/fifoconfig"
	"github.com/stocklot/backend/internal/domain/lot"
)

// Urgency classifies how pressing a lot's expiration risk is. The wire
// values match the historical reporting vocabulary and must not change.
type Urgency string

const (
	UrgencyCritical Urgency = "critique"
	UrgencyHigh     Urgency = "eleve"
	UrgencyMedium   Urgency = "moyen"
	UrgencyLow      Urgency = "faible"
)

// String returns the string representation of Urgency
func (u Urgency) String() string {
	return string(u)
}

// Rank returns a sortable rank, higher is more urgent
func (u Urgency) Rank() int {
	switch u {
	case UrgencyCritical:
		return 3
	case UrgencyHigh:
		return 2
	case UrgencyMedium:
		return 1
	}
	return 0
}

// Recommended action codes, keyed by urgency in recommendedActions.
const (
	ActionImmediatePromotion = "promotion_immediate"
	ActionPlanDestruction    = "destruction_planifiee"
	ActionPromotion          = "promotion"
	ActionPrioritizeSale     = "vente_prioritaire"
	ActionWatchClosely       = "surveillance_renforcee"
)

var recommendedActions = map[Urgency][]string{
	UrgencyCritical: {ActionImmediatePromotion, ActionPlanDestruction},
	UrgencyHigh:     {ActionPromotion, ActionPrioritizeSale},
	UrgencyMedium:   {ActionWatchClosely},
	UrgencyLow:      {},
}

// RiskAssessment is the outcome of evaluating one lot against the
// applicable urgency thresholds.
type RiskAssessment struct {
	LotID              uuid.UUID
	ProductID          uuid.UUID
	HasExpiry          bool
	DaysRemaining      int
	Urgency            Urgency
	RemainingQuantity  decimal.Decimal
	EstimatedLoss      decimal.Decimal
	RecommendedActions []string
}

// ClassifyUrgency maps signed days remaining onto an urgency level.
// Boundaries are inclusive: exactly CriticalDays remaining is already
// critical, exactly AlertDays is high, exactly WarningDays is medium.
func ClassifyUrgency(daysRemaining int, t fifoconfig.Thresholds) Urgency {
	switch {
	case daysRemaining <= t.CriticalDays:
		return UrgencyCritical
	case daysRemaining <= t.AlertDays:
		return UrgencyHigh
	case daysRemaining <= t.WarningDays:
		return UrgencyMedium
	}
	return UrgencyLow
}

// AssessRisk evaluates a lot's expiration exposure. avgDailyConsumption is
// the product's recent average daily outflow; unitValue is the value of one
// unit (purchase price when known). The estimated loss is the value of the
// stock that cannot be sold before expiry: everything once the lot is
// expired, the unsellable excess when consumption is too slow, and the full
// remaining value when the product does not move at all.
func AssessRisk(l *lot.Lot, thresholds fifoconfig.Thresholds, avgDailyConsumption, unitValue decimal.Decimal, asOf time.Time) RiskAssessment {
	assessment := RiskAssessment{
		LotID:             l.ID,
		ProductID:         l.ProductID,
		RemainingQuantity: l.RemainingQuantity,
		Urgency:           UrgencyLow,
		EstimatedLoss:     decimal.Zero,
	}

	days, ok := l.DaysUntilExpiry(asOf)
	if !ok {
		assessment.RecommendedActions = recommendedActions[UrgencyLow]
		return assessment
	}

	assessment.HasExpiry = true
	assessment.DaysRemaining = days
	assessment.Urgency = ClassifyUrgency(days, thresholds)
	assessment.RecommendedActions = recommendedActions[assessment.Urgency]
	assessment.EstimatedLoss = estimateLoss(l.RemainingQuantity, avgDailyConsumption, unitValue, days)

	return assessment
}

func estimateLoss(remaining, avgDailyConsumption, unitValue decimal.Decimal, daysRemaining int) decimal.Decimal {
	if remaining.LessThanOrEqual(decimal.Zero) || unitValue.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	if daysRemaining <= 0 {
		return remaining.Mul(unitValue)
	}
	if avgDailyConsumption.LessThanOrEqual(decimal.Zero) {
		return remaining.Mul(unitValue)
	}

	sellable := avgDailyConsumption.Mul(decimal.NewFromInt(int64(daysRemaining)))
	if sellable.GreaterThanOrEqual(remaining) {
		return decimal.Zero
	}
	return remaining.Sub(sellable).Mul(unitValue)
}
