package analytics

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stocklot/backend/internal/domain/expiration"
	"github.com/stocklot/backend/internal/domain/fifoconfig"
	"github.com/stocklot/backend/internal/domain/lot"
)

// SuggestionType names the corrective action a suggestion proposes
type SuggestionType string

const (
	SuggestionPromotion  SuggestionType = "PROMOTION"
	SuggestionReorder    SuggestionType = "REORDER"
	SuggestionTransfer   SuggestionType = "TRANSFER"
	SuggestionAdjustment SuggestionType = "ADJUSTMENT"
)

// SuggestionPriority orders suggestions for display
type SuggestionPriority string

const (
	PriorityHigh   SuggestionPriority = "HIGH"
	PriorityMedium SuggestionPriority = "MEDIUM"
	PriorityLow    SuggestionPriority = "LOW"
)

// Suggestion is one advisory optimization. Suggestions are never applied
// automatically here; auto_action execution is the caller's decision.
type Suggestion struct {
	Type            SuggestionType
	Priority        SuggestionPriority
	ProductID       uuid.UUID
	LotID           uuid.UUID
	ExpectedBenefit decimal.Decimal
	Description     string
}

// ProductSnapshot bundles the read-only inputs the advisor rules consume
// for one product.
type ProductSnapshot struct {
	ProductID           uuid.UUID
	Lots                []*lot.Lot
	AvgDailyConsumption decimal.Decimal
	Thresholds          fifoconfig.Thresholds
	Compliance          []fifoconfig.ComplianceResult
	LowStockThreshold   decimal.Decimal
}

// SuggestOptimizations runs every advisor rule over the snapshot. The
// rules are independent: each one contributes its suggestions regardless
// of what the others found.
func SuggestOptimizations(s ProductSnapshot, asOf time.Time) []Suggestion {
	var suggestions []Suggestion
	suggestions = append(suggestions, expirationRule(s, asOf)...)
	suggestions = append(suggestions, fifoViolationRule(s)...)
	suggestions = append(suggestions, lowStockRule(s, asOf)...)
	return suggestions
}

// expirationRule flags lots under critical or high expiry pressure: stock
// that can still be sold gets a promotion, stock already past its date
// gets a write-off adjustment. The expected benefit is the loss avoided
// (or recognized) on the remaining quantity.
func expirationRule(s ProductSnapshot, asOf time.Time) []Suggestion {
	var out []Suggestion
	for _, l := range s.Lots {
		if !l.HasStock() {
			continue
		}
		unitValue := decimal.Zero
		if l.UnitPurchasePrice != nil {
			unitValue = *l.UnitPurchasePrice
		}
		assessment := expiration.AssessRisk(l, s.Thresholds, s.AvgDailyConsumption, unitValue, asOf)
		if !assessment.HasExpiry {
			continue
		}

		switch {
		case assessment.DaysRemaining <= 0:
			out = append(out, Suggestion{
				Type:            SuggestionAdjustment,
				Priority:        PriorityHigh,
				ProductID:       l.ProductID,
				LotID:           l.ID,
				ExpectedBenefit: assessment.EstimatedLoss,
				Description:     fmt.Sprintf("Lot %s is expired; write the remaining stock off", l.LotNumber),
			})
		case assessment.Urgency == expiration.UrgencyCritical:
			out = append(out, Suggestion{
				Type:            SuggestionPromotion,
				Priority:        PriorityHigh,
				ProductID:       l.ProductID,
				LotID:           l.ID,
				ExpectedBenefit: assessment.EstimatedLoss,
				Description:     fmt.Sprintf("Lot %s expires in %d days; discount to move it", l.LotNumber, assessment.DaysRemaining),
			})
		case assessment.Urgency == expiration.UrgencyHigh:
			out = append(out, Suggestion{
				Type:            SuggestionPromotion,
				Priority:        PriorityMedium,
				ProductID:       l.ProductID,
				LotID:           l.ID,
				ExpectedBenefit: assessment.EstimatedLoss,
				Description:     fmt.Sprintf("Lot %s expires in %d days; prioritize its sale", l.LotNumber, assessment.DaysRemaining),
			})
		}
	}
	return out
}

// fifoViolationRule surfaces recent depletion-order violations and
// proposes moving the skipped lot to the front of picking so it drains
// before it ages further.
func fifoViolationRule(s ProductSnapshot) []Suggestion {
	var out []Suggestion
	for _, result := range s.Compliance {
		if result.Compliant {
			continue
		}
		out = append(out, Suggestion{
			Type:        SuggestionTransfer,
			Priority:    PriorityMedium,
			ProductID:   s.ProductID,
			LotID:       result.RecommendedLotID,
			Description: fmt.Sprintf("Depletion skipped lot %s; move it to the front of picking", result.RecommendedLotNo),
		})
	}
	return out
}

// lowStockRule warns when the product's total remaining drops to the
// configured floor, with the projected stockout date when the product
// moves.
func lowStockRule(s ProductSnapshot, asOf time.Time) []Suggestion {
	if s.LowStockThreshold.LessThanOrEqual(decimal.Zero) {
		return nil
	}

	total := decimal.Zero
	var best *lot.Lot
	for _, l := range s.Lots {
		total = total.Add(l.RemainingQuantity)
		if best == nil || l.RemainingQuantity.GreaterThan(best.RemainingQuantity) {
			best = l
		}
	}
	if total.GreaterThan(s.LowStockThreshold) || best == nil {
		return nil
	}

	description := "Total remaining stock is at the reorder floor"
	if stockout := PredictedStockoutDate(best, s.AvgDailyConsumption, asOf); stockout != nil {
		description = fmt.Sprintf("Stockout projected around %s; reorder", stockout.Format("2006-01-02"))
	}

	return []Suggestion{{
		Type:        SuggestionReorder,
		Priority:    PriorityHigh,
		ProductID:   s.ProductID,
		Description: description,
	}}
}
