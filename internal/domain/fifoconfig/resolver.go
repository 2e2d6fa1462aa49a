package fifoconfig

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stocklot/backend/internal/domain/lot"
	"github.com/stocklot/backend/internal/domain/shared"
)

// ResolveConfig selects the configuration governing a product from the
// tenant's active configurations. Product scope beats family scope beats
// global; within the winning scope level the numerically highest priority
// wins, and a remaining tie goes to the most recently created rule.
// Inactive configurations never participate.
func ResolveConfig(configs []*Configuration, productID, familyID uuid.UUID) (*Configuration, error) {
	var winner *Configuration
	for _, c := range configs {
		if c == nil || !c.Active {
			continue
		}
		if !c.Scope().AppliesTo(productID, familyID) {
			continue
		}
		if winner == nil || beats(c, winner) {
			winner = c
		}
	}
	if winner == nil {
		return nil, shared.ErrNoConfiguration
	}
	return winner, nil
}

func beats(a, b *Configuration) bool {
	pa, pb := a.Scope().Kind.precedence(), b.Scope().Kind.precedence()
	if pa != pb {
		return pa < pb
	}
	if a.Priority != b.Priority {
		return a.Priority > b.Priority
	}
	return a.CreatedAt.After(b.CreatedAt)
}

// RankLots orders a product's lots in depletion order under the given
// configuration. Expired and depleted lots are excluded as candidates
// (expired ones only when the configuration says to ignore them).
//
// Default ordering is reception date ascending. Lots whose reception dates
// fall within ToleranceDays of the front-runner form a tied group, broken
// by earliest expiration (lots without one last), then lowest remaining
// quantity, so near-simultaneous receptions drain the most at-risk lot
// first. With PricePriority the primary key is the unit purchase price
// ascending and no tolerance grouping applies.
//
// The input slice is not modified. Callers must refresh lot statuses
// before ranking; RankLots does not mutate lots.
func RankLots(cfg *Configuration, lots []*lot.Lot, asOf time.Time) []*lot.Lot {
	candidates := make([]*lot.Lot, 0, len(lots))
	for _, l := range lots {
		if l == nil || !l.HasStock() {
			continue
		}
		if cfg.IgnoreExpiredLots && (l.Status == lot.LotStatusExpired || l.IsExpired(asOf)) {
			continue
		}
		candidates = append(candidates, l)
	}
	if len(candidates) == 0 {
		return candidates
	}

	if cfg.PricePriority {
		sort.SliceStable(candidates, func(i, j int) bool {
			return lessByPrice(candidates[i], candidates[j])
		})
		return candidates
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return lessByReception(candidates[i], candidates[j])
	})

	if cfg.ToleranceDays > 0 {
		regroupTied(candidates, cfg.ToleranceDays)
	}

	return candidates
}

// NextLotToSell returns the lot that should be depleted next, or nil when
// no candidate remains.
func NextLotToSell(cfg *Configuration, lots []*lot.Lot, asOf time.Time) *lot.Lot {
	ranked := RankLots(cfg, lots, asOf)
	if len(ranked) == 0 {
		return nil
	}
	return ranked[0]
}

// regroupTied reorders each run of lots whose reception dates fall within
// toleranceDays of the run's head. Within a tied group the earliest
// expiration wins, then the lowest remaining quantity.
func regroupTied(candidates []*lot.Lot, toleranceDays int) {
	window := time.Duration(toleranceDays) * 24 * time.Hour
	for start := 0; start < len(candidates); {
		head := candidates[start].ReceptionDate
		end := start + 1
		for end < len(candidates) && candidates[end].ReceptionDate.Sub(head) <= window {
			end++
		}
		group := candidates[start:end]
		sort.SliceStable(group, func(i, j int) bool {
			return lessWithinGroup(group[i], group[j])
		})
		start = end
	}
}

func lessByReception(a, b *lot.Lot) bool {
	if !a.ReceptionDate.Equal(b.ReceptionDate) {
		return a.ReceptionDate.Before(b.ReceptionDate)
	}
	return lessWithinGroup(a, b)
}

func lessWithinGroup(a, b *lot.Lot) bool {
	ae, be := a.ExpirationDate, b.ExpirationDate
	switch {
	case ae != nil && be != nil && !ae.Equal(*be):
		return ae.Before(*be)
	case ae != nil && be == nil:
		return true
	case ae == nil && be != nil:
		return false
	}
	if !a.RemainingQuantity.Equal(b.RemainingQuantity) {
		return a.RemainingQuantity.LessThan(b.RemainingQuantity)
	}
	if !a.ReceptionDate.Equal(b.ReceptionDate) {
		return a.ReceptionDate.Before(b.ReceptionDate)
	}
	return a.LotNumber < b.LotNumber
}

func lessByPrice(a, b *lot.Lot) bool {
	ap, bp := purchasePrice(a), purchasePrice(b)
	if !ap.Equal(bp) {
		return ap.LessThan(bp)
	}
	return lessByReception(a, b)
}

func purchasePrice(l *lot.Lot) decimal.Decimal {
	if l.UnitPurchasePrice == nil {
		// Lots with an unknown cost sort after any priced lot.
		return decimal.NewFromInt(1 << 40)
	}
	return *l.UnitPurchasePrice
}

// ComplianceResult reports whether a depletion followed the recommended
// order. Violations are advisory; they never block the movement.
type ComplianceResult struct {
	Compliant        bool
	DepletedLotID    uuid.UUID
	RecommendedLotID uuid.UUID
	RecommendedLotNo string
}

// CheckCompliance compares a depleted lot against the recommended next lot
// under the given configuration. The depleted lot itself is evaluated as it
// was before the exit, so callers should pass the candidate set used at
// decision time.
func CheckCompliance(cfg *Configuration, lots []*lot.Lot, depletedLotID uuid.UUID, asOf time.Time) ComplianceResult {
	next := NextLotToSell(cfg, lots, asOf)
	if next == nil || next.ID == depletedLotID {
		return ComplianceResult{Compliant: true, DepletedLotID: depletedLotID}
	}
	return ComplianceResult{
		Compliant:        false,
		DepletedLotID:    depletedLotID,
		RecommendedLotID: next.ID,
		RecommendedLotNo: next.LotNumber,
	}
}
