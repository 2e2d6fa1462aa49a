package expiration

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stocklot/backend/internal/domain/analytics"
	"github.com/stocklot/backend/internal/domain/expiration"
	"github.com/stocklot/backend/internal/domain/fifoconfig"
	"github.com/stocklot/backend/internal/domain/lot"
	"github.com/stocklot/backend/internal/domain/lot/acl"
	"github.com/stocklot/backend/internal/domain/shared"
)

// AlertService runs the expiration sweep and manages alert lifecycle
type AlertService struct {
	alertRepo        expiration.Repository
	lotRepo          lot.Repository
	configRepo       fifoconfig.Repository
	productDirectory acl.ProductDirectory
	eventPublisher   shared.EventPublisher
}

// NewAlertService creates a new AlertService
func NewAlertService(
	alertRepo expiration.Repository,
	lotRepo lot.Repository,
	configRepo fifoconfig.Repository,
) *AlertService {
	return &AlertService{
		alertRepo:  alertRepo,
		lotRepo:    lotRepo,
		configRepo: configRepo,
	}
}

// SetProductDirectory sets the catalog directory used for family-scoped
// threshold resolution
func (s *AlertService) SetProductDirectory(directory acl.ProductDirectory) {
	s.productDirectory = directory
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *AlertService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *AlertService) publishDomainEvents(ctx context.Context, a *expiration.Alert) {
	if s.eventPublisher == nil {
		return
	}
	events := a.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	a.ClearDomainEvents()
}

// thresholdsFor resolves the urgency thresholds governing a product,
// falling back to the defaults when no configuration applies
func (s *AlertService) thresholdsFor(ctx context.Context, tenantID, productID uuid.UUID) fifoconfig.Thresholds {
	familyID := uuid.Nil
	if s.productDirectory != nil {
		if ref, err := s.productDirectory.GetProductReference(ctx, tenantID, productID); err == nil {
			familyID = ref.FamilyID()
		}
	}

	candidates, err := s.configRepo.FindCandidates(ctx, tenantID, productID, familyID)
	if err != nil {
		return fifoconfig.DefaultThresholds()
	}
	config, err := fifoconfig.ResolveConfig(candidates, productID, familyID)
	if err != nil {
		return fifoconfig.DefaultThresholds()
	}
	return config.Thresholds
}

// unitValueOf values one unit at the purchase price when known
func unitValueOf(l *lot.Lot) decimal.Decimal {
	if l.UnitPurchasePrice == nil {
		return decimal.Zero
	}
	return *l.UnitPurchasePrice
}

// GenerateAlerts sweeps every lot with an expiration date and remaining
// stock. The sweep is idempotent: while an active alert still covers the
// lot's state nothing new is raised, and handled alerts are only
// superseded after the lot's remaining or expiration materially changed.
func (s *AlertService) GenerateAlerts(ctx context.Context, tenantID uuid.UUID) (*SweepResponse, error) {
	lots, err := s.lotRepo.FindWithExpiration(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	result := &SweepResponse{LotsExamined: len(lots)}

	for i := range lots {
		l := &lots[i]
		if l.RefreshStatus(now) {
			if err := s.lotRepo.Save(ctx, l); err != nil {
				return nil, err
			}
		}

		thresholds := s.thresholdsFor(ctx, tenantID, l.ProductID)
		value := unitValueOf(l)
		assessment := expiration.AssessRisk(l, thresholds, analytics.AvgDailyConsumption(l, now), value, now)
		if !assessment.HasExpiry || assessment.Urgency == expiration.UrgencyLow {
			result.Unchanged++
			continue
		}

		history, err := s.alertRepo.FindByLot(ctx, tenantID, l.ID)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}

		switch action := sweepAction(history, l); action {
		case sweepSkip:
			result.Unchanged++
		case sweepRefresh:
			active := activeAlert(history)
			if active.Refresh(assessment) {
				if err := s.alertRepo.Save(ctx, active); err != nil {
					return nil, err
				}
				result.Refreshed++
			} else {
				result.Unchanged++
			}
		case sweepCreate:
			alert, err := expiration.NewAlert(l, assessment)
			if err != nil {
				return nil, err
			}
			if err := s.alertRepo.Save(ctx, alert); err != nil {
				return nil, err
			}
			s.publishDomainEvents(ctx, alert)
			result.Created++
		}
	}

	return result, nil
}

type sweepDecision int

const (
	sweepCreate sweepDecision = iota
	sweepRefresh
	sweepSkip
)

// sweepAction decides what the sweep does for one lot given its alert
// history: refresh the open alert, skip because a handled alert still
// covers the unchanged state, or raise a new one.
func sweepAction(history []*expiration.Alert, l *lot.Lot) sweepDecision {
	if active := activeAlert(history); active != nil {
		if active.CoversLotState(l) {
			return sweepSkip
		}
		return sweepRefresh
	}
	for _, a := range history {
		if a.Status.IsTerminal() && a.CoversLotState(l) {
			return sweepSkip
		}
	}
	return sweepCreate
}

func activeAlert(history []*expiration.Alert) *expiration.Alert {
	for _, a := range history {
		if a.Status == expiration.AlertStatusActive {
			return a
		}
	}
	return nil
}

// UpdateAlertStatus moves an active alert to TREATED or IGNORED
func (s *AlertService) UpdateAlertStatus(ctx context.Context, tenantID, alertID, agentID uuid.UUID, req UpdateAlertStatusRequest) (*AlertResponse, error) {
	alert, err := s.alertRepo.FindByID(ctx, alertID)
	if err != nil {
		return nil, err
	}
	if alert.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}

	now := time.Now()
	switch expiration.AlertStatus(req.Status) {
	case expiration.AlertStatusTreated:
		err = alert.MarkTreated(agentID, now)
	case expiration.AlertStatusIgnored:
		err = alert.MarkIgnored(agentID, now)
	default:
		err = shared.ErrInvalidInput
	}
	if err != nil {
		return nil, err
	}

	if err := s.alertRepo.Save(ctx, alert); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, alert)

	response := ToAlertResponse(alert)
	return &response, nil
}

// ListAlerts lists a tenant's alerts, optionally filtered by status
func (s *AlertService) ListAlerts(ctx context.Context, tenantID uuid.UUID, filter ListAlertsFilter) ([]AlertResponse, error) {
	var (
		alerts []*expiration.Alert
		err    error
	)
	if filter.Status == "" {
		alerts, err = s.alertRepo.FindActiveForTenant(ctx, tenantID)
	} else {
		alerts, err = s.alertRepo.FindByStatus(ctx, tenantID, expiration.AlertStatus(filter.Status))
	}
	if err != nil {
		return nil, err
	}
	return ToAlertResponses(alerts), nil
}

// AssessLot returns the current risk assessment of one lot without
// touching the alert store
func (s *AlertService) AssessLot(ctx context.Context, tenantID, lotID uuid.UUID) (*RiskResponse, error) {
	l, err := s.lotRepo.FindByIDForTenant(ctx, tenantID, lotID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	thresholds := s.thresholdsFor(ctx, tenantID, l.ProductID)
	assessment := expiration.AssessRisk(l, thresholds, analytics.AvgDailyConsumption(l, now), unitValueOf(l), now)

	response := ToRiskResponse(assessment)
	return &response, nil
}
