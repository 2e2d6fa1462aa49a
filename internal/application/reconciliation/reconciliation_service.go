package reconciliation

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	lotapp "github.com/stocklot/backend/internal/application/lot"
	"github.com/stocklot/backend/internal/domain/lot"
	"github.com/stocklot/backend/internal/domain/lot/acl"
	"github.com/stocklot/backend/internal/domain/reconciliation"
	"github.com/stocklot/backend/internal/domain/shared"
)

// maxConflictRetries bounds the optimistic-lock retry loop on sessions
const maxConflictRetries = 3

// Service drives the reconciliation workflow: opening sessions over a
// snapshot of the ledger, collecting physical counts, and booking the
// resulting adjustments atomically on completion.
type Service struct {
	txScope        lotapp.TransactionScope
	sessionRepo    reconciliation.Repository
	lotRepo        lot.Repository
	auditRepo      reconciliation.AuditRepository
	agentDirectory acl.AgentDirectory
	eventPublisher shared.EventPublisher
}

// NewService creates a new reconciliation service
func NewService(
	txScope lotapp.TransactionScope,
	sessionRepo reconciliation.Repository,
	lotRepo lot.Repository,
	auditRepo reconciliation.AuditRepository,
) *Service {
	return &Service{
		txScope:     txScope,
		sessionRepo: sessionRepo,
		lotRepo:     lotRepo,
		auditRepo:   auditRepo,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetAgentDirectory sets the identity directory used to attribute audit
// records to a display name
func (s *Service) SetAgentDirectory(directory acl.AgentDirectory) {
	s.agentDirectory = directory
}

func (s *Service) publishDomainEvents(ctx context.Context, aggregates ...shared.AggregateRoot) {
	if s.eventPublisher == nil {
		return
	}
	for _, a := range aggregates {
		events := a.GetDomainEvents()
		if len(events) == 0 {
			continue
		}
		_ = s.eventPublisher.Publish(ctx, events...)
		a.ClearDomainEvents()
	}
}

// StartSession opens a session over the given lots, snapshotting their
// current remaining quantities as the theoretical state. The session is
// immune to ledger movements that happen while the count is running.
func (s *Service) StartSession(ctx context.Context, tenantID, agentID uuid.UUID, req StartSessionRequest) (*SessionResponse, error) {
	lots := make([]*lot.Lot, 0, len(req.LotIDs))
	for _, lotID := range req.LotIDs {
		l, err := s.lotRepo.FindByIDForTenant(ctx, tenantID, lotID)
		if err != nil {
			return nil, err
		}
		lots = append(lots, l)
	}

	session, err := reconciliation.NewSession(tenantID, agentID, req.Label, lots, time.Now())
	if err != nil {
		return nil, err
	}

	if err := s.sessionRepo.Save(ctx, session); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, session)

	response := ToSessionResponse(session)
	return &response, nil
}

// GetSession retrieves one session of a tenant with its lines
func (s *Service) GetSession(ctx context.Context, tenantID, sessionID uuid.UUID) (*SessionResponse, error) {
	session, err := s.sessionRepo.FindByIDForTenant(ctx, tenantID, sessionID)
	if err != nil {
		return nil, err
	}
	response := ToSessionResponse(session)
	return &response, nil
}

// ListSessions lists a tenant's sessions, newest first
func (s *Service) ListSessions(ctx context.Context, tenantID uuid.UUID, limit int) ([]SessionResponse, error) {
	sessions, err := s.sessionRepo.FindAllForTenant(ctx, tenantID, limit)
	if err != nil {
		return nil, err
	}
	return ToSessionResponses(sessions), nil
}

// RecordCount records one physical count in an open session. Recounting a
// lot overwrites the previous count. Concurrent counters conflicting on the
// session row are retried a few times before giving up.
func (s *Service) RecordCount(ctx context.Context, tenantID, sessionID, agentID uuid.UUID, req RecordCountRequest) (*SessionResponse, error) {
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		session, err := s.sessionRepo.FindByIDForTenant(ctx, tenantID, sessionID)
		if err != nil {
			return nil, err
		}

		expected := session.GetVersion()
		if err := session.RecordPhysicalCount(req.LotID, req.Quantity, agentID, time.Now()); err != nil {
			return nil, err
		}

		if err := s.sessionRepo.SaveWithLock(ctx, session, expected); err != nil {
			if errors.Is(err, shared.ErrConcurrencyConflict) {
				continue
			}
			return nil, err
		}

		response := ToSessionResponse(session)
		return &response, nil
	}

	return nil, shared.ErrConcurrencyConflict
}

// GetDiscrepancies previews the differences the session would book if it
// were completed now. Purely derived; calling it never mutates anything.
func (s *Service) GetDiscrepancies(ctx context.Context, tenantID, sessionID uuid.UUID) ([]DiscrepancyResponse, error) {
	session, err := s.sessionRepo.FindByIDForTenant(ctx, tenantID, sessionID)
	if err != nil {
		return nil, err
	}
	return ToDiscrepancyResponses(session.ComputeDiscrepancies()), nil
}

// CompleteSession closes a session and books one adjustment movement per
// discrepancy against the live ledger. The status flip, every adjustment,
// every lot update and the audit record commit in a single transaction:
// a failure anywhere leaves the session open and the ledger untouched.
func (s *Service) CompleteSession(ctx context.Context, tenantID, sessionID, agentID uuid.UUID) (*CompletionResponse, error) {
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		var (
			completedSession *reconciliation.Session
			adjustedLots     []*lot.Lot
			discrepancies    []reconciliation.Discrepancy
		)

		err := s.txScope.Execute(ctx, func(repos lotapp.TransactionalRepositories) error {
			session, err := repos.SessionRepo().FindByIDForTenant(ctx, tenantID, sessionID)
			if err != nil {
				return err
			}

			now := time.Now()
			expected := session.GetVersion()
			discrepancies, err = session.Complete(agentID, now)
			if err != nil {
				return err
			}

			adjustedLots = adjustedLots[:0]
			for _, d := range discrepancies {
				l, err := repos.LotRepo().FindByIDForTenant(ctx, tenantID, d.LotID)
				if err != nil {
					return err
				}

				adjustment, err := lot.NewMovement(l, lot.MovementTypeAdjustment, d.Delta, agentID)
				if err != nil {
					return err
				}
				adjustment.
					WithReference(lot.ReferenceTypeReconciliation, session.ID.String()).
					WithMetadata(lot.Metadata{
						lot.MetadataKeyTheoreticalQuantity: d.Theoretical.String(),
						lot.MetadataKeyPhysicalQuantity:    d.Physical.String(),
						lot.MetadataKeySessionID:           session.ID.String(),
					}).
					WithOccurredAt(now)

				if err := l.ApplyDelta(d.Delta); err != nil {
					return err
				}
				l.AddDomainEvent(lot.NewMovementAppliedEvent(l, adjustment))

				if err := repos.LotRepo().SaveWithLock(ctx, l); err != nil {
					return err
				}
				if err := repos.MovementRepo().Create(ctx, adjustment); err != nil {
					return err
				}
				adjustedLots = append(adjustedLots, l)
			}

			audit := reconciliation.NewCompletionAuditRecord(session, len(discrepancies), agentID, now)
			if err := repos.AuditRepo().Create(ctx, audit); err != nil {
				return err
			}
			if err := repos.SessionRepo().SaveWithLock(ctx, session, expected); err != nil {
				return err
			}

			completedSession = session
			return nil
		})
		if err != nil {
			if errors.Is(err, shared.ErrConcurrencyConflict) {
				continue
			}
			return nil, err
		}

		s.publishDomainEvents(ctx, completedSession)
		for _, l := range adjustedLots {
			s.publishDomainEvents(ctx, l)
		}

		return &CompletionResponse{
			Session:           ToSessionResponse(completedSession),
			Discrepancies:     ToDiscrepancyResponses(discrepancies),
			AdjustmentsBooked: len(discrepancies),
		}, nil
	}

	return nil, shared.ErrConcurrencyConflict
}

// CancelSession abandons an open session without touching the ledger
func (s *Service) CancelSession(ctx context.Context, tenantID, sessionID, agentID uuid.UUID) (*SessionResponse, error) {
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		var cancelled *reconciliation.Session

		err := s.txScope.Execute(ctx, func(repos lotapp.TransactionalRepositories) error {
			session, err := repos.SessionRepo().FindByIDForTenant(ctx, tenantID, sessionID)
			if err != nil {
				return err
			}

			now := time.Now()
			expected := session.GetVersion()
			if err := session.Cancel(agentID, now); err != nil {
				return err
			}

			audit := reconciliation.NewCancellationAuditRecord(session, agentID, now)
			if err := repos.AuditRepo().Create(ctx, audit); err != nil {
				return err
			}
			if err := repos.SessionRepo().SaveWithLock(ctx, session, expected); err != nil {
				return err
			}

			cancelled = session
			return nil
		})
		if err != nil {
			if errors.Is(err, shared.ErrConcurrencyConflict) {
				continue
			}
			return nil, err
		}

		s.publishDomainEvents(ctx, cancelled)
		response := ToSessionResponse(cancelled)
		return &response, nil
	}

	return nil, shared.ErrConcurrencyConflict
}

// ListAuditTrail retrieves the audit records of one session, attributing
// each record to the acting agent's display name when the identity
// directory knows the agent. Unresolvable agents keep an empty name.
func (s *Service) ListAuditTrail(ctx context.Context, tenantID, sessionID uuid.UUID) ([]AuditRecordResponse, error) {
	records, err := s.auditRepo.FindBySession(ctx, tenantID, sessionID)
	if err != nil {
		return nil, err
	}

	responses := ToAuditRecordResponses(records)
	if s.agentDirectory == nil {
		return responses, nil
	}

	names := make(map[uuid.UUID]string)
	for i := range responses {
		agentID := responses[i].AgentID
		name, seen := names[agentID]
		if !seen {
			if ref, err := s.agentDirectory.GetAgentReference(ctx, tenantID, agentID); err == nil {
				name = ref.DisplayName()
			}
			names[agentID] = name
		}
		responses[i].AgentName = name
	}
	return responses, nil
}
