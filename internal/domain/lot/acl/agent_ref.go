package acl

import (
	"context"

	"github.com/google/uuid"

	"github.com/stocklot/backend/internal/domain/shared"
)

// AgentReference is the ledger's local view of an acting agent from the
// identity service, used only for audit attribution.
type AgentReference struct {
	id          uuid.UUID
	displayName string
}

// NewAgentReference creates a new AgentReference
func NewAgentReference(id uuid.UUID, displayName string) (AgentReference, error) {
	if id == uuid.Nil {
		return AgentReference{}, shared.NewDomainError("INVALID_AGENT", "Agent ID cannot be empty")
	}
	if displayName == "" {
		return AgentReference{}, shared.NewDomainError("INVALID_AGENT_NAME", "Agent display name cannot be empty")
	}
	return AgentReference{id: id, displayName: displayName}, nil
}

// ID returns the agent ID
func (r AgentReference) ID() uuid.UUID {
	return r.id
}

// DisplayName returns the agent display name
func (r AgentReference) DisplayName() string {
	return r.displayName
}

// IsEmpty returns true if the reference is empty
func (r AgentReference) IsEmpty() bool {
	return r.id == uuid.Nil
}

// AgentDirectory defines the read-only port to the identity service.
// Implemented in the infrastructure layer.
type AgentDirectory interface {
	// GetAgentReference retrieves the display identity of an acting agent
	GetAgentReference(ctx context.Context, tenantID, agentID uuid.UUID) (AgentReference, error)
}
