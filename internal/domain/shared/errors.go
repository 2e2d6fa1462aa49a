package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")

	// Ledger errors
	ErrInvalidQuantity     = NewDomainError("INVALID_QUANTITY", "Quantity is invalid")
	ErrQuantityOutOfBounds = NewDomainError("QUANTITY_OUT_OF_BOUNDS", "Resulting quantity violates the [0, initial] bound")

	// FIFO resolution errors
	ErrNoConfiguration = NewDomainError("NO_CONFIGURATION", "No applicable FIFO configuration found")

	// State machine errors
	ErrInvalidTransition = NewDomainError("INVALID_TRANSITION", "State transition not allowed")

	// Reconciliation errors
	ErrEmptyReconciliation = NewDomainError("EMPTY_RECONCILIATION", "Reconciliation has no discrepancies to apply")
)
