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
	ErrNotFound      = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput  = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrInvalidState  = NewDomainError("INVALID_STATE", "Operation not allowed in current state")

	// Pricing engine errors
	ErrInsufficientTrainingData = NewDomainError("INSUFFICIENT_TRAINING_DATA", "Insufficient data for training. Need at least 10 products.")
	ErrFeaturePreparation       = NewDomainError("FEATURE_PREPARATION_FAILED", "Cannot prepare features: cost price must be positive")
	ErrModelUnavailable         = NewDomainError("MODEL_UNAVAILABLE", "No trained model artifact is available")
	ErrPriceOutOfBounds         = NewDomainError("PRICE_OUT_OF_BOUNDS", "Price is outside the allowed bounds")
)
