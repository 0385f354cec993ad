package model

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON        = "INVALID_JSON"
	ErrCodeNoStoreSelected    = "NO_STORE_SELECTED"
	ErrCodeDailyLimitReached  = "DAILY_LIMIT_REACHED"
	ErrCodeNoActivePromotions = "NO_ACTIVE_PROMOTIONS"
	ErrCodeStoreExists        = "STORE_EXISTS"
	ErrCodeStoreNotFound      = "STORE_NOT_FOUND"
	ErrCodeLoginTaken         = "LOGIN_TAKEN"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeInvalidPromotion   = "INVALID_PROMOTION"
	ErrCodePromotionNotFound  = "PROMOTION_NOT_FOUND"
	ErrCodeUserNotFound       = "USER_NOT_FOUND"
	ErrCodeUnauthorised       = "UNAUTHORIZED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeInternalError      = "INTERNAL_ERROR"
)

// DomainError is a business-rule rejection that callers are expected to
// handle, as opposed to an infrastructure failure.
type DomainError struct {
	Code    string
	Message string
}

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
	ErrNoStoreSelected    = NewDomainError(ErrCodeNoStoreSelected, "No store selected")
	ErrDailyLimitReached  = NewDomainError(ErrCodeDailyLimitReached, "Daily coupon limit reached, come back tomorrow")
	ErrNoActivePromotions = NewDomainError(ErrCodeNoActivePromotions, "No active promotions in this store right now")
	ErrStoreExists        = NewDomainError(ErrCodeStoreExists, "A store with this city, address and name already exists")
	ErrStoreNotFound      = NewDomainError(ErrCodeStoreNotFound, "Store not found")
	ErrLoginTaken         = NewDomainError(ErrCodeLoginTaken, "This login is already taken")
	ErrInvalidCredentials = NewDomainError(ErrCodeInvalidCredentials, "Invalid login or password")
	ErrPromotionNotFound  = NewDomainError(ErrCodePromotionNotFound, "Promotion not found")
	ErrUserNotFound       = NewDomainError(ErrCodeUserNotFound, "User not found")
)
