package domain

import "errors"

// Common domain errors
var (
	ErrNotFound       = errors.New("resource not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrInternalServer = errors.New("internal server error")
)

// User errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserInactive       = errors.New("user account is inactive")
)

// Purchase order lifecycle errors. Status conflict marks the loser of a
// concurrent transition.
var (
	ErrPONotFound       = errors.New("purchase order not found")
	ErrInvalidState     = errors.New("invalid state for requested action")
	ErrInsufficientRole = errors.New("insufficient role for amount")
	ErrPolicyViolation  = errors.New("policy violation")
	ErrStatusConflict   = errors.New("purchase order status changed concurrently")
	ErrPOImmutable      = errors.New("approved purchase order cannot be modified")
	ErrPOUndeletable    = errors.New("approved purchase order cannot be deleted")
)

// Named policies for PolicyViolation details
var (
	ErrSelfApprovalDisabled = errors.New("self-approval is not allowed")
	ErrCommentRequired      = errors.New("comment is required when rejecting")
	ErrRevisionDisabled     = errors.New("revision of rejected orders is not allowed")
)

// DNA configuration errors
var (
	ErrDNAInvalid = errors.New("invalid DNA configuration")
)
