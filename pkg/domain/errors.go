package domain

import "errors"

// Access-control errors
var (
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidRole      = errors.New("invalid role")
)

// Membership errors
var (
	ErrMemberNotFound    = errors.New("member not found")
	ErrMemberConflict    = errors.New("member already exists for workspace and user")
	ErrWorkspaceNotFound = errors.New("workspace not found")
	ErrUserNotFound      = errors.New("user not found")
)

// Invitation errors
var (
	ErrInviteNotFound        = errors.New("invite not found")
	ErrInviteExpired         = errors.New("invite expired")
	ErrInviteAlreadyAccepted = errors.New("invite already accepted")
	ErrUserAlreadyRegistered = errors.New("email already belongs to a registered user")
	ErrEmailMismatch         = errors.New("invite email does not match authenticated user")
)

// Validation errors
var (
	ErrInvalidEmail = errors.New("invalid email address")
	ErrInvalidToken = errors.New("invalid token")
)
