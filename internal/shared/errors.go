package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrNoCredential indicates a missing or malformed Authorization header.
	ErrNoCredential = errors.New("no credential provided")
	// ErrInvalidToken indicates a token that failed signature or expiry checks.
	ErrInvalidToken = errors.New("invalid token")
	// ErrForbidden indicates the caller's role does not satisfy the route policy.
	ErrForbidden = errors.New("access denied")
	// ErrNotApproved indicates an account awaiting administrator approval.
	ErrNotApproved = errors.New("user not approved")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAlreadyExists indicates a uniqueness conflict.
	ErrAlreadyExists = errors.New("already exists")
)
