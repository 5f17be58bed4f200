package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/campus-atlas/campus-atlas/internal/shared"
)

// ErrAlreadyApproved is returned when approving an account a second time.
var ErrAlreadyApproved = errors.New("user is already approved")

// Service wraps account business rules.
type Service struct {
	repo   Repository
	tokens *Tokens
}

// NewService constructs a new Service.
func NewService(repo Repository, tokens *Tokens) *Service {
	return &Service{repo: repo, tokens: tokens}
}

// Login authenticates email/password credentials and mints a bearer
// credential. An unknown email and a wrong password produce the same error so
// account existence is not revealed.
func (s *Service) Login(ctx context.Context, email, password string) (string, *User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return "", nil, shared.ErrInvalidCredentials
		}
		return "", nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, shared.ErrInvalidCredentials
	}
	if !user.Approved && user.Role != RoleAdmin {
		return "", nil, shared.ErrNotApproved
	}
	token, err := s.tokens.Issue(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// Register creates a new account. Accounts requesting the plain user role are
// approved immediately; anything else starts unapproved and waits for an
// administrator.
func (s *Service) Register(ctx context.Context, email, password string, role Role) (*User, error) {
	if role == "" {
		role = RoleUser
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		Approved:     role == RoleUser,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Approve marks the target account approved on behalf of an administrator.
func (s *Service) Approve(ctx context.Context, targetID, approverID uuid.UUID) (*User, error) {
	user, err := s.repo.FindByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if user.Approved {
		return nil, ErrAlreadyApproved
	}
	if err := s.repo.SetApproved(ctx, targetID, approverID); err != nil {
		return nil, err
	}
	user.Approved = true
	user.ApprovedBy = &approverID
	return user, nil
}

// ListUsers returns every account.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

// UpdateProfile changes an account's own email and/or password. Role and
// approval state cannot be changed through this path.
func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, email, password string) (*User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if email != "" {
		user.Email = email
	}
	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hash)
	}
	if err := s.repo.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteProfile removes an account.
func (s *Service) DeleteProfile(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
