package usecase

import (
	"context"
	"errors"
	"strings"

	"coursemarket/internal/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type AccountStore interface {
	Create(ctx context.Context, acc *domain.Account) error
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

type TokenIssuer interface {
	Issue(principalID string, role domain.Role) (string, error)
}

// Length limits match the column sizes of the account tables.
type SignupInput struct {
	Email     string `json:"email" validate:"required,email,max=255"`
	Password  string `json:"password" validate:"required,min=6,bcryptlen"`
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
}

type SigninInput struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,bcryptlen"`
}

// AuthUseCase implements signup and signin for one role. The service wires
// one instance per role, each with its own account table and signing domain.
type AuthUseCase struct {
	role     domain.Role
	accounts AccountStore
	hasher   PasswordHasher
	tokens   TokenIssuer
	log      zerolog.Logger

	// compared against when the email is unknown so both failure paths cost
	// one bcrypt comparison
	dummyHash string
}

func NewAuthUseCase(
	role domain.Role,
	accounts AccountStore,
	h PasswordHasher,
	tm TokenIssuer,
	log zerolog.Logger,
) *AuthUseCase {
	dummy, _ := h.Hash(uuid.NewString())
	return &AuthUseCase{
		role:      role,
		accounts:  accounts,
		hasher:    h,
		tokens:    tm,
		log:       log.With().Str("role", string(role)).Logger(),
		dummyHash: dummy,
	}
}

func (uc *AuthUseCase) Role() domain.Role {
	return uc.role
}

func (uc *AuthUseCase) Signup(ctx context.Context, in SignupInput) (uuid.UUID, error) {
	in.Email = normalizeEmail(in.Email)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	if err := validateStruct(in); err != nil {
		return uuid.Nil, err
	}

	hash, err := uc.hasher.Hash(in.Password)
	if err != nil {
		return uuid.Nil, err
	}

	acc := &domain.Account{
		ID:        uuid.New(),
		Email:     in.Email,
		Password:  hash,
		FirstName: in.FirstName,
		LastName:  in.LastName,
	}
	if err := uc.accounts.Create(ctx, acc); err != nil {
		if !errors.Is(err, domain.ErrDuplicateEmail) {
			uc.log.Error().Err(err).Msg("signup failed")
		}
		return uuid.Nil, err
	}

	uc.log.Info().Str("account_id", acc.ID.String()).Msg("account registered")
	return acc.ID, nil
}

func (uc *AuthUseCase) Signin(ctx context.Context, in SigninInput) (string, error) {
	in.Email = normalizeEmail(in.Email)
	if err := validateStruct(in); err != nil {
		return "", err
	}

	acc, err := uc.accounts.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			_ = uc.hasher.Compare(uc.dummyHash, in.Password)
			return "", domain.ErrInvalidCredentials
		}
		uc.log.Error().Err(err).Msg("signin lookup failed")
		return "", err
	}

	if err := uc.hasher.Compare(acc.Password, in.Password); err != nil {
		return "", domain.ErrInvalidCredentials
	}

	return uc.tokens.Issue(acc.ID.String(), uc.role)
}
