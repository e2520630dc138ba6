package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"coursemarket/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserGorm struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email     string    `gorm:"uniqueIndex;not null;size:255"`
	Password  string    `gorm:"not null"`
	FirstName string    `gorm:"not null;size:100"`
	LastName  string    `gorm:"not null;size:100"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (UserGorm) TableName() string {
	return "users"
}

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, acc *domain.Account) error {
	row := &UserGorm{
		ID:        acc.ID,
		Email:     acc.Email,
		Password:  acc.Password,
		FirstName: acc.FirstName,
		LastName:  acc.LastName,
	}

	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return translateCreate(err)
	}

	acc.CreatedAt = row.CreatedAt
	acc.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	var row UserGorm
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&row).Error
	if err != nil {
		return nil, translateLookup(err)
	}
	return &domain.Account{
		ID:        row.ID,
		Email:     row.Email,
		Password:  row.Password,
		FirstName: row.FirstName,
		LastName:  row.LastName,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}, nil
}

func translateCreate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrDuplicateEmail
	}
	return fmt.Errorf("%w: %v", domain.ErrPersistence, err)
}

func translateLookup(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrAccountNotFound
	}
	return fmt.Errorf("%w: %v", domain.ErrPersistence, err)
}
