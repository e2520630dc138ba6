package repository

import (
	"context"
	"time"

	"coursemarket/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AdminGorm mirrors UserGorm in its own table so that email uniqueness is
// enforced per role.
type AdminGorm struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email     string    `gorm:"uniqueIndex;not null;size:255"`
	Password  string    `gorm:"not null"`
	FirstName string    `gorm:"not null;size:100"`
	LastName  string    `gorm:"not null;size:100"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (AdminGorm) TableName() string {
	return "admins"
}

type AdminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

func (r *AdminRepository) Create(ctx context.Context, acc *domain.Account) error {
	row := &AdminGorm{
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

func (r *AdminRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	var row AdminGorm
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
