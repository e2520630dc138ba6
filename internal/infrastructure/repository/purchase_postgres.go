package repository

import (
	"context"
	"fmt"
	"time"

	"coursemarket/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PurchaseGorm rows are inserted by the payment side. Courses and users with
// purchases cannot be deleted.
type PurchaseGorm struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID  `gorm:"type:uuid;index;not null"`
	User      UserGorm   `gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT"`
	CourseID  uuid.UUID  `gorm:"type:uuid;index;not null"`
	Course    CourseGorm `gorm:"foreignKey:CourseID;constraint:OnDelete:RESTRICT"`
	CreatedAt time.Time
}

func (PurchaseGorm) TableName() string {
	return "purchases"
}

type PurchaseRepository struct {
	db *gorm.DB
}

func NewPurchaseRepository(db *gorm.DB) *PurchaseRepository {
	return &PurchaseRepository{db: db}
}

func (r *PurchaseRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Purchase, error) {
	var rows []PurchaseGorm
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at asc").
		Order("id asc").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	purchases := make([]domain.Purchase, 0, len(rows))
	for _, p := range rows {
		purchases = append(purchases, domain.Purchase{
			ID:        p.ID,
			UserID:    p.UserID,
			CourseID:  p.CourseID,
			CreatedAt: p.CreatedAt,
		})
	}
	return purchases, nil
}

// ListCoursesByUser returns the purchased courses in purchase order. A course
// bought twice appears once, at its first purchase.
func (r *PurchaseRepository) ListCoursesByUser(ctx context.Context, userID uuid.UUID) ([]domain.Course, error) {
	var rows []CourseGorm
	err := r.db.WithContext(ctx).
		Model(&CourseGorm{}).
		Select("courses.*").
		Joins("JOIN (SELECT course_id, MIN(created_at) AS bought_at FROM purchases WHERE user_id = ? GROUP BY course_id) p ON p.course_id = courses.id", userID).
		Order("p.bought_at asc").
		Order("courses.id asc").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	return toDomainCourses(rows), nil
}

func (r *PurchaseRepository) HasPurchased(ctx context.Context, userID, courseID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&PurchaseGorm{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	return count > 0, nil
}
