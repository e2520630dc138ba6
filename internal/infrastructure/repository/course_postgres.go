package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"coursemarket/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// maxUpsertAttempts bounds the retry loop when a concurrent upsert wins the
// unique index on upsert_key.
const maxUpsertAttempts = 3

var errUpsertConflict = errors.New("upsert key taken")

type CourseGorm struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Title       string    `gorm:"index;not null"`
	Description string    `gorm:"not null"`
	Price       float64   `gorm:"not null;check:price >= 0"`
	ImageURL    string    `gorm:"not null"`
	CreatorID   uuid.UUID `gorm:"type:uuid;index;not null"`
	Creator     AdminGorm `gorm:"foreignKey:CreatorID;constraint:OnDelete:RESTRICT"`

	// Set on every row written through Upsert. NULL rows (plain creates) may
	// share a title under the same owner; keyed rows may not.
	UpsertKey *string `gorm:"uniqueIndex"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (CourseGorm) TableName() string {
	return "courses"
}

func (c *CourseGorm) toDomain() domain.Course {
	return domain.Course{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		Price:       c.Price,
		ImageURL:    c.ImageURL,
		CreatorID:   c.CreatorID,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func upsertKey(creatorID uuid.UUID, title string) string {
	return creatorID.String() + ":" + title
}

type CourseRepository struct {
	db *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

func (r *CourseRepository) Create(ctx context.Context, c *domain.Course) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	row := &CourseGorm{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		Price:       c.Price,
		ImageURL:    c.ImageURL,
		CreatorID:   c.CreatorID,
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(row).Error; err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	*c = row.toDomain()
	return nil
}

// Upsert finds the course keyed by (title, creatorID) and updates it, or
// creates it when absent. The unique index on upsert_key decides races: the
// loser retries and lands on the update path.
func (r *CourseRepository) Upsert(ctx context.Context, creatorID uuid.UUID, in domain.CourseInput) (*domain.Course, bool, error) {
	key := upsertKey(creatorID, in.Title)

	var lastErr error
	for attempt := 0; attempt < maxUpsertAttempts; attempt++ {
		existing, err := r.findForUpsert(ctx, creatorID, in.Title)
		switch {
		case err == nil:
			course, err := r.updateKeyed(ctx, existing, key, in)
			if err == nil {
				return course, false, nil
			}
			lastErr = err
		case errors.Is(err, gorm.ErrRecordNotFound):
			if in.ImageURL == "" {
				return nil, false, domain.NewValidationError("image", "is required")
			}
			course, err := r.insertKeyed(ctx, creatorID, key, in)
			if err == nil {
				return course, true, nil
			}
			lastErr = err
		default:
			return nil, false, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
		}

		if !errors.Is(lastErr, errUpsertConflict) {
			return nil, false, lastErr
		}
	}
	return nil, false, fmt.Errorf("%w: %v", domain.ErrPersistence, lastErr)
}

// findForUpsert prefers the row already holding the key, then the oldest
// plain row with the same title.
func (r *CourseRepository) findForUpsert(ctx context.Context, creatorID uuid.UUID, title string) (*CourseGorm, error) {
	var row CourseGorm
	err := r.db.WithContext(ctx).
		Where("creator_id = ? AND title = ?", creatorID, title).
		Order("upsert_key IS NULL").
		Order("created_at asc").
		Order("id asc").
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *CourseRepository) insertKeyed(ctx context.Context, creatorID uuid.UUID, key string, in domain.CourseInput) (*domain.Course, error) {
	row := &CourseGorm{
		ID:          uuid.New(),
		Title:       in.Title,
		Description: in.Description,
		Price:       in.Price,
		ImageURL:    in.ImageURL,
		CreatorID:   creatorID,
		UpsertKey:   &key,
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(row).Error; err != nil {
		return nil, translateUpsert(err)
	}
	course := row.toDomain()
	return &course, nil
}

func (r *CourseRepository) updateKeyed(ctx context.Context, row *CourseGorm, key string, in domain.CourseInput) (*domain.Course, error) {
	updates := map[string]interface{}{
		"description": in.Description,
		"price":       in.Price,
		"upsert_key":  key,
	}
	if in.ImageURL != "" {
		updates["image_url"] = in.ImageURL
	}

	err := r.db.WithContext(ctx).
		Model(&CourseGorm{}).
		Where("id = ?", row.ID).
		Updates(updates).Error
	if err != nil {
		return nil, translateUpsert(err)
	}

	var fresh CourseGorm
	if err := r.db.WithContext(ctx).First(&fresh, "id = ?", row.ID).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	course := fresh.toDomain()
	return &course, nil
}

func translateUpsert(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errUpsertConflict
	}
	return fmt.Errorf("%w: %v", domain.ErrPersistence, err)
}

func (r *CourseRepository) ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]domain.Course, error) {
	var rows []CourseGorm
	err := r.db.WithContext(ctx).
		Where("creator_id = ?", creatorID).
		Order("created_at asc").
		Order("id asc").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	return toDomainCourses(rows), nil
}

// ListAll backs the public preview listing.
func (r *CourseRepository) ListAll(ctx context.Context) ([]domain.Course, error) {
	var rows []CourseGorm
	err := r.db.WithContext(ctx).
		Order("created_at desc").
		Order("id asc").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	return toDomainCourses(rows), nil
}

func (r *CourseRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Course, error) {
	var row CourseGorm
	err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCourseNotFound
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	course := row.toDomain()
	return &course, nil
}

func toDomainCourses(rows []CourseGorm) []domain.Course {
	courses := make([]domain.Course, 0, len(rows))
	for i := range rows {
		courses = append(courses, rows[i].toDomain())
	}
	return courses
}
