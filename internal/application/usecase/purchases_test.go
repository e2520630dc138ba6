package usecase

import (
	"context"
	"testing"
	"time"

	"coursemarket/internal/domain"
	"coursemarket/internal/infrastructure/repository"
	"coursemarket/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/clause"
)

func TestPurchaseUseCase(t *testing.T) {
	db := testutil.NewDB(t)
	require.NoError(t, repository.Migrate(db))
	ctx := context.Background()

	courses := repository.NewCourseRepository(db)
	owned := &domain.Course{Title: "owned", Description: "d", ImageURL: "i", CreatorID: uuid.New()}
	other := &domain.Course{Title: "other", Description: "d", ImageURL: "i", CreatorID: uuid.New()}
	require.NoError(t, courses.Create(ctx, owned))
	require.NoError(t, courses.Create(ctx, other))

	user := uuid.New()
	require.NoError(t, db.Omit(clause.Associations).Create(&repository.PurchaseGorm{
		ID: uuid.New(), UserID: user, CourseID: owned.ID, CreatedAt: time.Now(),
	}).Error)

	uc := NewPurchaseUseCase(repository.NewPurchaseRepository(db))

	summary, err := uc.ListPurchasedCourses(ctx, user)
	require.NoError(t, err)
	require.Len(t, summary.Courses, 1)
	require.Len(t, summary.Purchases, 1)
	assert.Equal(t, owned.ID, summary.Courses[0].ID)
	assert.Equal(t, owned.ID, summary.Purchases[0].CourseID)

	ok, err := uc.CanAccess(ctx, user, owned.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = uc.CanAccess(ctx, user, other.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	empty, err := uc.ListPurchasedCourses(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, empty.Courses)
}
