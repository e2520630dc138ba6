package cache

import (
	"context"
	"testing"
	"time"

	"coursemarket/internal/domain"
	"coursemarket/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCourseCache_OwnerRoundTrip(t *testing.T) {
	client, mr := testutil.NewRedis(t)
	c := NewCourseCache(client)
	ctx := context.Background()
	owner := uuid.New()

	_, ok := c.OwnerCourses(ctx, owner)
	assert.False(t, ok)

	courses := []domain.Course{{ID: uuid.New(), Title: "T", Price: 10, CreatorID: owner}}
	require.NoError(t, c.SetOwnerCourses(ctx, owner, courses))

	got, ok := c.OwnerCourses(ctx, owner)
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, courses[0].ID, got[0].ID)
	assert.Equal(t, owner, got[0].CreatorID)

	_, ok = c.OwnerCourses(ctx, uuid.New())
	assert.False(t, ok)

	mr.FastForward(ownerListTTL + time.Second)
	_, ok = c.OwnerCourses(ctx, owner)
	assert.False(t, ok)
}

func TestCourseCache_EmptyListIsAHit(t *testing.T) {
	client, _ := testutil.NewRedis(t)
	c := NewCourseCache(client)
	owner := uuid.New()

	require.NoError(t, c.SetOwnerCourses(context.Background(), owner, []domain.Course{}))
	got, ok := c.OwnerCourses(context.Background(), owner)
	assert.True(t, ok)
	assert.Empty(t, got)
}

func TestCourseCache_InvalidateOwner(t *testing.T) {
	client, mr := testutil.NewRedis(t)
	c := NewCourseCache(client)
	ctx := context.Background()
	owner, other := uuid.New(), uuid.New()

	require.NoError(t, c.SetOwnerCourses(ctx, owner, []domain.Course{{Title: "a"}}))
	require.NoError(t, c.SetOwnerCourses(ctx, other, []domain.Course{{Title: "b"}}))
	require.NoError(t, c.SetPreview(ctx, []domain.Course{{Title: "a"}, {Title: "b"}}))

	require.NoError(t, c.InvalidateOwner(ctx, owner))

	assert.False(t, mr.Exists(ownerKey(owner)))
	assert.False(t, mr.Exists(previewKey))
	assert.True(t, mr.Exists(ownerKey(other)))
}

func TestCourseCache_CorruptEntryIsAMiss(t *testing.T) {
	client, mr := testutil.NewRedis(t)
	c := NewCourseCache(client)

	require.NoError(t, mr.Set(previewKey, "{not json"))
	_, ok := c.Preview(context.Background())
	assert.False(t, ok)
}
