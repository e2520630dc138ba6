package cache

import (
	"context"
	"encoding/json"
	"time"

	"coursemarket/internal/domain"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	ownerListTTL = 10 * time.Minute
	previewTTL   = 5 * time.Minute

	previewKey = "courses:preview"
)

// CourseCache is a read-through cache for course listings. The database stays
// the source of truth; every miss or decode error falls back to it.
type CourseCache struct {
	client *redis.Client
}

func NewCourseCache(client *redis.Client) *CourseCache {
	return &CourseCache{client: client}
}

func ownerKey(ownerID uuid.UUID) string {
	return "courses:owner:" + ownerID.String()
}

func (c *CourseCache) OwnerCourses(ctx context.Context, ownerID uuid.UUID) ([]domain.Course, bool) {
	return c.get(ctx, ownerKey(ownerID))
}

func (c *CourseCache) SetOwnerCourses(ctx context.Context, ownerID uuid.UUID, courses []domain.Course) error {
	return c.set(ctx, ownerKey(ownerID), courses, ownerListTTL)
}

func (c *CourseCache) Preview(ctx context.Context) ([]domain.Course, bool) {
	return c.get(ctx, previewKey)
}

func (c *CourseCache) SetPreview(ctx context.Context, courses []domain.Course) error {
	return c.set(ctx, previewKey, courses, previewTTL)
}

// InvalidateOwner drops the owner's listing and the public preview.
func (c *CourseCache) InvalidateOwner(ctx context.Context, ownerID uuid.UUID) error {
	return c.client.Del(ctx, ownerKey(ownerID), previewKey).Err()
}

func (c *CourseCache) InvalidatePreview(ctx context.Context) error {
	return c.client.Del(ctx, previewKey).Err()
}

func (c *CourseCache) get(ctx context.Context, key string) ([]domain.Course, bool) {
	val, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	var courses []domain.Course
	if err := json.Unmarshal(val, &courses); err != nil {
		return nil, false
	}
	return courses, true
}

func (c *CourseCache) set(ctx context.Context, key string, courses []domain.Course, ttl time.Duration) error {
	data, err := json.Marshal(courses)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, ttl).Err()
}
