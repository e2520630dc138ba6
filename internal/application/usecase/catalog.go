package usecase

import (
	"context"
	"strings"
	"sync"

	"coursemarket/internal/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type CourseStore interface {
	Create(ctx context.Context, c *domain.Course) error
	Upsert(ctx context.Context, creatorID uuid.UUID, in domain.CourseInput) (*domain.Course, bool, error)
	ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]domain.Course, error)
	ListAll(ctx context.Context) ([]domain.Course, error)
}

type CourseCache interface {
	OwnerCourses(ctx context.Context, ownerID uuid.UUID) ([]domain.Course, bool)
	SetOwnerCourses(ctx context.Context, ownerID uuid.UUID, courses []domain.Course) error
	Preview(ctx context.Context) ([]domain.Course, bool)
	SetPreview(ctx context.Context, courses []domain.Course) error
	InvalidateOwner(ctx context.Context, ownerID uuid.UUID) error
	InvalidatePreview(ctx context.Context) error
}

const invalidateAttempts = 3

// CatalogUseCase owns course mutations. The owner id always comes from the
// authenticated admin, never from the request body.
type CatalogUseCase struct {
	courses CourseStore
	cache   CourseCache
	log     zerolog.Logger

	// listings whose invalidation failed; served from the database until a
	// later delete succeeds
	mu           sync.Mutex
	staleOwners  map[uuid.UUID]struct{}
	stalePreview bool
}

func NewCatalogUseCase(cs CourseStore, cc CourseCache, log zerolog.Logger) *CatalogUseCase {
	return &CatalogUseCase{
		courses:     cs,
		cache:       cc,
		log:         log,
		staleOwners: make(map[uuid.UUID]struct{}),
	}
}

func normalizeCourse(in domain.CourseInput) domain.CourseInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	return in
}

// CheckCourse validates the text fields of in. Handlers call it before
// storing an upload so rejected requests leave no files behind.
func (uc *CatalogUseCase) CheckCourse(in domain.CourseInput) error {
	return validateStruct(normalizeCourse(in))
}

func (uc *CatalogUseCase) CreateCourse(ctx context.Context, ownerID uuid.UUID, in domain.CourseInput) (uuid.UUID, error) {
	in = normalizeCourse(in)
	if err := validateStruct(in); err != nil {
		return uuid.Nil, err
	}
	if in.ImageURL == "" {
		return uuid.Nil, domain.NewValidationError("image", "is required")
	}

	course := &domain.Course{
		Title:       in.Title,
		Description: in.Description,
		Price:       in.Price,
		ImageURL:    in.ImageURL,
		CreatorID:   ownerID,
	}
	if err := uc.courses.Create(ctx, course); err != nil {
		uc.log.Error().Err(err).Str("admin_id", ownerID.String()).Msg("create course failed")
		return uuid.Nil, err
	}

	uc.invalidate(ctx, ownerID)
	uc.log.Info().Str("admin_id", ownerID.String()).Str("course_id", course.ID.String()).Msg("course created")
	return course.ID, nil
}

// UpsertCourse updates the owner's course with the same title or creates it.
// An empty image keeps the stored one.
func (uc *CatalogUseCase) UpsertCourse(ctx context.Context, ownerID uuid.UUID, in domain.CourseInput) (*domain.Course, bool, error) {
	in = normalizeCourse(in)
	if err := validateStruct(in); err != nil {
		return nil, false, err
	}

	course, created, err := uc.courses.Upsert(ctx, ownerID, in)
	if err != nil {
		uc.log.Error().Err(err).Str("admin_id", ownerID.String()).Msg("upsert course failed")
		return nil, false, err
	}

	uc.invalidate(ctx, ownerID)
	uc.log.Info().
		Str("admin_id", ownerID.String()).
		Str("course_id", course.ID.String()).
		Bool("created", created).
		Msg("course upserted")
	return course, created, nil
}

func (uc *CatalogUseCase) ListCoursesByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Course, error) {
	if !uc.ownerFresh(ctx, ownerID) {
		return uc.courses.ListByCreator(ctx, ownerID)
	}
	if courses, ok := uc.cache.OwnerCourses(ctx, ownerID); ok {
		return courses, nil
	}

	courses, err := uc.courses.ListByCreator(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if err := uc.cache.SetOwnerCourses(ctx, ownerID, courses); err != nil {
		uc.log.Warn().Err(err).Msg("cache owner courses")
	}
	return courses, nil
}

// PreviewCourses lists every course for the public catalogue page.
func (uc *CatalogUseCase) PreviewCourses(ctx context.Context) ([]domain.Course, error) {
	if !uc.previewFresh(ctx) {
		return uc.courses.ListAll(ctx)
	}
	if courses, ok := uc.cache.Preview(ctx); ok {
		return courses, nil
	}

	courses, err := uc.courses.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if err := uc.cache.SetPreview(ctx, courses); err != nil {
		uc.log.Warn().Err(err).Msg("cache preview")
	}
	return courses, nil
}

// invalidate drops the owner's cached listing and the preview. When redis
// keeps failing the listings are marked stale so reads bypass the cache.
func (uc *CatalogUseCase) invalidate(ctx context.Context, ownerID uuid.UUID) {
	var err error
	for attempt := 0; attempt < invalidateAttempts; attempt++ {
		if err = uc.cache.InvalidateOwner(ctx, ownerID); err == nil {
			return
		}
	}

	uc.log.Warn().Err(err).Str("admin_id", ownerID.String()).Msg("invalidate course cache")
	uc.mu.Lock()
	uc.staleOwners[ownerID] = struct{}{}
	uc.stalePreview = true
	uc.mu.Unlock()
}

// ownerFresh reports whether the owner's cached listing may be used, retrying
// a pending invalidation first.
func (uc *CatalogUseCase) ownerFresh(ctx context.Context, ownerID uuid.UUID) bool {
	uc.mu.Lock()
	_, stale := uc.staleOwners[ownerID]
	uc.mu.Unlock()
	if !stale {
		return true
	}
	if err := uc.cache.InvalidateOwner(ctx, ownerID); err != nil {
		return false
	}

	uc.mu.Lock()
	delete(uc.staleOwners, ownerID)
	uc.stalePreview = false
	uc.mu.Unlock()
	return true
}

func (uc *CatalogUseCase) previewFresh(ctx context.Context) bool {
	uc.mu.Lock()
	stale := uc.stalePreview
	uc.mu.Unlock()
	if !stale {
		return true
	}
	if err := uc.cache.InvalidatePreview(ctx); err != nil {
		return false
	}

	uc.mu.Lock()
	uc.stalePreview = false
	uc.mu.Unlock()
	return true
}
