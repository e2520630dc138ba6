package handlers

import (
	"context"
	"errors"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"

	"coursemarket/internal/domain"
	"coursemarket/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Catalog interface {
	CheckCourse(in domain.CourseInput) error
	CreateCourse(ctx context.Context, ownerID uuid.UUID, in domain.CourseInput) (uuid.UUID, error)
	UpsertCourse(ctx context.Context, ownerID uuid.UUID, in domain.CourseInput) (*domain.Course, bool, error)
	ListCoursesByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Course, error)
	PreviewCourses(ctx context.Context) ([]domain.Course, error)
}

type ImageSaver interface {
	Save(ctx context.Context, r io.Reader) (string, error)
}

type CourseHandler struct {
	catalog Catalog
	images  ImageSaver
}

func NewCourseHandler(catalog Catalog, images ImageSaver) *CourseHandler {
	return &CourseHandler{catalog: catalog, images: images}
}

type courseJSON struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"imageUrl"`
	Image       string  `json:"image"`
}

// readCourse accepts either a JSON body with imageUrl or a multipart form
// with an uploaded image file.
func (h *CourseHandler) readCourse(c *gin.Context) (domain.CourseInput, error) {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		return h.readMultipart(c)
	}

	var req courseJSON
	if err := c.ShouldBindJSON(&req); err != nil {
		return domain.CourseInput{}, errBadBody
	}
	in := domain.CourseInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
	}
	if in.ImageURL == "" {
		in.ImageURL = req.Image
	}
	return in, nil
}

func (h *CourseHandler) readMultipart(c *gin.Context) (domain.CourseInput, error) {
	in := domain.CourseInput{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		ImageURL:    c.PostForm("imageUrl"),
	}

	if raw := strings.TrimSpace(c.PostForm("price")); raw != "" {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsInf(price, 0) || math.IsNaN(price) {
			return in, domain.NewValidationError("price", "must be a number")
		}
		in.Price = price
	}

	fh, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return in, nil
	}
	if err != nil {
		return in, errBadBody
	}
	if err := h.catalog.CheckCourse(in); err != nil {
		return in, err
	}

	f, err := fh.Open()
	if err != nil {
		return in, err
	}
	defer f.Close()

	ref, err := h.images.Save(c.Request.Context(), f)
	if err != nil {
		return in, err
	}
	in.ImageURL = ref
	return in, nil
}

var errBadBody = errors.New("invalid request body")

func (h *CourseHandler) input(c *gin.Context) (domain.CourseInput, bool) {
	in, err := h.readCourse(c)
	if errors.Is(err, errBadBody) {
		badRequest(c)
		return in, false
	}
	if err != nil {
		respondError(c, err)
		return in, false
	}
	return in, true
}

// POST /api/v1/admin/course
func (h *CourseHandler) Create(c *gin.Context) {
	adminID, _ := middleware.PrincipalID(c, domain.RoleAdmin)

	in, ok := h.input(c)
	if !ok {
		return
	}

	id, err := h.catalog.CreateCourse(c.Request.Context(), adminID, in)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Course created successfully", "courseId": id})
}

// PUT /api/v1/admin/course
func (h *CourseHandler) Upsert(c *gin.Context) {
	adminID, _ := middleware.PrincipalID(c, domain.RoleAdmin)

	in, ok := h.input(c)
	if !ok {
		return
	}

	course, created, err := h.catalog.UpsertCourse(c.Request.Context(), adminID, in)
	if err != nil {
		respondError(c, err)
		return
	}

	msg := "Course updated successfully"
	if created {
		msg = "Course created successfully"
	}
	c.JSON(http.StatusOK, gin.H{"message": msg, "courseId": course.ID, "created": created})
}

// GET /api/v1/admin/course/bulk
func (h *CourseHandler) Bulk(c *gin.Context) {
	adminID, _ := middleware.PrincipalID(c, domain.RoleAdmin)

	courses, err := h.catalog.ListCoursesByOwner(c.Request.Context(), adminID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Courses fetched successfully", "courses": nonNil(courses)})
}

// GET /api/v1/course/preview
func (h *CourseHandler) Preview(c *gin.Context) {
	courses, err := h.catalog.PreviewCourses(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Courses fetched successfully", "courses": nonNil(courses)})
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
