package handlers

import (
	"context"
	"net/http"

	"coursemarket/internal/application/usecase"
	"coursemarket/internal/domain"
	"coursemarket/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Purchases interface {
	ListPurchasedCourses(ctx context.Context, userID uuid.UUID) (*usecase.PurchaseSummary, error)
	CanAccess(ctx context.Context, userID, courseID uuid.UUID) (bool, error)
}

type PurchaseHandler struct {
	purchases Purchases
}

func NewPurchaseHandler(p Purchases) *PurchaseHandler {
	return &PurchaseHandler{purchases: p}
}

// GET /api/v1/user/purchases
func (h *PurchaseHandler) List(c *gin.Context) {
	userID, _ := middleware.PrincipalID(c, domain.RoleUser)

	summary, err := h.purchases.ListPurchasedCourses(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Purchases fetched successfully",
		"purchases": nonNil(summary.Purchases),
		"courses":   nonNil(summary.Courses),
	})
}

// GET /api/v1/user/purchases/:courseId
func (h *PurchaseHandler) Access(c *gin.Context) {
	userID, _ := middleware.PrincipalID(c, domain.RoleUser)

	courseID, err := uuid.Parse(c.Param("courseId"))
	if err != nil {
		respondError(c, domain.NewValidationError("courseId", "must be a UUID"))
		return
	}

	ok, err := h.purchases.CanAccess(c.Request.Context(), userID, courseID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"courseId": courseID, "purchased": ok})
}
