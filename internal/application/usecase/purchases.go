package usecase

import (
	"context"

	"coursemarket/internal/domain"

	"github.com/google/uuid"
)

type PurchaseLedger interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Purchase, error)
	ListCoursesByUser(ctx context.Context, userID uuid.UUID) ([]domain.Course, error)
	HasPurchased(ctx context.Context, userID, courseID uuid.UUID) (bool, error)
}

type PurchaseUseCase struct {
	ledger PurchaseLedger
}

func NewPurchaseUseCase(l PurchaseLedger) *PurchaseUseCase {
	return &PurchaseUseCase{ledger: l}
}

type PurchaseSummary struct {
	Purchases []domain.Purchase
	Courses   []domain.Course
}

func (uc *PurchaseUseCase) ListPurchasedCourses(ctx context.Context, userID uuid.UUID) (*PurchaseSummary, error) {
	purchases, err := uc.ledger.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	courses, err := uc.ledger.ListCoursesByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &PurchaseSummary{Purchases: purchases, Courses: courses}, nil
}

// CanAccess reports whether the user may receive full content for courseID.
func (uc *PurchaseUseCase) CanAccess(ctx context.Context, userID, courseID uuid.UUID) (bool, error) {
	return uc.ledger.HasPurchased(ctx, userID, courseID)
}
