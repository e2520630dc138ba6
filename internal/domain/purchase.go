package domain

import (
	"time"

	"github.com/google/uuid"
)

// Purchase grants a user access to a course. Rows are written by the payment
// side; this service only reads them.
type Purchase struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	CourseID  uuid.UUID `json:"courseId"`
	CreatedAt time.Time `json:"createdAt"`
}
