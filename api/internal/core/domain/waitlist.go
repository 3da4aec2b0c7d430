package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// WaitlistEntry is an Atlas early-access signup. No dedup is enforced.
type WaitlistEntry struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	Goals     []string  `json:"goals" db:"goals"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type WaitlistRepository interface {
	Add(ctx context.Context, e *WaitlistEntry) error
}
