package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PurchaseKind discriminates what a Purchase points at.
type PurchaseKind string

const (
	PurchaseAgent  PurchaseKind = "agent"
	PurchaseBundle PurchaseKind = "bundle"
)

// Purchase is an immutable ledger entry. Exactly one of AgentID / BundleID is set,
// matching Kind; build it through NewListingPurchase or NewBundlePurchase.
type Purchase struct {
	ID        uuid.UUID    `json:"id" db:"id"`
	UserID    string       `json:"user_id" db:"user_id"`
	Kind      PurchaseKind `json:"type" db:"type"`
	AgentID   *uuid.UUID   `json:"agent_id,omitempty" db:"agent_id"`
	BundleID  *uuid.UUID   `json:"bundle_id,omitempty" db:"bundle_id"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
}

func NewListingPurchase(userID string, listingID uuid.UUID) *Purchase {
	return &Purchase{UserID: userID, Kind: PurchaseAgent, AgentID: &listingID}
}

func NewBundlePurchase(userID string, bundleID uuid.UUID) *Purchase {
	return &Purchase{UserID: userID, Kind: PurchaseBundle, BundleID: &bundleID}
}

// Target returns the id of the listing or bundle the purchase refers to.
func (p *Purchase) Target() uuid.UUID {
	switch p.Kind {
	case PurchaseAgent:
		if p.AgentID != nil {
			return *p.AgentID
		}
	case PurchaseBundle:
		if p.BundleID != nil {
			return *p.BundleID
		}
	}
	return uuid.Nil
}

// Validate enforces the union: the kind tag and exactly one reference, consistent.
func (p *Purchase) Validate() error {
	if p.UserID == "" {
		return fmt.Errorf("%w: purchase requires a user_id", ErrInvalidInput)
	}
	switch p.Kind {
	case PurchaseAgent:
		if p.AgentID == nil || p.BundleID != nil {
			return fmt.Errorf("%w: agent purchase must reference exactly one listing", ErrInvalidInput)
		}
	case PurchaseBundle:
		if p.BundleID == nil || p.AgentID != nil {
			return fmt.Errorf("%w: bundle purchase must reference exactly one bundle", ErrInvalidInput)
		}
	default:
		return fmt.Errorf("%w: unknown purchase type %q", ErrInvalidInput, p.Kind)
	}
	return nil
}

// PurchaseRepository is the append-only ledger store.
type PurchaseRepository interface {
	// Create appends p, filling ID and CreatedAt.
	Create(ctx context.Context, p *Purchase) error

	// ListByUser returns the user's purchases ordered by created_at desc.
	ListByUser(ctx context.Context, userID string) ([]Purchase, error)
}
