package port

import (
	"context"

	"github.com/garyjia/lecturer-claims/internal/domain/entity"
)

// SortField names a claim column that queries may order by
type SortField string

const (
	SortBySubmittedAt SortField = "submitted_at"
	SortByClaimMonth  SortField = "claim_month"
)

// SortDirection is ascending or descending
type SortDirection string

const (
	Ascending  SortDirection = "ASC"
	Descending SortDirection = "DESC"
)

// ClaimQuery filters and orders claims. Zero-valued filters match everything.
type ClaimQuery struct {
	LecturerID string
	Statuses   []string
	OrderBy    SortField
	Direction  SortDirection
}

// ClaimRepository defines persistence operations for Claim
type ClaimRepository interface {
	// Create inserts the claim and assigns its ID
	Create(ctx context.Context, claim *entity.Claim) error

	// GetByID returns nil, nil when no claim has the id
	GetByID(ctx context.Context, id int64) (*entity.Claim, error)

	// Update replaces the mutable fields of the claim if its Version still matches the
	// stored row, then increments Version. Returns entity.ErrConcurrentUpdate on mismatch.
	Update(ctx context.Context, claim *entity.Claim) error

	// Query returns claims matching the filter in the requested order.
	// Ties are broken by id ascending.
	Query(ctx context.Context, q ClaimQuery) ([]*entity.Claim, error)

	// DocumentKeys returns every document key referenced by a claim
	DocumentKeys(ctx context.Context) (map[string]struct{}, error)
}

// ClaimHistoryRepository defines persistence operations for ClaimHistory
type ClaimHistoryRepository interface {
	Create(ctx context.Context, history *entity.ClaimHistory) error
	GetByClaimID(ctx context.Context, claimID int64) ([]*entity.ClaimHistory, error)
}

// ActorDirectory is the read side of the external user directory
type ActorDirectory interface {
	// GetByID returns nil, nil when the actor is unknown
	GetByID(ctx context.Context, id string) (*entity.Actor, error)

	// ListByRole returns actors with the role ordered by display name
	ListByRole(ctx context.Context, role entity.Role) ([]*entity.Actor, error)
}

// ActorRepository adds registration on top of the directory lookups
type ActorRepository interface {
	ActorDirectory
	Upsert(ctx context.Context, actor *entity.Actor) error
}

// TransactionManager handles database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
