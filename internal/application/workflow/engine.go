package workflow

import (
	"context"
	"time"

	"github.com/garyjia/lecturer-claims/internal/domain/entity"
	domainwf "github.com/garyjia/lecturer-claims/internal/domain/workflow"
)

// ActionSubmit is the history action recorded when a claim is created
const ActionSubmit = "SUBMIT"

// MutateFunc applies trigger-specific field changes after the state transition
type MutateFunc func(claim *entity.Claim, now time.Time)

// ClaimEngine drives claims through the lifecycle state machine
type ClaimEngine interface {
	// Submit persists a new pending claim and records the submission in its history
	Submit(ctx context.Context, claim *entity.Claim, actor *entity.Actor) error

	// Apply loads the claim, fires the trigger, applies mutate and persists the result.
	// Returns entity.ErrNotFound for a missing claim and an error wrapping
	// entity.ErrInvalidState when the trigger is not permitted.
	Apply(ctx context.Context, claimID int64, trigger domainwf.Trigger, actor *entity.Actor, note string, mutate MutateFunc) (*entity.Claim, error)

	// PermittedTriggers returns the triggers available from the claim's current status
	PermittedTriggers(claim *entity.Claim) []domainwf.Trigger
}
