package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/garyjia/lecturer-claims/internal/application/dispatcher"
	"github.com/garyjia/lecturer-claims/internal/application/port"
	"github.com/garyjia/lecturer-claims/internal/domain/entity"
	"github.com/garyjia/lecturer-claims/internal/domain/event"
	domainwf "github.com/garyjia/lecturer-claims/internal/domain/workflow"
)

var triggerEvents = map[domainwf.Trigger]event.Type{
	domainwf.TriggerApprove:  event.TypeClaimApproved,
	domainwf.TriggerReject:   event.TypeClaimRejected,
	domainwf.TriggerMarkPaid: event.TypeClaimPaid,
}

// engineImpl is the concrete implementation of ClaimEngine
type engineImpl struct {
	claimRepo   port.ClaimRepository
	historyRepo port.ClaimHistoryRepository
	txManager   port.TransactionManager
	dispatcher  dispatcher.Dispatcher
	now         func() time.Time
}

// EngineOption configures the claim engine
type EngineOption func(*engineImpl)

// WithDispatcher sets the event dispatcher for emitting events
func WithDispatcher(d dispatcher.Dispatcher) EngineOption {
	return func(e *engineImpl) {
		e.dispatcher = d
	}
}

// WithClock overrides the time source used for timestamps
func WithClock(now func() time.Time) EngineOption {
	return func(e *engineImpl) {
		e.now = now
	}
}

// NewEngine creates a new claim engine
func NewEngine(
	claimRepo port.ClaimRepository,
	historyRepo port.ClaimHistoryRepository,
	txManager port.TransactionManager,
	opts ...EngineOption,
) ClaimEngine {
	e := &engineImpl{
		claimRepo:   claimRepo,
		historyRepo: historyRepo,
		txManager:   txManager,
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Submit persists a new pending claim and records the submission in its history
func (e *engineImpl) Submit(ctx context.Context, claim *entity.Claim, actor *entity.Actor) error {
	if claim == nil {
		return fmt.Errorf("claim cannot be nil")
	}

	claim.Status = domainwf.StatePending.String()

	err := e.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := e.claimRepo.Create(txCtx, claim); err != nil {
			return fmt.Errorf("failed to create claim: %w", err)
		}

		history := &entity.ClaimHistory{
			ClaimID:        claim.ID,
			ActorID:        actor.ID,
			PreviousStatus: "",
			NewStatus:      claim.Status,
			Action:         ActionSubmit,
			Timestamp:      claim.SubmittedAt,
		}
		if err := e.historyRepo.Create(txCtx, history); err != nil {
			return fmt.Errorf("failed to create history record: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	e.emit(ctx, event.TypeClaimSubmitted, claim, actor, map[string]interface{}{
		"lecturer_id":  claim.LecturerID,
		"total_amount": claim.TotalAmount().String(),
	})

	return nil
}

// Apply loads the claim, fires the trigger, applies mutate and persists the result
func (e *engineImpl) Apply(
	ctx context.Context,
	claimID int64,
	trigger domainwf.Trigger,
	actor *entity.Actor,
	note string,
	mutate MutateFunc,
) (*entity.Claim, error) {
	var (
		claim         *entity.Claim
		previousState domainwf.State
	)

	err := e.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		claim, err = e.claimRepo.GetByID(txCtx, claimID)
		if err != nil {
			return fmt.Errorf("failed to fetch claim: %w", err)
		}
		if claim == nil {
			return fmt.Errorf("claim %d: %w", claimID, entity.ErrNotFound)
		}

		previousState = domainwf.State(claim.Status)
		if !previousState.IsValid() {
			return fmt.Errorf("invalid state in claim %d: %s", claimID, claim.Status)
		}

		machine := BuildClaimStateMachine(previousState)
		if err := machine.Fire(trigger); err != nil {
			return fmt.Errorf("claim %d: %w", claimID, err)
		}

		now := e.now()
		claim.Status = machine.State().String()
		if mutate != nil {
			mutate(claim, now)
		}

		if err := e.claimRepo.Update(txCtx, claim); err != nil {
			return fmt.Errorf("failed to update claim: %w", err)
		}

		history := &entity.ClaimHistory{
			ClaimID:        claim.ID,
			ActorID:        actor.ID,
			PreviousStatus: previousState.String(),
			NewStatus:      claim.Status,
			Action:         trigger.String(),
			Note:           note,
			Timestamp:      now,
		}
		if err := e.historyRepo.Create(txCtx, history); err != nil {
			return fmt.Errorf("failed to create history record: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	payload := map[string]interface{}{
		"previous_status": previousState.String(),
		"new_status":      claim.Status,
		"trigger":         trigger.String(),
	}
	if note != "" {
		payload["note"] = note
	}
	e.emit(ctx, triggerEvents[trigger], claim, actor, payload)

	return claim, nil
}

// PermittedTriggers returns the triggers available from the claim's current status
func (e *engineImpl) PermittedTriggers(claim *entity.Claim) []domainwf.Trigger {
	state := domainwf.State(claim.Status)
	if !state.IsValid() {
		return nil
	}
	return BuildClaimStateMachine(state).PermittedTriggers()
}

// emit fires the event asynchronously so handlers never block the caller
func (e *engineImpl) emit(ctx context.Context, eventType event.Type, claim *entity.Claim, actor *entity.Actor, payload map[string]interface{}) {
	if e.dispatcher == nil || eventType == "" {
		return
	}
	e.dispatcher.DispatchAsync(ctx, event.NewEvent(eventType, claim.ID, actor.ID, payload))
}
