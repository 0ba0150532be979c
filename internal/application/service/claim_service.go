package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/garyjia/lecturer-claims/internal/application/port"
	"github.com/garyjia/lecturer-claims/internal/application/workflow"
	"github.com/garyjia/lecturer-claims/internal/domain/entity"
	domainwf "github.com/garyjia/lecturer-claims/internal/domain/workflow"
	"github.com/garyjia/lecturer-claims/pkg/utils"
	"github.com/shopspring/decimal"
)

// UnknownReviewer is recorded when the reviewing actor has no display name
const UnknownReviewer = "Unknown"

// Decision is a reviewer's verdict on a pending claim
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

var decisionTriggers = map[Decision]domainwf.Trigger{
	DecisionApprove: domainwf.TriggerApprove,
	DecisionReject:  domainwf.TriggerReject,
}

// Action is a lifecycle operation an actor may take on a claim
type Action string

const (
	ActionApprove  Action = "approve"
	ActionReject   Action = "reject"
	ActionMarkPaid Action = "pay"
)

// triggerActions maps each lifecycle trigger to its action and the roles allowed to fire it
var triggerActions = map[domainwf.Trigger]struct {
	action    Action
	permitted func(entity.Role) bool
}{
	domainwf.TriggerApprove:  {ActionApprove, entity.Role.CanReview},
	domainwf.TriggerReject:   {ActionReject, entity.Role.CanReview},
	domainwf.TriggerMarkPaid: {ActionMarkPaid, entity.Role.CanMarkPaid},
}

// ClaimDetail is a visible claim plus the actions the viewing actor may take on it
type ClaimDetail struct {
	Claim          *entity.Claim
	AllowedActions []Action
}

// ListView names which list ListForActor produced
type ListView string

const (
	ViewOwn         ListView = "own"
	ViewApproved    ListView = "approved"
	ViewReviewQueue ListView = "review_queue"
)

// ClaimList is the result of ListForActor
type ClaimList struct {
	View   ListView        `json:"view"`
	Claims []*entity.Claim `json:"claims"`
}

// Upload is a supporting document received with a submission
type Upload struct {
	FileName string
	Content  []byte
}

// SubmitRequest carries the lecturer's input for a new claim
type SubmitRequest struct {
	HoursWorked decimal.Decimal
	HourlyRate  decimal.Decimal
	ClaimMonth  time.Time
	Notes       string
	Document    *Upload
}

// ClaimService implements the claim lifecycle operations for an authenticated actor
type ClaimService interface {
	Submit(ctx context.Context, actorID string, req SubmitRequest) (*entity.Claim, error)
	Review(ctx context.Context, actorID string, claimID int64, decision Decision, rejectionReason string) (*entity.Claim, error)
	MarkPaid(ctx context.Context, actorID string, claimID int64) (*entity.Claim, error)
	ListForActor(ctx context.Context, actorID string) (*ClaimList, error)
	GetVisible(ctx context.Context, actorID string, claimID int64) (*entity.Claim, error)
	GetDetail(ctx context.Context, actorID string, claimID int64) (*ClaimDetail, error)
	DownloadDocument(ctx context.Context, actorID string, claimID int64) (*entity.Document, error)
	History(ctx context.Context, actorID string, claimID int64) ([]*entity.ClaimHistory, error)
}

// listPolicy describes one role's claim list
type listPolicy struct {
	view     ListView
	query    func(actor *entity.Actor) port.ClaimQuery
	fallback *listPolicy
}

var (
	approvedPolicy = listPolicy{
		view: ViewApproved,
		query: func(*entity.Actor) port.ClaimQuery {
			return port.ClaimQuery{
				Statuses:  []string{entity.ClaimStatusApproved},
				OrderBy:   port.SortByClaimMonth,
				Direction: port.Ascending,
			}
		},
	}

	ownPolicy = listPolicy{
		view: ViewOwn,
		query: func(actor *entity.Actor) port.ClaimQuery {
			return port.ClaimQuery{
				LecturerID: actor.ID,
				OrderBy:    port.SortBySubmittedAt,
				Direction:  port.Descending,
			}
		},
	}

	reviewQueuePolicy = listPolicy{
		view: ViewReviewQueue,
		query: func(*entity.Actor) port.ClaimQuery {
			return port.ClaimQuery{
				Statuses:  []string{entity.ClaimStatusPending},
				OrderBy:   port.SortBySubmittedAt,
				Direction: port.Ascending,
			}
		},
	}

	// HR with no claims of their own see the payment queue
	hrPolicy = listPolicy{
		view:     ownPolicy.view,
		query:    ownPolicy.query,
		fallback: &approvedPolicy,
	}
)

var listPolicies = map[entity.Role]listPolicy{
	entity.RoleLecturer:             ownPolicy,
	entity.RoleHR:                   hrPolicy,
	entity.RoleProgrammeCoordinator: reviewQueuePolicy,
	entity.RoleAcademicManager:      reviewQueuePolicy,
}

func ownClaimsOnly(actor *entity.Actor, claim *entity.Claim) bool {
	return claim.IsOwnedBy(actor.ID)
}

func anyClaim(*entity.Actor, *entity.Claim) bool {
	return true
}

var visibilityRules = map[entity.Role]func(actor *entity.Actor, claim *entity.Claim) bool{
	entity.RoleLecturer:             ownClaimsOnly,
	entity.RoleHR:                   anyClaim,
	entity.RoleProgrammeCoordinator: anyClaim,
	entity.RoleAcademicManager:      anyClaim,
}

type claimServiceImpl struct {
	actors      actorResolver
	claimRepo   port.ClaimRepository
	historyRepo port.ClaimHistoryRepository
	documents   port.DocumentStore
	engine      workflow.ClaimEngine
	logger      Logger
	now         func() time.Time
}

// Option configures the services in this package
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides the time source used for submission timestamps and report dates
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewClaimService creates a new ClaimService
func NewClaimService(
	directory port.ActorDirectory,
	claimRepo port.ClaimRepository,
	historyRepo port.ClaimHistoryRepository,
	documents port.DocumentStore,
	engine workflow.ClaimEngine,
	logger Logger,
	opts ...Option,
) ClaimService {
	o := buildOptions(opts)
	return &claimServiceImpl{
		actors:      actorResolver{directory: directory},
		claimRepo:   claimRepo,
		historyRepo: historyRepo,
		documents:   documents,
		engine:      engine,
		logger:      logger,
		now:         o.now,
	}
}

// Submit validates and records a new pending claim for any known actor
func (s *claimServiceImpl) Submit(ctx context.Context, actorID string, req SubmitRequest) (*entity.Claim, error) {
	actor, err := s.actors.resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}

	if err := utils.ValidateRange(req.HoursWorked, entity.MinHoursWorked, entity.MaxHoursWorked); err != nil {
		return nil, entity.NewValidationError("hours_worked", "%v", err)
	}
	if err := utils.ValidateRange(req.HourlyRate, entity.MinHourlyRate, entity.MaxHourlyRate); err != nil {
		return nil, entity.NewValidationError("hourly_rate", "%v", err)
	}

	notes := utils.SanitizeString(req.Notes)
	if n := utf8.RuneCountInString(notes); n > entity.MaxNotesLength {
		return nil, entity.NewValidationError("notes", "must be at most %d characters, got %d", entity.MaxNotesLength, n)
	}

	if req.Document != nil && len(req.Document.Content) == 0 {
		return nil, entity.NewValidationError("supporting_document", "must not be empty")
	}

	now := s.now()
	claim := &entity.Claim{
		LecturerID:  actor.ID,
		HoursWorked: req.HoursWorked,
		HourlyRate:  req.HourlyRate,
		ClaimMonth:  entity.MonthStart(req.ClaimMonth, now),
		Notes:       notes,
		SubmittedAt: now,
	}

	if req.Document != nil {
		fileName := utils.SanitizeFilename(req.Document.FileName)
		key, err := s.documents.Store(ctx, req.Document.Content, fileName)
		if err != nil {
			s.logger.Error("Failed to store supporting document", "error", err, "actor_id", actor.ID)
			return nil, fmt.Errorf("failed to store supporting document: %w", err)
		}
		claim.DocumentKey = key
		claim.OriginalFileName = fileName
	}

	if err := s.engine.Submit(ctx, claim, actor); err != nil {
		s.logger.Error("Failed to submit claim", "error", err, "actor_id", actor.ID)
		if claim.HasDocument() {
			if delErr := s.documents.Delete(ctx, claim.DocumentKey); delErr != nil {
				s.logger.Error("Failed to remove orphaned document", "error", delErr, "key", claim.DocumentKey)
			}
		}
		return nil, err
	}

	s.logger.Info("Claim submitted",
		"id", claim.ID,
		"lecturer_id", claim.LecturerID,
		"claim_month", claim.ClaimMonth.Format("2006-01"),
		"total_amount", claim.TotalAmount().String())
	return claim, nil
}

// Review approves or rejects a pending claim
func (s *claimServiceImpl) Review(
	ctx context.Context,
	actorID string,
	claimID int64,
	decision Decision,
	rejectionReason string,
) (*entity.Claim, error) {
	actor, err := s.actors.require(ctx, actorID, entity.RoleProgrammeCoordinator, entity.RoleAcademicManager)
	if err != nil {
		return nil, err
	}

	trigger, ok := decisionTriggers[decision]
	if !ok {
		return nil, entity.NewValidationError("decision", "must be %q or %q", DecisionApprove, DecisionReject)
	}

	reason := ""
	if decision == DecisionReject {
		reason = utils.SanitizeString(rejectionReason)
		if reason == "" {
			return nil, entity.NewValidationError("rejection_reason", "required when rejecting a claim")
		}
	}

	reviewedBy := actor.DisplayName
	if strings.TrimSpace(reviewedBy) == "" {
		reviewedBy = UnknownReviewer
	}

	claim, err := s.engine.Apply(ctx, claimID, trigger, actor, reason, func(c *entity.Claim, now time.Time) {
		reviewedAt := now
		c.ReviewedAt = &reviewedAt
		c.ReviewedBy = reviewedBy
		c.RejectionReason = reason
	})
	if err != nil {
		s.logger.Error("Failed to review claim", "error", err, "id", claimID, "decision", string(decision))
		return nil, err
	}

	s.logger.Info("Claim reviewed", "id", claim.ID, "status", claim.Status, "reviewed_by", claim.ReviewedBy)
	return claim, nil
}

// MarkPaid moves an approved claim to paid
func (s *claimServiceImpl) MarkPaid(ctx context.Context, actorID string, claimID int64) (*entity.Claim, error) {
	actor, err := s.actors.require(ctx, actorID, entity.RoleHR)
	if err != nil {
		return nil, err
	}

	claim, err := s.engine.Apply(ctx, claimID, domainwf.TriggerMarkPaid, actor, "", nil)
	if err != nil {
		s.logger.Error("Failed to mark claim paid", "error", err, "id", claimID)
		return nil, err
	}

	s.logger.Info("Claim marked paid", "id", claim.ID, "actor_id", actor.ID)
	return claim, nil
}

// ListForActor returns the claim list appropriate to the actor's role
func (s *claimServiceImpl) ListForActor(ctx context.Context, actorID string) (*ClaimList, error) {
	actor, err := s.actors.resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}

	policy, ok := listPolicies[actor.Role]
	if !ok {
		return nil, fmt.Errorf("%w: no claim list for role %s", entity.ErrForbidden, actor.Role)
	}

	for p := &policy; p != nil; p = p.fallback {
		claims, err := s.claimRepo.Query(ctx, p.query(actor))
		if err != nil {
			s.logger.Error("Failed to list claims", "error", err, "actor_id", actor.ID, "view", string(p.view))
			return nil, fmt.Errorf("failed to list claims: %w", err)
		}
		if len(claims) > 0 || p.fallback == nil {
			if claims == nil {
				claims = []*entity.Claim{}
			}
			return &ClaimList{View: p.view, Claims: claims}, nil
		}
	}

	return &ClaimList{View: policy.view, Claims: []*entity.Claim{}}, nil
}

// GetVisible returns the claim if the actor may see it
func (s *claimServiceImpl) GetVisible(ctx context.Context, actorID string, claimID int64) (*entity.Claim, error) {
	actor, err := s.actors.resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}
	return s.visibleTo(ctx, actor, claimID)
}

// GetDetail returns the visible claim with the lifecycle actions open to the actor
func (s *claimServiceImpl) GetDetail(ctx context.Context, actorID string, claimID int64) (*ClaimDetail, error) {
	actor, err := s.actors.resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}

	claim, err := s.visibleTo(ctx, actor, claimID)
	if err != nil {
		return nil, err
	}

	actions := []Action{}
	for _, trigger := range s.engine.PermittedTriggers(claim) {
		if ta, ok := triggerActions[trigger]; ok && ta.permitted(actor.Role) {
			actions = append(actions, ta.action)
		}
	}

	return &ClaimDetail{Claim: claim, AllowedActions: actions}, nil
}

func (s *claimServiceImpl) visibleTo(ctx context.Context, actor *entity.Actor, claimID int64) (*entity.Claim, error) {
	claim, err := s.claimRepo.GetByID(ctx, claimID)
	if err != nil {
		s.logger.Error("Failed to get claim", "error", err, "id", claimID)
		return nil, fmt.Errorf("failed to get claim: %w", err)
	}
	if claim == nil {
		return nil, fmt.Errorf("claim %d: %w", claimID, entity.ErrNotFound)
	}

	canView, ok := visibilityRules[actor.Role]
	if !ok || !canView(actor, claim) {
		return nil, fmt.Errorf("%w: claim %d belongs to another lecturer", entity.ErrForbidden, claimID)
	}

	return claim, nil
}

// DownloadDocument returns the claim's supporting document
func (s *claimServiceImpl) DownloadDocument(ctx context.Context, actorID string, claimID int64) (*entity.Document, error) {
	claim, err := s.GetVisible(ctx, actorID, claimID)
	if err != nil {
		return nil, err
	}

	if !claim.HasDocument() {
		return nil, fmt.Errorf("claim %d has no supporting document: %w", claimID, entity.ErrNotFound)
	}

	content, err := s.documents.Retrieve(ctx, claim.DocumentKey)
	if err != nil {
		s.logger.Error("Failed to retrieve document", "error", err, "id", claimID, "key", claim.DocumentKey)
		return nil, fmt.Errorf("failed to retrieve document: %w", err)
	}

	return &entity.Document{
		Content:     content,
		FileName:    claim.OriginalFileName,
		ContentType: s.documents.ContentType(claim.OriginalFileName),
	}, nil
}

// History returns the claim's lifecycle transitions, oldest first
func (s *claimServiceImpl) History(ctx context.Context, actorID string, claimID int64) ([]*entity.ClaimHistory, error) {
	if _, err := s.GetVisible(ctx, actorID, claimID); err != nil {
		return nil, err
	}

	history, err := s.historyRepo.GetByClaimID(ctx, claimID)
	if err != nil {
		s.logger.Error("Failed to get claim history", "error", err, "id", claimID)
		return nil, fmt.Errorf("failed to get claim history: %w", err)
	}

	return history, nil
}
