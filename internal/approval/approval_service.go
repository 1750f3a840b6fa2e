package approval

import (
	"context"
	"strings"

	approvalerrors "go-timeoff/internal/approval/errors"
	"go-timeoff/internal/authz"
	"go-timeoff/internal/shared/apperror"
	"go-timeoff/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Decider applies a decision to the entity an approval covers. Approve
// and Reject run the subject's own lifecycle transition, which also
// settles the approval row in the same transaction.
type Decider interface {
	SubjectOwner(ctx context.Context, actor authz.Actor, subjectID uuid.UUID) (string, error)
	Approve(ctx context.Context, actor authz.Actor, subjectID uuid.UUID) error
	Reject(ctx context.Context, actor authz.Actor, subjectID uuid.UUID, reason string) error
	// OpenSubjects returns the subset of subjectIDs that can still be
	// decided. A subject withdrawn by its owner is not open.
	OpenSubjects(ctx context.Context, actor authz.Actor, subjectIDs []uuid.UUID) (map[uuid.UUID]bool, error)
}

//go:generate mockgen -source=approval_service.go -destination=mock/approval_service_mock.go -package=mock
type Service interface {
	RecordDecision(ctx context.Context, actor authz.Actor, approvalID string, decision Decision, reason string) (ApprovalResponse, error)
	GetByID(ctx context.Context, actor authz.Actor, id string) (ApprovalResponse, error)
	// ListPending returns the pending approvals assigned to actor, or every
	// pending approval when actor may decide any of them.
	ListPending(ctx context.Context, actor authz.Actor) ([]ApprovalResponse, error)
}

type service struct {
	repo     Repository
	port     authz.Port
	deciders map[SubjectKind]Decider
	logger   *zap.Logger
}

func NewService(repo Repository, port authz.Port, deciders map[SubjectKind]Decider, logger ...*zap.Logger) Service {
	l := zap.L().Named("approval.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("approval.service")
	}
	return &service{repo: repo, port: port, deciders: deciders, logger: l}
}

func (s *service) RecordDecision(ctx context.Context, actor authz.Actor, approvalID string, decision Decision, reason string) (ApprovalResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)
	log.Debug("record decision requested",
		zap.String("approval_id", approvalID),
		zap.String("actor_id", actor.ID),
		zap.String("decision", string(decision)),
	)

	if decision != DecisionApprove && decision != DecisionReject {
		return ApprovalResponse{}, approvalerrors.ErrInvalidDecision
	}

	a, err := s.load(ctx, actor, approvalID)
	if err != nil {
		return ApprovalResponse{}, err
	}
	if a.Status != StatusPending {
		log.Warn("decision on settled approval",
			zap.String("approval_id", approvalID),
			zap.String("status", string(a.Status)),
		)
		return ApprovalResponse{}, approvalerrors.ErrApprovalNotPending
	}

	decider, ok := s.deciders[a.Subject.Kind]
	if !ok {
		log.Error("no decider for approval subject", zap.String("subject_kind", string(a.Subject.Kind)))
		return ApprovalResponse{}, approvalerrors.ErrUnknownSubjectKind
	}

	if err := s.authorize(ctx, actor, a, decider); err != nil {
		log.Warn("decision not authorized",
			zap.String("approval_id", approvalID),
			zap.String("actor_id", actor.ID),
			zap.Error(err),
		)
		return ApprovalResponse{}, err
	}

	switch decision {
	case DecisionApprove:
		err = decider.Approve(ctx, actor, a.Subject.ID)
	case DecisionReject:
		err = decider.Reject(ctx, actor, a.Subject.ID, reason)
	}
	if err != nil {
		return ApprovalResponse{}, err
	}

	decided, err := s.load(ctx, actor, approvalID)
	if err != nil {
		return ApprovalResponse{}, err
	}

	log.Info("decision recorded",
		zap.String("approval_id", approvalID),
		zap.String("status", string(decided.Status)),
		zap.String("actor_id", actor.ID),
	)
	return mapToResponse(decided), nil
}

// authorize allows the assigned approver or an actor holding approve_any,
// and never the owner of the subject.
func (s *service) authorize(ctx context.Context, actor authz.Actor, a *Approval, decider Decider) error {
	owner, err := decider.SubjectOwner(ctx, actor, a.Subject.ID)
	if err != nil {
		return err
	}
	if strings.EqualFold(owner, actor.ID) {
		return approvalerrors.ErrSelfApproval
	}

	if strings.EqualFold(a.AssignedTo.String(), actor.ID) {
		return nil
	}

	allowed, err := s.port.Can(ctx, actor, authz.CapabilityApproveAny, resourceFor(a.Subject.Kind))
	if err != nil {
		return apperror.ErrInternal.WithError(err)
	}
	if !allowed {
		return approvalerrors.ErrNotAssignedApprover
	}
	return nil
}

func (s *service) GetByID(ctx context.Context, actor authz.Actor, id string) (ApprovalResponse, error) {
	a, err := s.load(ctx, actor, id)
	if err != nil {
		return ApprovalResponse{}, err
	}
	if strings.EqualFold(a.AssignedTo.String(), actor.ID) {
		return mapToResponse(a), nil
	}

	if decider, ok := s.deciders[a.Subject.Kind]; ok {
		owner, err := decider.SubjectOwner(ctx, actor, a.Subject.ID)
		if err != nil {
			return ApprovalResponse{}, err
		}
		if strings.EqualFold(owner, actor.ID) {
			return mapToResponse(a), nil
		}
	}

	allowed, err := s.port.Can(ctx, actor, authz.CapabilityApproveAny, resourceFor(a.Subject.Kind))
	if err != nil {
		return ApprovalResponse{}, apperror.ErrInternal.WithError(err)
	}
	if !allowed {
		return ApprovalResponse{}, approvalerrors.ErrApprovalNotFound
	}
	return mapToResponse(a), nil
}

func (s *service) ListPending(ctx context.Context, actor authz.Actor) ([]ApprovalResponse, error) {
	allowed, err := s.port.Can(ctx, actor, authz.CapabilityApproveAny, authz.ResourceTimeOff)
	if err != nil {
		return nil, apperror.ErrInternal.WithError(err)
	}

	var assignee *string
	if !allowed {
		assignee = &actor.ID
	}

	items, err := s.repo.ListPending(ctx, actor.Organization, assignee)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	items, err = s.dropClosedSubjects(ctx, actor, items)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(items), nil
}

// dropClosedSubjects filters out pending approvals whose subject can no
// longer be decided, such as a cancelled time-off request.
func (s *service) dropClosedSubjects(ctx context.Context, actor authz.Actor, items []Approval) ([]Approval, error) {
	byKind := map[SubjectKind][]uuid.UUID{}
	for _, a := range items {
		byKind[a.Subject.Kind] = append(byKind[a.Subject.Kind], a.Subject.ID)
	}

	open := map[SubjectKind]map[uuid.UUID]bool{}
	for kind, ids := range byKind {
		decider, ok := s.deciders[kind]
		if !ok {
			continue
		}
		subjects, err := decider.OpenSubjects(ctx, actor, ids)
		if err != nil {
			contextutil.GetLogger(ctx, s.logger).Error("open subject lookup failed",
				zap.String("subject_kind", string(kind)),
				zap.Error(err),
			)
			return nil, err
		}
		open[kind] = subjects
	}

	kept := items[:0]
	for _, a := range items {
		subjects, known := open[a.Subject.Kind]
		if known && !subjects[a.Subject.ID] {
			continue
		}
		kept = append(kept, a)
	}
	return kept, nil
}

func (s *service) load(ctx context.Context, actor authz.Actor, id string) (*Approval, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, approvalerrors.ErrInvalidApprovalID
	}
	a, err := s.repo.FindByID(ctx, actor.Organization, id)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return a, nil
}

func resourceFor(kind SubjectKind) string {
	switch kind {
	case SubjectTimeOffRequest:
		return authz.ResourceTimeOff
	default:
		return authz.ResourceApproval
	}
}
