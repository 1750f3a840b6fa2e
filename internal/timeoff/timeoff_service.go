package timeoff

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go-timeoff/internal/approval"
	approvalerrors "go-timeoff/internal/approval/errors"
	"go-timeoff/internal/authz"
	"go-timeoff/internal/balance"
	"go-timeoff/internal/events"
	"go-timeoff/internal/notification"
	"go-timeoff/internal/shared/apperror"
	"go-timeoff/internal/shared/contextutil"
	"go-timeoff/internal/shared/counter"
	"go-timeoff/internal/tenant"
	timeofferrors "go-timeoff/internal/timeoff/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const DefaultMaxReasonLength = 1000

// BalanceCache drops cached balance reads after the ledger changes.
type BalanceCache interface {
	Invalidate(ctx context.Context, organizationID, employeeID string, period int) error
}

type Membership interface {
	BelongsToOrganization(ctx context.Context, org tenant.OrganizationContext, employeeID string) (bool, error)
}

//go:generate mockgen -source=timeoff_service.go -destination=mock/timeoff_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, actor authz.Actor, req CreateTimeOffRequest) (TimeOffResponse, error)
	// Approve and Reject trust the caller's authorization; the approval
	// service decides who may call them.
	Approve(ctx context.Context, actor authz.Actor, id string) (TimeOffResponse, error)
	Reject(ctx context.Context, actor authz.Actor, id, reason string) (TimeOffResponse, error)
	Cancel(ctx context.Context, actor authz.Actor, id string) (TimeOffResponse, error)
	GetAll(ctx context.Context, actor authz.Actor, filter ListFilter) ([]TimeOffResponse, error)
	GetByID(ctx context.Context, actor authz.Actor, id string) (TimeOffResponse, error)
}

// Dependencies lists what the lifecycle needs. Cache, Dispatcher, Now and
// MaxReasonLength have defaults.
type Dependencies struct {
	DB              *sql.DB
	Repo            Repository
	Approvals       approval.Repository
	Router          approval.Router
	Ledger          balance.Ledger
	Cache           BalanceCache
	Membership      Membership
	Counter         counter.Repository
	Port            authz.Port
	Dispatcher      notification.Dispatcher
	Validator       *Validator
	MaxReasonLength int
	Now             func() time.Time
}

type service struct {
	Dependencies
	logger *zap.Logger
}

func NewService(deps Dependencies, logger ...*zap.Logger) Service {
	l := zap.L().Named("timeoff.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("timeoff.service")
	}
	if deps.Dispatcher == nil {
		deps.Dispatcher = notification.NewNoopDispatcher()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.MaxReasonLength <= 0 {
		deps.MaxReasonLength = DefaultMaxReasonLength
	}
	if deps.Validator == nil {
		deps.Validator = NewValidator([]string{string(TypeVacation)})
	}
	return &service{Dependencies: deps, logger: l}
}

func (s *service) Create(ctx context.Context, actor authz.Actor, req CreateTimeOffRequest) (TimeOffResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)
	log.Debug("create time-off requested",
		zap.String("actor_id", actor.ID),
		zap.String("employee_id", req.EmployeeID),
		zap.String("type", req.Type),
		zap.String("start_date", req.StartDate),
		zap.Bool("is_half_day", req.IsHalfDay),
	)

	actorUUID, err := uuid.Parse(actor.ID)
	if err != nil {
		return TimeOffResponse{}, apperror.ErrUnauthorized
	}

	employeeID := strings.TrimSpace(req.EmployeeID)
	if employeeID == "" {
		employeeID = actor.ID
	}
	employeeUUID, err := uuid.Parse(employeeID)
	if err != nil {
		return TimeOffResponse{}, apperror.InvalidField("employee_id")
	}
	if employeeUUID != actorUUID {
		allowed, err := s.Port.Can(ctx, actor, authz.CapabilityEdit, authz.ResourceTimeOff)
		if err != nil {
			return TimeOffResponse{}, apperror.ErrInternal.WithError(err)
		}
		if !allowed {
			log.Warn("create on behalf denied",
				zap.String("actor_id", actor.ID),
				zap.String("employee_id", employeeID),
			)
			return TimeOffResponse{}, timeofferrors.ErrCreateOnBehalfNotAllowed
		}
	}

	draft, err := parseDraft(req)
	if err != nil {
		return TimeOffResponse{}, err
	}
	if err := s.Validator.CheckStructure(draft); err != nil {
		log.Warn("create time-off validation failed", zap.Error(err))
		return TimeOffResponse{}, err
	}

	belongs, err := s.Membership.BelongsToOrganization(ctx, actor.Organization, employeeID)
	if err != nil {
		log.Error("create time-off membership check failed", zap.Error(err))
		return TimeOffResponse{}, err
	}
	if !belongs {
		return TimeOffResponse{}, apperror.ErrValidation.WithDetails(apperror.FieldErrors{
			"employee_id": "Employee does not belong to this organization",
		})
	}

	approverID, err := s.Router.ResolveApprover(ctx, actor.Organization, employeeID, string(draft.Type))
	if err != nil {
		return TimeOffResponse{}, err
	}
	approverUUID, err := uuid.Parse(approverID)
	if err != nil {
		log.Error("approver id is not a uuid", zap.String("approver_id", approverID))
		return TimeOffResponse{}, approvalerrors.ErrNoApproverConfigured
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		log.Error("create time-off begin tx failed", zap.Error(err))
		return TimeOffResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.Repo.WithTx(tx)

	overlap, err := qtx.HasOverlap(ctx, actor.Organization, employeeID, *draft.StartDate, lastDay(draft), draft.IsHalfDay)
	if err != nil {
		log.Error("create time-off overlap check failed", zap.Error(err))
		return TimeOffResponse{}, err
	}
	if overlap {
		log.Warn("create time-off overlap detected",
			zap.String("employee_id", employeeID),
			zap.String("start_date", req.StartDate),
		)
		return TimeOffResponse{}, timeofferrors.ErrTimeOffOverlap
	}

	var ec EmployeeContext
	if s.Validator.ConsumesBalance(draft.Type) {
		ec.Balance, err = s.Ledger.Find(ctx, tx, actor.Organization, employeeID, draft.StartDate.Year())
		if err != nil {
			log.Error("create time-off balance lookup failed", zap.Error(err))
			return TimeOffResponse{}, err
		}
	}

	vr, err := s.Validator.Validate(draft, ec)
	if err != nil {
		log.Warn("create time-off rejected", zap.String("employee_id", employeeID), zap.Error(err))
		return TimeOffResponse{}, err
	}

	seq, err := s.Counter.WithTx(tx).GetNextValue(ctx, actor.Organization.String(), counter.TypeTimeOffReference)
	if err != nil {
		log.Error("create time-off reference failed", zap.Error(err))
		return TimeOffResponse{}, err
	}

	r := &TimeOffRequest{
		ID:             uuid.New(),
		OrganizationID: actor.Organization.ID,
		EmployeeID:     employeeUUID,
		Reference:      fmt.Sprintf("TO-%06d", seq),
		Period:         vr.Period,
		Type:           vr.Type,
		Status:         StatusPending,
		StartDate:      vr.StartDate,
		EndDate:        vr.EndDate,
		IsHalfDay:      vr.IsHalfDay,
		Units:          vr.Units,
		WeekdayUnits:   vr.WeekdayUnits,
		Reason:         strings.TrimSpace(req.Reason),
		CreatedBy:      actorUUID,
	}
	if err := qtx.Create(ctx, r); err != nil {
		log.Error("create time-off persist failed", zap.Error(err))
		return TimeOffResponse{}, err
	}

	a := &approval.Approval{
		ID:             uuid.New(),
		OrganizationID: actor.Organization.ID,
		Subject:        approval.TimeOffRequestSubject(r.ID),
		AssignedTo:     approverUUID,
		Status:         approval.StatusPending,
	}
	if err := s.Approvals.WithTx(tx).Create(ctx, a); err != nil {
		log.Error("create time-off approval persist failed", zap.Error(err))
		return TimeOffResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		log.Error("create time-off commit failed", zap.Error(err))
		return TimeOffResponse{}, err
	}

	log.Info("create time-off success",
		zap.String("time_off_id", r.ID.String()),
		zap.String("reference", r.Reference),
		zap.String("employee_id", employeeID),
		zap.String("approver_id", approverID),
		zap.Int64("units", int64(r.Units)),
	)
	s.notify(ctx, events.EventTimeOffRequested, *r, approverID, actor.ID)

	return mapToResponse(*r), nil
}

func (s *service) Approve(ctx context.Context, actor authz.Actor, id string) (TimeOffResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)
	log.Debug("approve time-off requested", zap.String("time_off_id", id), zap.String("actor_id", actor.ID))

	actorUUID, err := uuid.Parse(actor.ID)
	if err != nil {
		return TimeOffResponse{}, apperror.ErrUnauthorized
	}
	if _, err := uuid.Parse(id); err != nil {
		return TimeOffResponse{}, timeofferrors.ErrInvalidRequestID
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		log.Error("approve time-off begin tx failed", zap.Error(err))
		return TimeOffResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.Repo.WithTx(tx)

	r, err := qtx.FindByIDForUpdate(ctx, actor.Organization, id)
	if err != nil {
		return TimeOffResponse{}, mapRepositoryError(err)
	}
	if r.Status != StatusPending {
		log.Warn("approve time-off invalid transition",
			zap.String("time_off_id", id),
			zap.String("status", string(r.Status)),
		)
		return TimeOffResponse{}, timeofferrors.ErrInvalidTransition
	}

	if s.Validator.ConsumesBalance(r.Type) {
		if _, err := s.Ledger.Debit(ctx, tx, actor.Organization, r.EmployeeID.String(), r.Period, r.Units); err != nil {
			return TimeOffResponse{}, err
		}
	}

	if err := s.transition(ctx, qtx, r, StatusPending, StatusApproved); err != nil {
		return TimeOffResponse{}, err
	}
	if err := s.settleApproval(ctx, tx, actor.Organization, r.ID, approval.StatusApproved, actorUUID, nil); err != nil {
		return TimeOffResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		log.Error("approve time-off commit failed", zap.Error(err))
		return TimeOffResponse{}, err
	}

	log.Info("approve time-off success",
		zap.String("time_off_id", id),
		zap.String("actor_id", actor.ID),
		zap.Int64("units", int64(r.Units)),
	)
	s.invalidate(ctx, *r)
	s.notify(ctx, events.EventTimeOffApproved, *r, r.EmployeeID.String(), actor.ID)

	return mapToResponse(*r), nil
}

func (s *service) Reject(ctx context.Context, actor authz.Actor, id, reason string) (TimeOffResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)
	log.Debug("reject time-off requested", zap.String("time_off_id", id), zap.String("actor_id", actor.ID))

	actorUUID, err := uuid.Parse(actor.ID)
	if err != nil {
		return TimeOffResponse{}, apperror.ErrUnauthorized
	}
	if _, err := uuid.Parse(id); err != nil {
		return TimeOffResponse{}, timeofferrors.ErrInvalidRequestID
	}

	reason = strings.TrimSpace(reason)
	switch {
	case reason == "":
		return TimeOffResponse{}, apperror.ErrValidation.WithDetails(apperror.FieldErrors{
			"rejection_reason": "Rejection Reason is required",
		})
	case utf8.RuneCountInString(reason) > s.MaxReasonLength:
		return TimeOffResponse{}, apperror.ErrValidation.WithDetails(apperror.FieldErrors{
			"rejection_reason": fmt.Sprintf("Rejection Reason must be at most %d characters", s.MaxReasonLength),
		})
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		log.Error("reject time-off begin tx failed", zap.Error(err))
		return TimeOffResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.Repo.WithTx(tx)

	r, err := qtx.FindByIDForUpdate(ctx, actor.Organization, id)
	if err != nil {
		return TimeOffResponse{}, mapRepositoryError(err)
	}
	if r.Status != StatusPending {
		log.Warn("reject time-off invalid transition",
			zap.String("time_off_id", id),
			zap.String("status", string(r.Status)),
		)
		return TimeOffResponse{}, timeofferrors.ErrInvalidTransition
	}

	if err := s.transition(ctx, qtx, r, StatusPending, StatusRejected); err != nil {
		return TimeOffResponse{}, err
	}
	if err := s.settleApproval(ctx, tx, actor.Organization, r.ID, approval.StatusRejected, actorUUID, &reason); err != nil {
		return TimeOffResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		log.Error("reject time-off commit failed", zap.Error(err))
		return TimeOffResponse{}, err
	}

	log.Info("reject time-off success", zap.String("time_off_id", id), zap.String("actor_id", actor.ID))
	s.notify(ctx, events.EventTimeOffRejected, *r, r.EmployeeID.String(), actor.ID)

	return mapToResponse(*r), nil
}

// Cancel withdraws a pending request or returns an approved one's units to
// the ledger.
func (s *service) Cancel(ctx context.Context, actor authz.Actor, id string) (TimeOffResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)
	log.Debug("cancel time-off requested", zap.String("time_off_id", id), zap.String("actor_id", actor.ID))

	if _, err := uuid.Parse(id); err != nil {
		return TimeOffResponse{}, timeofferrors.ErrInvalidRequestID
	}

	current, err := s.Repo.FindByID(ctx, actor.Organization, id)
	if err != nil {
		return TimeOffResponse{}, mapRepositoryError(err)
	}
	if !strings.EqualFold(current.EmployeeID.String(), actor.ID) {
		allowed, err := s.Port.Can(ctx, actor, authz.CapabilityEdit, authz.ResourceTimeOff)
		if err != nil {
			return TimeOffResponse{}, apperror.ErrInternal.WithError(err)
		}
		if !allowed {
			log.Warn("cancel time-off denied", zap.String("time_off_id", id), zap.String("actor_id", actor.ID))
			return TimeOffResponse{}, timeofferrors.ErrCancelNotAllowed
		}
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		log.Error("cancel time-off begin tx failed", zap.Error(err))
		return TimeOffResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.Repo.WithTx(tx)

	r, err := qtx.FindByIDForUpdate(ctx, actor.Organization, id)
	if err != nil {
		return TimeOffResponse{}, mapRepositoryError(err)
	}

	from := r.Status
	switch from {
	case StatusPending:
	case StatusApproved:
		if s.Validator.ConsumesBalance(r.Type) {
			if _, err := s.Ledger.Credit(ctx, tx, actor.Organization, r.EmployeeID.String(), r.Period, r.Units); err != nil {
				return TimeOffResponse{}, err
			}
		}
	default:
		log.Warn("cancel time-off invalid transition",
			zap.String("time_off_id", id),
			zap.String("status", string(r.Status)),
		)
		return TimeOffResponse{}, timeofferrors.ErrInvalidTransition
	}

	if err := s.transition(ctx, qtx, r, from, StatusCancelled); err != nil {
		return TimeOffResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		log.Error("cancel time-off commit failed", zap.Error(err))
		return TimeOffResponse{}, err
	}

	log.Info("cancel time-off success",
		zap.String("time_off_id", id),
		zap.String("from_status", string(from)),
		zap.String("actor_id", actor.ID),
	)
	if from == StatusApproved {
		s.invalidate(ctx, *r)
	}
	s.notify(ctx, events.EventTimeOffCancelled, *r, r.EmployeeID.String(), actor.ID)

	return mapToResponse(*r), nil
}

// GetAll lists the actor's own requests unless the actor may edit or
// approve any request, in which case filter.EmployeeID is honoured as is.
func (s *service) GetAll(ctx context.Context, actor authz.Actor, filter ListFilter) ([]TimeOffResponse, error) {
	seeAll, err := s.seesEveryone(ctx, actor)
	if err != nil {
		return nil, err
	}

	employeeID := filter.EmployeeID
	if !seeAll {
		employeeID = actor.ID
	}

	items, err := s.Repo.FindAll(ctx, actor.Organization, employeeID, filter.Status)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(items), nil
}

// GetByID is visible to the owner, the assigned approver and anyone who
// may see every request. Others get not found.
func (s *service) GetByID(ctx context.Context, actor authz.Actor, id string) (TimeOffResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return TimeOffResponse{}, timeofferrors.ErrInvalidRequestID
	}
	r, err := s.Repo.FindByID(ctx, actor.Organization, id)
	if err != nil {
		return TimeOffResponse{}, mapRepositoryError(err)
	}
	if strings.EqualFold(r.EmployeeID.String(), actor.ID) {
		return mapToResponse(*r), nil
	}

	a, err := s.Approvals.FindBySubject(ctx, actor.Organization, approval.TimeOffRequestSubject(r.ID))
	if err == nil && strings.EqualFold(a.AssignedTo.String(), actor.ID) {
		return mapToResponse(*r), nil
	}

	seeAll, err := s.seesEveryone(ctx, actor)
	if err != nil {
		return TimeOffResponse{}, err
	}
	if !seeAll {
		return TimeOffResponse{}, timeofferrors.ErrTimeOffNotFound
	}
	return mapToResponse(*r), nil
}

func (s *service) seesEveryone(ctx context.Context, actor authz.Actor) (bool, error) {
	for _, capability := range []authz.Capability{authz.CapabilityEdit, authz.CapabilityApproveAny} {
		allowed, err := s.Port.Can(ctx, actor, capability, authz.ResourceTimeOff)
		if err != nil {
			return false, apperror.ErrInternal.WithError(err)
		}
		if allowed {
			return true, nil
		}
	}
	return false, nil
}

// transition applies from -> to on the locked row and mirrors it on r.
func (s *service) transition(ctx context.Context, qtx Repository, r *TimeOffRequest, from, to Status) error {
	ok, err := qtx.UpdateStatus(ctx, r.ID, from, to)
	if err != nil {
		contextutil.GetLogger(ctx, s.logger).Error("time-off status update failed",
			zap.String("time_off_id", r.ID.String()),
			zap.Error(err),
		)
		return err
	}
	if !ok {
		return timeofferrors.ErrInvalidTransition
	}
	r.Status = to
	r.UpdatedAt = s.Now().UTC()
	return nil
}

func (s *service) settleApproval(ctx context.Context, tx *sql.Tx, org tenant.OrganizationContext, requestID uuid.UUID, status approval.Status, decidedBy uuid.UUID, reason *string) error {
	log := contextutil.GetLogger(ctx, s.logger)
	atx := s.Approvals.WithTx(tx)

	a, err := atx.FindBySubject(ctx, org, approval.TimeOffRequestSubject(requestID))
	if err != nil {
		log.Error("approval lookup failed", zap.String("time_off_id", requestID.String()), zap.Error(err))
		return mapApprovalError(err)
	}

	ok, err := atx.Decide(ctx, a.ID, status, decidedBy, reason, s.Now().UTC())
	if err != nil {
		log.Error("approval update failed", zap.String("approval_id", a.ID.String()), zap.Error(err))
		return err
	}
	if !ok {
		return approvalerrors.ErrApprovalNotPending
	}
	return nil
}

// invalidate and notify run after commit; failures never undo a transition.
func (s *service) invalidate(ctx context.Context, r TimeOffRequest) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Invalidate(ctx, r.OrganizationID.String(), r.EmployeeID.String(), r.Period); err != nil {
		contextutil.GetLogger(ctx, s.logger).Warn("balance cache invalidation failed",
			zap.String("employee_id", r.EmployeeID.String()),
			zap.Int("period", r.Period),
			zap.Error(err),
		)
	}
}

func (s *service) notify(ctx context.Context, eventType string, r TimeOffRequest, recipientID, actorID string) {
	event := events.TimeOffLifecycleEvent{
		EventType:      eventType,
		RequestID:      r.ID.String(),
		Reference:      r.Reference,
		OrganizationID: r.OrganizationID.String(),
		EmployeeID:     r.EmployeeID.String(),
		RecipientID:    recipientID,
		ActorID:        actorID,
		Status:         string(r.Status),
		Period:         r.Period,
		OccurredAt:     s.Now().UTC(),
	}
	if err := s.Dispatcher.Dispatch(ctx, event); err != nil {
		contextutil.GetLogger(ctx, s.logger).Error("time-off notification failed",
			zap.String("time_off_id", event.RequestID),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}

func parseDraft(req CreateTimeOffRequest) (Draft, error) {
	d := Draft{
		Type:      Type(strings.ToUpper(strings.TrimSpace(req.Type))),
		IsHalfDay: req.IsHalfDay,
	}
	fields := apperror.FieldErrors{}

	if raw := strings.TrimSpace(req.StartDate); raw != "" {
		start, err := time.Parse(dateLayout, raw)
		if err != nil {
			fields["start_date"] = "Start Date must use the YYYY-MM-DD format"
		} else {
			d.StartDate = &start
		}
	}
	if req.EndDate != nil && strings.TrimSpace(*req.EndDate) != "" {
		end, err := time.Parse(dateLayout, strings.TrimSpace(*req.EndDate))
		if err != nil {
			fields["end_date"] = "End Date must use the YYYY-MM-DD format"
		} else {
			d.EndDate = &end
		}
	}

	if len(fields) > 0 {
		return Draft{}, apperror.ErrValidation.WithDetails(fields)
	}
	return d, nil
}

func lastDay(d Draft) time.Time {
	if d.EndDate != nil {
		return *d.EndDate
	}
	return *d.StartDate
}
