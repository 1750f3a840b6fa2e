package timeoff

import (
	"context"

	"go-timeoff/internal/approval"
	"go-timeoff/internal/authz"

	"github.com/google/uuid"
)

type approvalDecider struct {
	repo    Repository
	service Service
}

// NewApprovalDecider lets the approval service drive time-off transitions.
func NewApprovalDecider(repo Repository, service Service) approval.Decider {
	return &approvalDecider{repo: repo, service: service}
}

func (d *approvalDecider) SubjectOwner(ctx context.Context, actor authz.Actor, subjectID uuid.UUID) (string, error) {
	r, err := d.repo.FindByID(ctx, actor.Organization, subjectID.String())
	if err != nil {
		return "", mapRepositoryError(err)
	}
	return r.EmployeeID.String(), nil
}

func (d *approvalDecider) Approve(ctx context.Context, actor authz.Actor, subjectID uuid.UUID) error {
	_, err := d.service.Approve(ctx, actor, subjectID.String())
	return err
}

func (d *approvalDecider) Reject(ctx context.Context, actor authz.Actor, subjectID uuid.UUID, reason string) error {
	_, err := d.service.Reject(ctx, actor, subjectID.String(), reason)
	return err
}

func (d *approvalDecider) OpenSubjects(ctx context.Context, actor authz.Actor, subjectIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	pending, err := d.repo.PendingIDs(ctx, actor.Organization, subjectIDs)
	if err != nil {
		return nil, err
	}
	open := make(map[uuid.UUID]bool, len(pending))
	for _, id := range pending {
		open[id] = true
	}
	return open, nil
}
