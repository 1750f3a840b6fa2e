package approval

import "time"

type RejectRequest struct {
	RejectionReason string `json:"rejection_reason"`
}

type ApprovalResponse struct {
	ID              string     `json:"id"`
	SubjectKind     string     `json:"subject_kind"`
	SubjectID       string     `json:"subject_id"`
	AssignedTo      string     `json:"assigned_to"`
	Status          string     `json:"status"`
	ApprovedBy      *string    `json:"approved_by,omitempty"`
	RejectionReason *string    `json:"rejection_reason,omitempty"`
	DecidedAt       *time.Time `json:"decided_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

func mapToResponse(a *Approval) ApprovalResponse {
	resp := ApprovalResponse{
		ID:              a.ID.String(),
		SubjectKind:     string(a.Subject.Kind),
		SubjectID:       a.Subject.ID.String(),
		AssignedTo:      a.AssignedTo.String(),
		Status:          string(a.Status),
		RejectionReason: a.RejectionReason,
		DecidedAt:       a.DecidedAt,
		CreatedAt:       a.CreatedAt,
	}
	if a.ApprovedBy != nil {
		v := a.ApprovedBy.String()
		resp.ApprovedBy = &v
	}
	return resp
}

func mapToListResponse(items []Approval) []ApprovalResponse {
	out := make([]ApprovalResponse, len(items))
	for i := range items {
		out[i] = mapToResponse(&items[i])
	}
	return out
}
