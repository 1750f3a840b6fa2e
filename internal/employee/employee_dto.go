package employee

type EmployeeResponse struct {
	ID             string  `json:"id"`
	OrganizationID string  `json:"organization_id"`
	ManagerID      *string `json:"manager_id,omitempty"`
	FullName       string  `json:"full_name"`
	Email          string  `json:"email"`
}

func mapAll(emps []Employee) []EmployeeResponse {
	out := make([]EmployeeResponse, len(emps))
	for i := range emps {
		out[i] = mapToResponse(&emps[i])
	}
	return out
}

func mapToResponse(e *Employee) EmployeeResponse {
	resp := EmployeeResponse{
		ID:             e.ID.String(),
		OrganizationID: e.OrganizationID.String(),
		FullName:       e.FullName,
		Email:          e.Email,
	}
	if e.ManagerID != nil {
		id := e.ManagerID.String()
		resp.ManagerID = &id
	}
	return resp
}
