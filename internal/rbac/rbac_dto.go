package rbac

type EnforceRequest struct {
	EmployeeID     string `json:"employee_id"`
	OrganizationID string `json:"organization_id"`
	Resource       string `json:"resource"`
	Action         string `json:"action"`
}

type CheckRequest struct {
	Resource string `json:"resource" binding:"required"`
	Action   string `json:"action" binding:"required"`
}

type EnforceResponse struct {
	Allowed bool `json:"allowed"`
}

type RolesResponse struct {
	Roles []string `json:"roles"`
}
