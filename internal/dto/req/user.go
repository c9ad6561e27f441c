package req

type CreateUserRequest struct {
	Name          string  `json:"name" binding:"required"`
	Email         string  `json:"email" binding:"required,email"`
	Password      string  `json:"password" binding:"required,min=8"`
	RoleID        *uint64 `json:"role_id"`
	DepartmentID  *uint64 `json:"department_id"`
	DesignationID *uint64 `json:"designation_id"`
	TeamID        *uint64 `json:"team_id"`
}
