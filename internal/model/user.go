package model

type User struct {
	Base
	Name          string  `json:"name" gorm:"size:191"`
	Email         string  `json:"email" gorm:"size:191;uniqueIndex"`
	Password      string  `json:"-" gorm:"size:255;<-:create" audit:"-"`
	RoleID        *uint64 `json:"role_id" gorm:"index"`
	DepartmentID  *uint64 `json:"department_id"`
	DesignationID *uint64 `json:"designation_id"`
	TeamID        *uint64 `json:"team_id"`
}
