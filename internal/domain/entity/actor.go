package entity

// Role identifies the single role an actor holds
type Role string

const (
	RoleLecturer             Role = "LECTURER"
	RoleProgrammeCoordinator Role = "PROGRAMME_COORDINATOR"
	RoleAcademicManager      Role = "ACADEMIC_MANAGER"
	RoleHR                   Role = "HR"
)

var validRoles = map[Role]bool{
	RoleLecturer:             true,
	RoleProgrammeCoordinator: true,
	RoleAcademicManager:      true,
	RoleHR:                   true,
}

// IsValid returns true if the role is one of the known roles
func (r Role) IsValid() bool {
	return validRoles[r]
}

// String returns the string representation of the role
func (r Role) String() string {
	return string(r)
}

// CanReview returns true if the role may approve or reject claims
func (r Role) CanReview() bool {
	return r == RoleProgrammeCoordinator || r == RoleAcademicManager
}

// CanMarkPaid returns true if the role may record payment of approved claims
func (r Role) CanMarkPaid() bool {
	return r == RoleHR
}

// Actor is a directory entry for an authenticated user
type Actor struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Role        Role   `json:"role"`
}
