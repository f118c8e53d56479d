package entity

// Role is the kind of account a user holds
type Role string

const (
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
)

func (r Role) IsValid() bool {
	return r == RoleDoctor || r == RolePatient
}
