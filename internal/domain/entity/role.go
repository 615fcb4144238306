package entity

// UserType selects which role extension a profile carries.
type UserType string

const (
	UserTypeDoctor  UserType = "doctor"
	UserTypePatient UserType = "patient"
)

// Valid reports whether t is a known user type.
func (t UserType) Valid() bool {
	return t == UserTypeDoctor || t == UserTypePatient
}

func (t UserType) String() string {
	return string(t)
}
