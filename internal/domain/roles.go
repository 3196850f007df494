package domain

type Role string

const (
	// Student is the default role for self-registered learners.
	RoleStudent Role = "student"
	// Instructor can author lessons and review learner progress.
	RoleInstructor Role = "instructor"
	// Admin manages user accounts.
	RoleAdmin Role = "admin"
)

func IsValidRole(r string) bool {
	return r == string(RoleStudent) || r == string(RoleInstructor) || r == string(RoleAdmin)
}

// RoleRank: bigger => higher privilege
func RoleRank(r string) int {
	switch r {
	case string(RoleStudent):
		return 1
	case string(RoleInstructor):
		return 2
	case string(RoleAdmin):
		return 3
	default:
		return 0
	}
}
