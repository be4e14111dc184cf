package db

const (
	// user roles
	StudentRole    UserRole = "student"
	InstructorRole UserRole = "instructor"
	// course levels
	BeginnerLevel CourseLevel = "Beginner"
	MediumLevel   CourseLevel = "Medium"
	AdvanceLevel  CourseLevel = "Advance"
	// purchase statuses
	PurchaseStatusPending   PurchaseStatus = "pending"
	PurchaseStatusCompleted PurchaseStatus = "completed"
)

// validRoles is a map that contains the valid user roles
var validRoles = map[UserRole]bool{
	StudentRole:    true,
	InstructorRole: true,
}

// IsValidUserRole function checks if the user role is valid
func IsValidUserRole(role UserRole) bool {
	_, valid := validRoles[role]
	return valid
}

// validCourseLevels is a map that contains the valid course levels
var validCourseLevels = map[CourseLevel]bool{
	BeginnerLevel: true,
	MediumLevel:   true,
	AdvanceLevel:  true,
}

// IsValidCourseLevel function checks if the course level is valid
func IsValidCourseLevel(level string) bool {
	_, valid := validCourseLevels[CourseLevel(level)]
	return valid
}
