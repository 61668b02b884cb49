package domain

// Enrollment Model, one row per (student, course) pair
type Enrollment struct {
	StudentID uint  `gorm:"primaryKey;autoIncrement:false" json:"student_id"`      // Composite key part: account
	CourseID  uint  `gorm:"primaryKey;autoIncrement:false;index" json:"course_id"` // Composite key part: course
	Grade     int   `gorm:"not null;default:0" json:"grade"`                       // Grade as a percentage
	CreatedAt int64 `gorm:"autoCreateTime:nano;index" json:"created_at"`           // Insertion order
}

// RosterEntry is a ledger row joined with the student's identity
type RosterEntry struct {
	StudentID uint   `json:"student_id"` // Student account ID
	Username  string `json:"username"`   // Student username
	Email     string `json:"email"`      // Student email
	Grade     int    `json:"grade"`      // Current grade
}

// StudentCourse is a ledger row joined with the course for a student's dashboard
type StudentCourse struct {
	Course
	Grade int `json:"grade"` // Current grade
}
