package domain

// Course Model
type Course struct {
	ID       uint   `gorm:"primaryKey" json:"id"`                       // Primary key
	Title    string `gorm:"size:120;uniqueIndex;not null" json:"title"` // Unique title
	Teacher  string `gorm:"size:120;not null;index" json:"teacher"`     // Instructor username, not a foreign key
	Schedule string `gorm:"size:120;not null" json:"schedule"`          // Free form schedule descriptor
	Capacity int    `gorm:"not null" json:"capacity"`                   // Maximum number of enrolled students
}

// CourseSeats is a course with its enrollment count derived from the ledger
type CourseSeats struct {
	Course
	Enrolled int64 `json:"enrolled"` // Current ledger rows for the course
}

// Open reports whether at least one seat is left
func (c CourseSeats) Open() bool {
	return c.Enrolled < int64(c.Capacity)
}
