package domain

// Account Model
type Account struct {
	ID       uint   `gorm:"primaryKey" json:"id"`                               // Primary key
	Username string `gorm:"size:100;uniqueIndex;not null" json:"username"`      // Unique username
	Email    string `gorm:"size:120;uniqueIndex;not null" json:"email"`         // Unique email
	Password string `gorm:"size:100;not null" json:"-"`                         // Hashed password
	Role     Role   `gorm:"size:20;not null;index;default:student" json:"role"` // admin, instructor or student
}
