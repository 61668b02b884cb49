package domain

import "github.com/pkg/errors"

// Error kinds surfaced by the registration services
var (
	ErrUnauthorized            = errors.New("unauthorized")
	ErrAlreadyEnrolled         = errors.New("already enrolled in this course")
	ErrCourseFull              = errors.New("course is full")
	ErrNotEnrolled             = errors.New("not enrolled in this course")
	ErrNotFound                = errors.New("not found")
	ErrDuplicateIdentity       = errors.New("username, email or title already in use")
	ErrCapacityBelowEnrollment = errors.New("capacity is below current enrollment")
	ErrInvalidRole             = errors.New("invalid role")
	ErrNotStudent              = errors.New("account is not a student")
	ErrInvalidCapacity         = errors.New("capacity must not be negative")
	ErrBlankField              = errors.New("title, teacher and schedule must not be blank")
)
