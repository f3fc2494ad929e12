package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"classhub/internal/domain"
)

// Counter for generating unique IDs
var idCounter atomic.Int64

// nextID generates a unique ID for test fixtures
func nextID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, idCounter.Add(1))
}

// UserOptions allows customizing user fixture creation
type UserOptions struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         domain.Role
	CreatedAt    time.Time
}

// NewTestUser creates a test user with sensible defaults
// Pass options to override specific fields
func NewTestUser(opts ...func(*UserOptions)) *domain.User {
	o := &UserOptions{
		ID:           nextID("user"),
		Name:         fmt.Sprintf("Test User %d", idCounter.Load()),
		PasswordHash: "$2a$12$test.hash.for.testing.purposes.only", // bcrypt hash placeholder
		Role:         domain.RoleStudent,
	}

	for _, opt := range opts {
		opt(o)
	}

	if o.Email == "" {
		o.Email = fmt.Sprintf("%s@example.com", o.ID)
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now()
	}

	return &domain.User{
		ID:           o.ID,
		Name:         o.Name,
		Email:        o.Email,
		PasswordHash: o.PasswordHash,
		Role:         o.Role,
		CreatedAt:    o.CreatedAt,
	}
}

// WithUserID sets the user ID
func WithUserID(id string) func(*UserOptions) {
	return func(o *UserOptions) {
		o.ID = id
	}
}

// WithName sets the user name
func WithName(name string) func(*UserOptions) {
	return func(o *UserOptions) {
		o.Name = name
	}
}

// WithEmail sets the email
func WithEmail(email string) func(*UserOptions) {
	return func(o *UserOptions) {
		o.Email = email
	}
}

// WithPasswordHash sets the password hash
func WithPasswordHash(hash string) func(*UserOptions) {
	return func(o *UserOptions) {
		o.PasswordHash = hash
	}
}

// WithRole sets the user role
func WithRole(role domain.Role) func(*UserOptions) {
	return func(o *UserOptions) {
		o.Role = role
	}
}

// StudentOptions allows customizing student fixture creation
type StudentOptions struct {
	ID             string
	UserID         string
	Age            int
	Course         string
	FeesPaid       bool
	EnrollmentDate time.Time
	Name           string
	Email          string
}

// NewTestStudent creates a test student with sensible defaults
func NewTestStudent(opts ...func(*StudentOptions)) *domain.Student {
	o := &StudentOptions{
		ID:             nextID("student"),
		UserID:         nextID("user"),
		Age:            21,
		Course:         "Go Fundamentals",
		EnrollmentDate: time.Now(),
	}

	for _, opt := range opts {
		opt(o)
	}

	if o.Name == "" {
		o.Name = fmt.Sprintf("Student %s", o.ID)
	}
	if o.Email == "" {
		o.Email = fmt.Sprintf("%s@example.com", o.ID)
	}

	return &domain.Student{
		ID:             o.ID,
		UserID:         o.UserID,
		Age:            o.Age,
		Course:         o.Course,
		FeesPaid:       o.FeesPaid,
		EnrollmentDate: o.EnrollmentDate,
		Name:           o.Name,
		Email:          o.Email,
	}
}

// WithStudentID sets the student ID
func WithStudentID(id string) func(*StudentOptions) {
	return func(o *StudentOptions) {
		o.ID = id
	}
}

// WithStudentUserID sets the linked user ID
func WithStudentUserID(userID string) func(*StudentOptions) {
	return func(o *StudentOptions) {
		o.UserID = userID
	}
}

// WithAge sets the student age
func WithAge(age int) func(*StudentOptions) {
	return func(o *StudentOptions) {
		o.Age = age
	}
}

// WithCourse sets the student course
func WithCourse(course string) func(*StudentOptions) {
	return func(o *StudentOptions) {
		o.Course = course
	}
}

// WithFeesPaid marks the student fees as paid
func WithFeesPaid(paid bool) func(*StudentOptions) {
	return func(o *StudentOptions) {
		o.FeesPaid = paid
	}
}

// CoachOptions allows customizing coach fixture creation
type CoachOptions struct {
	ID        string
	UserID    string
	Expertise string
	JoinDate  time.Time
	Name      string
	Email     string
}

// NewTestCoach creates a test coach with sensible defaults
func NewTestCoach(opts ...func(*CoachOptions)) *domain.Coach {
	o := &CoachOptions{
		ID:        nextID("coach"),
		UserID:    nextID("user"),
		Expertise: "Backend Engineering",
		JoinDate:  time.Now(),
	}

	for _, opt := range opts {
		opt(o)
	}

	if o.Name == "" {
		o.Name = fmt.Sprintf("Coach %s", o.ID)
	}
	if o.Email == "" {
		o.Email = fmt.Sprintf("%s@example.com", o.ID)
	}

	return &domain.Coach{
		ID:        o.ID,
		UserID:    o.UserID,
		Expertise: o.Expertise,
		JoinDate:  o.JoinDate,
		Name:      o.Name,
		Email:     o.Email,
	}
}

// WithCoachID sets the coach ID
func WithCoachID(id string) func(*CoachOptions) {
	return func(o *CoachOptions) {
		o.ID = id
	}
}

// WithCoachUserID sets the linked user ID
func WithCoachUserID(userID string) func(*CoachOptions) {
	return func(o *CoachOptions) {
		o.UserID = userID
	}
}

// WithExpertise sets the coach expertise
func WithExpertise(expertise string) func(*CoachOptions) {
	return func(o *CoachOptions) {
		o.Expertise = expertise
	}
}

// CourseOptions allows customizing course fixture creation
type CourseOptions struct {
	ID            string
	Name          string
	Description   string
	CoachID       string
	DurationWeeks int
	Fee           float64
	MaxStudents   int
	StartDate     time.Time
	EndDate       time.Time
	Status        domain.CourseStatus
}

// NewTestCourse creates a test course with sensible defaults
func NewTestCourse(opts ...func(*CourseOptions)) *domain.Course {
	now := time.Now()
	o := &CourseOptions{
		ID:            nextID("course"),
		Description:   "A test course",
		DurationWeeks: 8,
		Fee:           499.99,
		MaxStudents:   30,
		StartDate:     now,
		EndDate:       now.Add(8 * 7 * 24 * time.Hour),
		Status:        domain.CourseActive,
	}

	for _, opt := range opts {
		opt(o)
	}

	if o.Name == "" {
		o.Name = fmt.Sprintf("Course %s", o.ID)
	}

	return &domain.Course{
		ID:            o.ID,
		Name:          o.Name,
		Description:   o.Description,
		CoachID:       o.CoachID,
		DurationWeeks: o.DurationWeeks,
		Fee:           o.Fee,
		MaxStudents:   o.MaxStudents,
		StartDate:     o.StartDate,
		EndDate:       o.EndDate,
		Status:        o.Status,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// WithCourseID sets the course ID
func WithCourseID(id string) func(*CourseOptions) {
	return func(o *CourseOptions) {
		o.ID = id
	}
}

// WithCourseName sets the course name
func WithCourseName(name string) func(*CourseOptions) {
	return func(o *CourseOptions) {
		o.Name = name
	}
}

// WithCourseCoach sets the coach teaching the course
func WithCourseCoach(coachID string) func(*CourseOptions) {
	return func(o *CourseOptions) {
		o.CoachID = coachID
	}
}

// WithCourseStatus sets the course status
func WithCourseStatus(status domain.CourseStatus) func(*CourseOptions) {
	return func(o *CourseOptions) {
		o.Status = status
	}
}

// BatchOptions allows customizing batch fixture creation
type BatchOptions struct {
	ID         string
	Name       string
	CourseID   string
	CoachID    string
	StartDate  time.Time
	EndDate    time.Time
	StudentIDs []string
}

// NewTestBatch creates a test batch with sensible defaults
func NewTestBatch(opts ...func(*BatchOptions)) *domain.Batch {
	now := time.Now()
	o := &BatchOptions{
		ID:        nextID("batch"),
		CourseID:  nextID("course"),
		CoachID:   nextID("coach"),
		StartDate: now,
		EndDate:   now.Add(12 * 7 * 24 * time.Hour),
	}

	for _, opt := range opts {
		opt(o)
	}

	if o.Name == "" {
		o.Name = fmt.Sprintf("Batch %s", o.ID)
	}

	return &domain.Batch{
		ID:         o.ID,
		Name:       o.Name,
		CourseID:   o.CourseID,
		CoachID:    o.CoachID,
		StartDate:  o.StartDate,
		EndDate:    o.EndDate,
		CreatedAt:  now,
		StudentIDs: o.StudentIDs,
	}
}

// WithBatchID sets the batch ID
func WithBatchID(id string) func(*BatchOptions) {
	return func(o *BatchOptions) {
		o.ID = id
	}
}

// WithBatchName sets the batch name
func WithBatchName(name string) func(*BatchOptions) {
	return func(o *BatchOptions) {
		o.Name = name
	}
}

// WithBatchCourse sets the course a batch belongs to
func WithBatchCourse(courseID string) func(*BatchOptions) {
	return func(o *BatchOptions) {
		o.CourseID = courseID
	}
}

// WithBatchCoach sets the coach running the batch
func WithBatchCoach(coachID string) func(*BatchOptions) {
	return func(o *BatchOptions) {
		o.CoachID = coachID
	}
}

// WithBatchStudents sets the enrolled student IDs
func WithBatchStudents(studentIDs ...string) func(*BatchOptions) {
	return func(o *BatchOptions) {
		o.StudentIDs = studentIDs
	}
}
