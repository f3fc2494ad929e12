// Package testutil provides shared test utilities, mocks, and fixtures
// for testing the classhub application.
package testutil

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"classhub/internal/domain"
)

// Common test errors
var (
	ErrMockNotImplemented = errors.New("mock function not implemented")
	ErrMockNotFound       = errors.New("mock: not found")
)

// MockUserRepository implements domain.UserRepository for testing
type MockUserRepository struct {
	mu sync.RWMutex

	// Function overrides - set these to customize behavior
	CreateFunc     func(ctx context.Context, user *domain.User) error
	GetByIDFunc    func(ctx context.Context, id string) (*domain.User, error)
	GetByEmailFunc func(ctx context.Context, email string) (*domain.User, error)
	ListFunc       func(ctx context.Context, role domain.Role) ([]*domain.User, error)
	CountFunc      func(ctx context.Context, role domain.Role) (int, error)

	// In-memory storage for simple tests
	Users map[string]*domain.User
}

// NewMockUserRepository creates a new MockUserRepository with initialized maps
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		Users: make(map[string]*domain.User),
	}
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Users == nil {
		m.Users = make(map[string]*domain.User)
	}

	for _, u := range m.Users {
		if u.Email == user.Email {
			return domain.ErrEmailExists
		}
	}

	if user.ID == "" {
		user.ID = nextID("user")
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	m.Users[user.ID] = user
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	if user, ok := m.Users[id]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, user := range m.Users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) List(ctx context.Context, role domain.Role) ([]*domain.User, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, role)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var users []*domain.User
	for _, user := range m.Users {
		if role == "" || user.Role == role {
			users = append(users, user)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (m *MockUserRepository) Count(ctx context.Context, role domain.Role) (int, error) {
	if m.CountFunc != nil {
		return m.CountFunc(ctx, role)
	}
	users, _ := m.List(ctx, role)
	return len(users), nil
}

// MockStudentRepository implements domain.StudentRepository for testing
type MockStudentRepository struct {
	mu sync.RWMutex

	// Function overrides
	CreateFunc      func(ctx context.Context, student *domain.Student) error
	GetByIDFunc     func(ctx context.Context, id string) (*domain.Student, error)
	GetByUserIDFunc func(ctx context.Context, userID string) (*domain.Student, error)
	ListFunc        func(ctx context.Context, filters domain.StudentFilters) ([]*domain.Student, error)
	UpdateFunc      func(ctx context.Context, student *domain.Student) error
	DeleteFunc      func(ctx context.Context, id string) error
	CountFunc       func(ctx context.Context) (int, error)

	Students map[string]*domain.Student
}

// NewMockStudentRepository creates a new MockStudentRepository
func NewMockStudentRepository() *MockStudentRepository {
	return &MockStudentRepository{
		Students: make(map[string]*domain.Student),
	}
}

func (m *MockStudentRepository) Create(ctx context.Context, student *domain.Student) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, student)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if student.ID == "" {
		student.ID = nextID("student")
	}
	if student.EnrollmentDate.IsZero() {
		student.EnrollmentDate = time.Now()
	}
	m.Students[student.ID] = student
	return nil
}

func (m *MockStudentRepository) GetByID(ctx context.Context, id string) (*domain.Student, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	if student, ok := m.Students[id]; ok {
		return student, nil
	}
	return nil, domain.ErrStudentNotFound
}

func (m *MockStudentRepository) GetByUserID(ctx context.Context, userID string) (*domain.Student, error) {
	if m.GetByUserIDFunc != nil {
		return m.GetByUserIDFunc(ctx, userID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, student := range m.Students {
		if student.UserID == userID {
			return student, nil
		}
	}
	return nil, domain.ErrStudentNotFound
}

func (m *MockStudentRepository) List(ctx context.Context, filters domain.StudentFilters) ([]*domain.Student, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filters)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var students []*domain.Student
	for _, student := range m.Students {
		if filters.Course != "" && student.Course != filters.Course {
			continue
		}
		if filters.SearchTerm != "" && !strings.Contains(strings.ToLower(student.Name), strings.ToLower(filters.SearchTerm)) {
			continue
		}
		if filters.MinAge > 0 && student.Age < filters.MinAge {
			continue
		}
		if filters.MaxAge > 0 && student.Age > filters.MaxAge {
			continue
		}
		students = append(students, student)
	}
	sort.Slice(students, func(i, j int) bool { return students[i].ID < students[j].ID })
	return students, nil
}

func (m *MockStudentRepository) Update(ctx context.Context, student *domain.Student) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, student)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.Students[student.ID]; !ok {
		return domain.ErrStudentNotFound
	}
	m.Students[student.ID] = student
	return nil
}

func (m *MockStudentRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.Students[id]; !ok {
		return domain.ErrStudentNotFound
	}
	delete(m.Students, id)
	return nil
}

func (m *MockStudentRepository) Count(ctx context.Context) (int, error) {
	if m.CountFunc != nil {
		return m.CountFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.Students), nil
}

// MockCoachRepository implements domain.CoachRepository for testing
type MockCoachRepository struct {
	mu sync.RWMutex

	// Function overrides
	CreateFunc      func(ctx context.Context, coach *domain.Coach) error
	GetByIDFunc     func(ctx context.Context, id string) (*domain.Coach, error)
	GetByUserIDFunc func(ctx context.Context, userID string) (*domain.Coach, error)
	ListFunc        func(ctx context.Context) ([]*domain.Coach, error)
	UpdateFunc      func(ctx context.Context, coach *domain.Coach) error
	DeleteFunc      func(ctx context.Context, id string) error
	CountFunc       func(ctx context.Context) (int, error)

	Coaches map[string]*domain.Coach
}

// NewMockCoachRepository creates a new MockCoachRepository
func NewMockCoachRepository() *MockCoachRepository {
	return &MockCoachRepository{
		Coaches: make(map[string]*domain.Coach),
	}
}

func (m *MockCoachRepository) Create(ctx context.Context, coach *domain.Coach) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, coach)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if coach.ID == "" {
		coach.ID = nextID("coach")
	}
	if coach.JoinDate.IsZero() {
		coach.JoinDate = time.Now()
	}
	m.Coaches[coach.ID] = coach
	return nil
}

func (m *MockCoachRepository) GetByID(ctx context.Context, id string) (*domain.Coach, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	if coach, ok := m.Coaches[id]; ok {
		return coach, nil
	}
	return nil, domain.ErrCoachNotFound
}

func (m *MockCoachRepository) GetByUserID(ctx context.Context, userID string) (*domain.Coach, error) {
	if m.GetByUserIDFunc != nil {
		return m.GetByUserIDFunc(ctx, userID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, coach := range m.Coaches {
		if coach.UserID == userID {
			return coach, nil
		}
	}
	return nil, domain.ErrCoachNotFound
}

func (m *MockCoachRepository) List(ctx context.Context) ([]*domain.Coach, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	coaches := make([]*domain.Coach, 0, len(m.Coaches))
	for _, coach := range m.Coaches {
		coaches = append(coaches, coach)
	}
	sort.Slice(coaches, func(i, j int) bool { return coaches[i].ID < coaches[j].ID })
	return coaches, nil
}

func (m *MockCoachRepository) Update(ctx context.Context, coach *domain.Coach) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, coach)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.Coaches[coach.ID]; !ok {
		return domain.ErrCoachNotFound
	}
	m.Coaches[coach.ID] = coach
	return nil
}

func (m *MockCoachRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.Coaches[id]; !ok {
		return domain.ErrCoachNotFound
	}
	delete(m.Coaches, id)
	return nil
}

func (m *MockCoachRepository) Count(ctx context.Context) (int, error) {
	if m.CountFunc != nil {
		return m.CountFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.Coaches), nil
}

// MockCourseRepository implements domain.CourseRepository for testing
type MockCourseRepository struct {
	mu sync.RWMutex

	// Function overrides
	CreateFunc        func(ctx context.Context, course *domain.Course) error
	GetByIDFunc       func(ctx context.Context, id string) (*domain.Course, error)
	ListFunc          func(ctx context.Context, filters domain.CourseFilters) ([]*domain.Course, error)
	UpdateFunc        func(ctx context.Context, course *domain.Course) error
	DeleteFunc        func(ctx context.Context, id string) error
	CountFunc         func(ctx context.Context) (int, error)
	CountByStatusFunc func(ctx context.Context, status domain.CourseStatus) (int, error)

	Courses map[string]*domain.Course
}

// NewMockCourseRepository creates a new MockCourseRepository
func NewMockCourseRepository() *MockCourseRepository {
	return &MockCourseRepository{
		Courses: make(map[string]*domain.Course),
	}
}

func (m *MockCourseRepository) Create(ctx context.Context, course *domain.Course) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, course)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if course.ID == "" {
		course.ID = nextID("course")
	}
	if course.CreatedAt.IsZero() {
		course.CreatedAt = time.Now()
	}
	m.Courses[course.ID] = course
	return nil
}

func (m *MockCourseRepository) GetByID(ctx context.Context, id string) (*domain.Course, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	if course, ok := m.Courses[id]; ok {
		return course, nil
	}
	return nil, domain.ErrCourseNotFound
}

func (m *MockCourseRepository) List(ctx context.Context, filters domain.CourseFilters) ([]*domain.Course, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filters)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var courses []*domain.Course
	for _, course := range m.Courses {
		if filters.Status != "" && course.Status != filters.Status {
			continue
		}
		if filters.CoachID != "" && course.CoachID != filters.CoachID {
			continue
		}
		if filters.SearchTerm != "" && !strings.Contains(strings.ToLower(course.Name), strings.ToLower(filters.SearchTerm)) {
			continue
		}
		courses = append(courses, course)
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].ID < courses[j].ID })
	return courses, nil
}

func (m *MockCourseRepository) Update(ctx context.Context, course *domain.Course) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, course)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.Courses[course.ID]; !ok {
		return domain.ErrCourseNotFound
	}
	m.Courses[course.ID] = course
	return nil
}

func (m *MockCourseRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.Courses[id]; !ok {
		return domain.ErrCourseNotFound
	}
	delete(m.Courses, id)
	return nil
}

func (m *MockCourseRepository) Count(ctx context.Context) (int, error) {
	if m.CountFunc != nil {
		return m.CountFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.Courses), nil
}

func (m *MockCourseRepository) CountByStatus(ctx context.Context, status domain.CourseStatus) (int, error) {
	if m.CountByStatusFunc != nil {
		return m.CountByStatusFunc(ctx, status)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, course := range m.Courses {
		if course.Status == status {
			count++
		}
	}
	return count, nil
}

// MockBatchRepository implements domain.BatchRepository for testing
type MockBatchRepository struct {
	mu sync.RWMutex

	// Function overrides
	CreateFunc        func(ctx context.Context, batch *domain.Batch) error
	GetByIDFunc       func(ctx context.Context, id string) (*domain.Batch, error)
	ListFunc          func(ctx context.Context) ([]*domain.Batch, error)
	UpdateFunc        func(ctx context.Context, batch *domain.Batch) error
	DeleteFunc        func(ctx context.Context, id string) error
	AddStudentFunc    func(ctx context.Context, batchID, studentID string, maxStudents int) error
	RemoveStudentFunc func(ctx context.Context, batchID, studentID string) error

	Batches map[string]*domain.Batch
}

// NewMockBatchRepository creates a new MockBatchRepository
func NewMockBatchRepository() *MockBatchRepository {
	return &MockBatchRepository{
		Batches: make(map[string]*domain.Batch),
	}
}

func (m *MockBatchRepository) Create(ctx context.Context, batch *domain.Batch) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, batch)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, b := range m.Batches {
		if b.Name == batch.Name {
			return domain.ErrBatchNameExists
		}
	}

	if batch.ID == "" {
		batch.ID = nextID("batch")
	}
	if batch.CreatedAt.IsZero() {
		batch.CreatedAt = time.Now()
	}
	m.Batches[batch.ID] = batch
	return nil
}

func (m *MockBatchRepository) GetByID(ctx context.Context, id string) (*domain.Batch, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	if batch, ok := m.Batches[id]; ok {
		return batch, nil
	}
	return nil, domain.ErrBatchNotFound
}

func (m *MockBatchRepository) List(ctx context.Context) ([]*domain.Batch, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	batches := make([]*domain.Batch, 0, len(m.Batches))
	for _, batch := range m.Batches {
		batches = append(batches, batch)
	}
	sort.Slice(batches, func(i, j int) bool { return batches[i].ID < batches[j].ID })
	return batches, nil
}

func (m *MockBatchRepository) Update(ctx context.Context, batch *domain.Batch) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, batch)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.Batches[batch.ID]; !ok {
		return domain.ErrBatchNotFound
	}
	m.Batches[batch.ID] = batch
	return nil
}

func (m *MockBatchRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.Batches[id]; !ok {
		return domain.ErrBatchNotFound
	}
	delete(m.Batches, id)
	return nil
}

func (m *MockBatchRepository) AddStudent(ctx context.Context, batchID, studentID string, maxStudents int) error {
	if m.AddStudentFunc != nil {
		return m.AddStudentFunc(ctx, batchID, studentID, maxStudents)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	batch, ok := m.Batches[batchID]
	if !ok {
		return domain.ErrBatchNotFound
	}
	for _, id := range batch.StudentIDs {
		if id == studentID {
			return nil
		}
	}
	if maxStudents > 0 && len(batch.StudentIDs) >= maxStudents {
		return domain.ErrCourseFull
	}
	batch.StudentIDs = append(batch.StudentIDs, studentID)
	return nil
}

func (m *MockBatchRepository) RemoveStudent(ctx context.Context, batchID, studentID string) error {
	if m.RemoveStudentFunc != nil {
		return m.RemoveStudentFunc(ctx, batchID, studentID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	batch, ok := m.Batches[batchID]
	if !ok {
		return domain.ErrBatchNotFound
	}
	for i, id := range batch.StudentIDs {
		if id == studentID {
			batch.StudentIDs = append(batch.StudentIDs[:i], batch.StudentIDs[i+1:]...)
			return nil
		}
	}
	return nil
}
