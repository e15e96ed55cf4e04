package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/campuslane/learning-service/internal/domain"
	"github.com/campuslane/learning-service/internal/repository"
)

// Store holds users, courses and assignments in process memory. The repositories built on it
// follow the same error contract as the Postgres ones: missing rows surface as pgx.ErrNoRows,
// uniqueness violations as repository.ErrDuplicate and restricted deletes as
// repository.ErrReferenced. Nothing is persisted across restarts.
type Store struct {
	mu          sync.Mutex
	now         func() time.Time
	last        time.Time
	users       map[string]domain.User
	courses     map[string]domain.Course
	enrollments map[string]map[string]domain.Enrollment
	assignments map[string]domain.Assignment
	submissions map[string]domain.Submission
}

// NewStore returns an empty store. A nil clock defaults to time.Now.
func NewStore(now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		now:         now,
		users:       map[string]domain.User{},
		courses:     map[string]domain.Course{},
		enrollments: map[string]map[string]domain.Enrollment{},
		assignments: map[string]domain.Assignment{},
		submissions: map[string]domain.Submission{},
	}
}

// tick returns a strictly increasing timestamp so that ordering by creation time is stable.
func (m *Store) tick() time.Time {
	next := m.now().UTC()
	if !next.After(m.last) {
		next = m.last.Add(time.Microsecond)
	}
	m.last = next
	return next
}

func (m *Store) summary(id string) *domain.UserSummary {
	u := m.users[key(id)]
	return &domain.UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, Profile: u.Profile}
}

type userRepository struct{ *Store }

// NewUserRepository returns a UserRepository backed by the store.
func NewUserRepository(s *Store) repository.UserRepository {
	return userRepository{s}
}

func (r userRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	user.ID = uuid.NewString()
	user.Level = 1
	user.CreatedAt = r.tick()
	user.UpdatedAt = user.CreatedAt
	r.users[key(user.ID)] = *user
	return nil
}

func (r userRepository) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.users[key(user.ID)]
	if !ok {
		return pgx.ErrNoRows
	}
	for _, u := range r.users {
		if u.Email == user.Email && u.ID != user.ID {
			return repository.ErrDuplicate
		}
	}
	updated := *user
	updated.PasswordHash = current.PasswordHash
	updated.LastLogin = current.LastLogin
	updated.UpdatedAt = r.tick()
	r.users[key(user.ID)] = updated
	return nil
}

func (r userRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[key(id)]; !ok {
		return pgx.ErrNoRows
	}
	id = key(id)
	for _, c := range r.courses {
		if c.InstructorID == id {
			return repository.ErrReferenced
		}
	}
	for _, a := range r.assignments {
		if a.InstructorID == id {
			return repository.ErrReferenced
		}
	}
	for _, roster := range r.enrollments {
		delete(roster, id)
	}
	for sid, sub := range r.submissions {
		if sub.StudentID == id {
			delete(r.submissions, sid)
		}
	}
	delete(r.users, id)
	return nil
}

func (r userRepository) get(id string, withSecret bool) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[key(id)]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	if !withSecret {
		u.PasswordHash = ""
	}
	return &u, nil
}

func (r userRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	return r.get(id, false)
}

func (r userRepository) GetCredentialsByID(_ context.Context, id string) (*domain.User, error) {
	return r.get(id, true)
}

func (r userRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r userRepository) List(_ context.Context, filter domain.UserFilter) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.User
	for _, u := range r.users {
		if filter.Role != nil && u.Role != *filter.Role {
			continue
		}
		if filter.Department != nil && (u.Department == nil || *u.Department != *filter.Department) {
			continue
		}
		if filter.IsActive != nil && u.IsActive != *filter.IsActive {
			continue
		}
		u.PasswordHash = ""
		result = append(result, u)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (r userRepository) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[key(id)]
	if !ok {
		return pgx.ErrNoRows
	}
	u.LastLogin = &at
	r.users[key(id)] = u
	return nil
}

func (r userRepository) UpdatePassword(_ context.Context, id, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[key(id)]
	if !ok {
		return pgx.ErrNoRows
	}
	u.PasswordHash = passwordHash
	r.users[key(id)] = u
	return nil
}

type courseRepository struct{ *Store }

// NewCourseRepository returns a CourseRepository backed by the store.
func NewCourseRepository(s *Store) repository.CourseRepository {
	return courseRepository{s}
}

func (r courseRepository) Create(_ context.Context, course *domain.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.courses {
		if c.Code == course.Code {
			return repository.ErrDuplicate
		}
	}
	course.ID = uuid.NewString()
	course.CreatedAt = r.tick()
	course.UpdatedAt = course.CreatedAt
	r.courses[key(course.ID)] = *course
	return nil
}

func (r courseRepository) Update(_ context.Context, course *domain.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.courses[key(course.ID)]; !ok {
		return pgx.ErrNoRows
	}
	updated := *course
	updated.UpdatedAt = r.tick()
	r.courses[key(course.ID)] = updated
	return nil
}

func (r courseRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.courses[key(id)]; !ok {
		return pgx.ErrNoRows
	}
	id = key(id)
	delete(r.courses, id)
	delete(r.enrollments, id)
	for aid, a := range r.assignments {
		if a.CourseID == id {
			r.deleteAssignment(aid)
		}
	}
	return nil
}

func (r courseRepository) view(c domain.Course) domain.Course {
	c.Instructor = r.summary(c.InstructorID)
	c.EnrolledCount = len(r.enrollments[c.ID])
	return c
}

func (r courseRepository) GetByID(_ context.Context, id string) (*domain.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.courses[key(id)]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	c = r.view(c)
	return &c, nil
}

func (r courseRepository) List(_ context.Context, filter domain.CourseFilter) ([]domain.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Course
	for _, c := range r.courses {
		if !c.IsActive {
			continue
		}
		if filter.Department != nil && c.Department != *filter.Department {
			continue
		}
		if filter.Semester != nil && c.Semester != *filter.Semester {
			continue
		}
		if filter.Year != nil && c.Year != *filter.Year {
			continue
		}
		if filter.InstructorID != nil && c.InstructorID != key(*filter.InstructorID) {
			continue
		}
		result = append(result, r.view(c))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (r courseRepository) Enroll(_ context.Context, courseID, studentID string) (*domain.Enrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	roster := r.enrollments[key(courseID)]
	if roster == nil {
		roster = map[string]domain.Enrollment{}
		r.enrollments[key(courseID)] = roster
	}
	if _, ok := roster[key(studentID)]; ok {
		return nil, repository.ErrDuplicate
	}
	e := domain.Enrollment{CourseID: key(courseID), StudentID: key(studentID), EnrolledAt: r.tick()}
	roster[key(studentID)] = e
	return &e, nil
}

func (r courseRepository) Unenroll(_ context.Context, courseID, studentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.enrollments[key(courseID)][key(studentID)]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.enrollments[key(courseID)], key(studentID))
	return nil
}

func (r courseRepository) IsEnrolled(_ context.Context, courseID, studentID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.enrollments[key(courseID)][key(studentID)]
	return ok, nil
}

func (r courseRepository) ListEnrollments(_ context.Context, courseID string) ([]domain.Enrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Enrollment
	for _, e := range r.enrollments[key(courseID)] {
		e.Student = r.summary(e.StudentID)
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].EnrolledAt.Before(result[j].EnrolledAt) })
	return result, nil
}

func (r courseRepository) ListStudentEnrollments(_ context.Context, studentID string) ([]domain.Enrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Enrollment
	for courseID, roster := range r.enrollments {
		e, ok := roster[key(studentID)]
		if !ok {
			continue
		}
		c := r.view(r.courses[key(courseID)])
		e.Course = &c
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].EnrolledAt.After(result[j].EnrolledAt) })
	return result, nil
}

// SetGrade records a final course grade for an enrolled student.
func (m *Store) SetGrade(courseID, studentID string, grade float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.enrollments[key(courseID)][key(studentID)]
	if !ok {
		return pgx.ErrNoRows
	}
	e.Grade = &grade
	m.enrollments[key(courseID)][key(studentID)] = e
	return nil
}

type assignmentRepository struct{ *Store }

// NewAssignmentRepository returns an AssignmentRepository backed by the store.
func NewAssignmentRepository(s *Store) repository.AssignmentRepository {
	return assignmentRepository{s}
}

func (r assignmentRepository) Create(_ context.Context, a *domain.Assignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a.ID = uuid.NewString()
	a.CreatedAt = r.tick()
	a.UpdatedAt = a.CreatedAt
	r.assignments[a.ID] = *a
	return nil
}

func (r assignmentRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.assignments[key(id)]; !ok {
		return pgx.ErrNoRows
	}
	r.deleteAssignment(key(id))
	return nil
}

// deleteAssignment removes an assignment and its submissions. Callers hold the lock.
func (m *Store) deleteAssignment(id string) {
	delete(m.assignments, id)
	for sid, sub := range m.submissions {
		if sub.AssignmentID == id {
			delete(m.submissions, sid)
		}
	}
}

func (r assignmentRepository) view(a domain.Assignment) domain.Assignment {
	c := r.courses[a.CourseID]
	a.CourseTitle = c.Title
	a.CourseCode = c.Code
	return a
}

func (r assignmentRepository) GetByID(_ context.Context, id string) (*domain.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.assignments[key(id)]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	a = r.view(a)
	return &a, nil
}

func (r assignmentRepository) List(_ context.Context, filter domain.AssignmentFilter) ([]domain.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Assignment
	for _, a := range r.assignments {
		if filter.CourseID != nil && a.CourseID != key(*filter.CourseID) {
			continue
		}
		if filter.InstructorID != nil && a.InstructorID != key(*filter.InstructorID) {
			continue
		}
		if filter.EnrolledStudentID != nil {
			if _, ok := r.enrollments[a.CourseID][key(*filter.EnrolledStudentID)]; !ok {
				continue
			}
		}
		if filter.ActiveOnly && !a.IsActive {
			continue
		}
		if filter.DueFrom != nil && a.DueDate.Before(*filter.DueFrom) {
			continue
		}
		result = append(result, r.view(a))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].DueDate.Before(result[j].DueDate) })
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

func (r assignmentRepository) CreateSubmission(_ context.Context, s *domain.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.submissions {
		if existing.AssignmentID == s.AssignmentID && existing.StudentID == s.StudentID {
			return repository.ErrDuplicate
		}
	}
	s.ID = uuid.NewString()
	r.submissions[s.ID] = *s
	return nil
}

func (r assignmentRepository) GetSubmission(_ context.Context, assignmentID, submissionID string) (*domain.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.submissions[key(submissionID)]
	if !ok || s.AssignmentID != key(assignmentID) {
		return nil, pgx.ErrNoRows
	}
	s.Student = r.summary(s.StudentID)
	return &s, nil
}

func (r assignmentRepository) ListSubmissions(_ context.Context, assignmentID string, studentID *string) ([]domain.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Submission
	for _, s := range r.submissions {
		if s.AssignmentID != key(assignmentID) {
			continue
		}
		if studentID != nil && s.StudentID != key(*studentID) {
			continue
		}
		s.Student = r.summary(s.StudentID)
		result = append(result, s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].SubmittedAt.Before(result[j].SubmittedAt) })
	return result, nil
}

func (r assignmentRepository) GradeSubmission(_ context.Context, submissionID string, grade domain.Grade) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.submissions[key(submissionID)]
	if !ok {
		return pgx.ErrNoRows
	}
	s.Grade = &grade
	s.Status = domain.SubmissionGraded
	r.submissions[key(submissionID)] = s
	return nil
}

func key(id string) string {
	return domain.NormalizeID(id)
}
