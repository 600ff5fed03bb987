// Package acl keeps the per-course access-control document: a user→mode
// mapping per course plus a course-wide "everyone" override. Identifier
// shapes are validated here at the boundary, nowhere else.
package acl

import (
	"regexp"
	"sort"
	"sync"

	"github.com/lezionipari/coursecore/internal/apperr"
	"github.com/lezionipari/coursecore/internal/docstore"
	"github.com/lezionipari/coursecore/internal/platform/logger"
	"github.com/lezionipari/coursecore/internal/types"
)

var (
	courseIDPattern = regexp.MustCompile(`^c-\d+$`)
	userIDPattern   = regexp.MustCompile(`^u-\d+$`)
)

type Store struct {
	doc docstore.Document
	log *logger.Logger

	mu sync.Mutex
}

// New opens the store and bootstraps an empty document if none exists.
func New(doc docstore.Document, baseLog *logger.Logger) (*Store, error) {
	s := &Store{doc: doc, log: baseLog.With("store", "acl")}
	exists, err := doc.Exists()
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := doc.Save(types.NewACL()); err != nil {
			return nil, err
		}
		s.log.Info("acl document bootstrapped")
	}
	return s, nil
}

// AddCourse seeds {everyone: false} for the course. Re-adding an existing
// course is a no-op.
func (s *Store) AddCourse(courseID string) error {
	if err := validCourseID(courseID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := a.Courses[courseID]; ok {
		return nil
	}
	a.Courses[courseID] = types.NewCourseACL()
	return s.doc.Save(a)
}

// RemoveCourse hard-deletes the course's entry, unlike content removal.
// Removing an absent entry is a no-op.
func (s *Store) RemoveCourse(courseID string) error {
	if err := validCourseID(courseID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := a.Courses[courseID]; !ok {
		return nil
	}
	delete(a.Courses, courseID)
	return s.doc.Save(a)
}

// AddPermission upserts the user's mode for the course, overwriting any
// prior grant.
func (s *Store) AddPermission(userID, courseID string, mode types.Mode) error {
	if err := validUserID(userID); err != nil {
		return err
	}
	if err := validCourseID(courseID); err != nil {
		return err
	}
	if !mode.Valid() {
		return apperr.Validation("invalid access mode %q", mode)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, err := s.load()
	if err != nil {
		return err
	}
	course, err := findCourse(a, courseID)
	if err != nil {
		return err
	}
	course.Users[userID] = mode
	return s.doc.Save(a)
}

// RemovePermission drops the user's personal entry; it fails when no such
// entry exists.
func (s *Store) RemovePermission(userID, courseID string) error {
	if err := validUserID(userID); err != nil {
		return err
	}
	if err := validCourseID(courseID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, err := s.load()
	if err != nil {
		return err
	}
	course, err := findCourse(a, courseID)
	if err != nil {
		return err
	}
	if _, ok := course.Users[userID]; !ok {
		return apperr.NotFound("no permission for %s on %s", userID, courseID)
	}
	delete(course.Users, userID)
	return s.doc.Save(a)
}

// SetEveryone sets the course-wide override; ModeNone disables it.
func (s *Store) SetEveryone(courseID string, mode types.Mode) error {
	if err := validCourseID(courseID); err != nil {
		return err
	}
	if mode != types.ModeNone && !mode.Valid() {
		return apperr.Validation("invalid access mode %q", mode)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, err := s.load()
	if err != nil {
		return err
	}
	course, err := findCourse(a, courseID)
	if err != nil {
		return err
	}
	course.Everyone = mode
	return s.doc.Save(a)
}

// UserPermission resolves one user's mode on one course. The personal entry
// takes precedence over the everyone override. Note this is deliberately the
// opposite precedence of UserPermissions; the two policies are inherited as
// distinct and must stay distinct.
func (s *Store) UserPermission(userID, courseID string) (types.Mode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, err := s.load()
	if err != nil {
		return types.ModeNone, err
	}
	course, err := findCourse(a, courseID)
	if err != nil {
		return types.ModeNone, err
	}
	if mode, ok := course.Users[userID]; ok {
		return mode, nil
	}
	return course.Everyone, nil
}

// UserPermissions buckets every course by the user's effective mode. Here
// the everyone override takes precedence over a personal entry when both
// exist, the inverse of UserPermission.
func (s *Store) UserPermissions(userID string) (map[types.Mode][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, err := s.load()
	if err != nil {
		return nil, err
	}
	buckets := map[types.Mode][]string{
		types.ModeRead:      {},
		types.ModeReadWrite: {},
	}
	for courseID, course := range a.Courses {
		if course.Everyone.Valid() {
			buckets[course.Everyone] = append(buckets[course.Everyone], courseID)
		} else if mode, ok := course.Users[userID]; ok && mode.Valid() {
			buckets[mode] = append(buckets[mode], courseID)
		}
	}
	for mode := range buckets {
		sort.Strings(buckets[mode])
	}
	return buckets, nil
}

func (s *Store) load() (*types.ACL, error) {
	var a types.ACL
	if err := s.doc.Load(&a); err != nil {
		return nil, err
	}
	return &a, nil
}

func findCourse(a *types.ACL, courseID string) (*types.CourseACL, error) {
	course, ok := a.Courses[courseID]
	if !ok {
		return nil, apperr.NotFound("course %s not in acl", courseID)
	}
	return course, nil
}

func validCourseID(courseID string) error {
	if !courseIDPattern.MatchString(courseID) {
		return apperr.Validation("malformed course id %q", courseID)
	}
	return nil
}

func validUserID(userID string) error {
	if !userIDPattern.MatchString(userID) {
		return apperr.Validation("malformed user id %q", userID)
	}
	return nil
}
