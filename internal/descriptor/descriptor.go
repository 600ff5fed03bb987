// Package descriptor owns the authoritative metadata document for the
// course/topic/element hierarchy: names, timestamps, soft-delete markers and
// the three global ID counters. Deletion is metadata-only and irreversible;
// nothing is ever purged from the document.
package descriptor

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/lezionipari/coursecore/internal/apperr"
	"github.com/lezionipari/coursecore/internal/docstore"
	"github.com/lezionipari/coursecore/internal/platform/logger"
	"github.com/lezionipari/coursecore/internal/types"
)

// Store reads and rewrites the descriptor document wholesale on every
// mutation. A mutex serializes mutators: the design assumes a single writer
// per document, and the mutex makes that discipline explicit in-process.
type Store struct {
	doc       docstore.Document
	backupDir string
	log       *logger.Logger

	mu sync.Mutex
}

// New opens the store and bootstraps the document if it does not exist yet.
func New(doc docstore.Document, backupDir string, baseLog *logger.Logger) (*Store, error) {
	s := &Store{
		doc:       doc,
		backupDir: backupDir,
		log:       baseLog.With("store", "descriptor"),
	}
	exists, err := doc.Exists()
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := doc.Save(types.NewDescriptor()); err != nil {
			return nil, err
		}
		s.log.Info("descriptor document bootstrapped")
	}
	return s, nil
}

// Reset re-initializes the document to the bootstrap state. When backup is
// true the prior document is snapshotted into the backup directory first.
func (s *Store) Reset(backup bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	exists, err := s.doc.Exists()
	if err != nil {
		return err
	}
	if exists && backup {
		dest, err := s.doc.Snapshot(s.backupDir)
		if err != nil {
			return err
		}
		s.log.Info("descriptor snapshot written", "path", dest)
	}
	return s.doc.Save(types.NewDescriptor())
}

// NextID allocates the next identifier for the given kind. Counters are
// strictly increasing and never reused, even after deletions.
func (s *Store) NextID(kind types.IDKind) (string, error) {
	prefix := kind.Prefix()
	if prefix == "" {
		return "", apperr.Validation("unknown id kind %q", kind)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.load()
	if err != nil {
		return "", err
	}
	var counter *int
	switch kind {
	case types.KindCourse:
		counter = &d.CoursesCounter
	case types.KindTopic:
		counter = &d.TopicsCounter
	case types.KindElement:
		counter = &d.ElementsCounter
	}
	id := fmt.Sprintf("%s-%d", prefix, *counter)
	*counter++
	if err := s.doc.Save(d); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) AddCourse(name, courseID string) error {
	if err := validName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.load()
	if err != nil {
		return err
	}
	d.Courses[courseID] = &types.Course{
		Name:         name,
		CreationDate: time.Now().UTC(),
		Topics:       map[string]*types.Topic{},
	}
	return s.doc.Save(d)
}

func (s *Store) AddTopic(name, topicID, courseID string) error {
	if err := validName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.load()
	if err != nil {
		return err
	}
	course, err := findCourse(d, courseID)
	if err != nil {
		return err
	}
	course.Topics[topicID] = &types.Topic{
		Name:         name,
		CreationDate: time.Now().UTC(),
		Elements:     map[string]*types.Element{},
	}
	return s.doc.Save(d)
}

func (s *Store) AddElement(name string, elementType types.ElementType, elementID, topicID, courseID string) error {
	if err := validName(name); err != nil {
		return err
	}
	if !elementType.Valid() {
		return apperr.Validation("unknown element type %q", elementType)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.load()
	if err != nil {
		return err
	}
	topic, err := findTopic(d, topicID, courseID)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	topic.Elements[elementID] = &types.Element{
		Name:         name,
		Type:         elementType,
		CreationDate: now,
		EditDate:     now,
	}
	return s.doc.Save(d)
}

// RemoveCourse marks the course deleted. Topics and elements below it keep
// their own markers untouched.
func (s *Store) RemoveCourse(courseID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.load()
	if err != nil {
		return err
	}
	course, err := findCourse(d, courseID)
	if err != nil {
		return err
	}
	if !course.Visible() {
		return apperr.NotFound("course %s not found", courseID)
	}
	now := time.Now().UTC()
	course.DeleteDate = &now
	return s.doc.Save(d)
}

func (s *Store) RemoveTopic(topicID, courseID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.load()
	if err != nil {
		return err
	}
	topic, err := findTopic(d, topicID, courseID)
	if err != nil {
		return err
	}
	if !topic.Visible() {
		return apperr.NotFound("topic %s not found", topicID)
	}
	now := time.Now().UTC()
	topic.DeleteDate = &now
	return s.doc.Save(d)
}

func (s *Store) RemoveElement(elementID, topicID, courseID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.load()
	if err != nil {
		return err
	}
	element, err := findElement(d, elementID, topicID, courseID)
	if err != nil {
		return err
	}
	if !element.Visible() {
		return apperr.NotFound("element %s not found", elementID)
	}
	now := time.Now().UTC()
	element.DeleteDate = &now
	return s.doc.Save(d)
}

// ListCourses returns the IDs of courses whose delete marker is unset.
func (s *Store) ListCourses() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.load()
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(d.Courses))
	for id, course := range d.Courses {
		if course.Visible() {
			ids = append(ids, id)
		}
	}
	sortIDs(ids)
	return ids, nil
}

func (s *Store) ListTopics(courseID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.load()
	if err != nil {
		return nil, err
	}
	course, err := findCourse(d, courseID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(course.Topics))
	for id, topic := range course.Topics {
		if topic.Visible() {
			ids = append(ids, id)
		}
	}
	sortIDs(ids)
	return ids, nil
}

func (s *Store) ListElements(topicID, courseID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.load()
	if err != nil {
		return nil, err
	}
	topic, err := findTopic(d, topicID, courseID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(topic.Elements))
	for id, element := range topic.Elements {
		if element.Visible() {
			ids = append(ids, id)
		}
	}
	sortIDs(ids)
	return ids, nil
}

// CourseAttributes is a raw lookup: soft-deleted entries are still returned.
func (s *Store) CourseAttributes(courseID string) (*types.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.load()
	if err != nil {
		return nil, err
	}
	return findCourse(d, courseID)
}

func (s *Store) TopicAttributes(topicID, courseID string) (*types.Topic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.load()
	if err != nil {
		return nil, err
	}
	return findTopic(d, topicID, courseID)
}

func (s *Store) ElementAttributes(elementID, topicID, courseID string) (*types.Element, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.load()
	if err != nil {
		return nil, err
	}
	return findElement(d, elementID, topicID, courseID)
}

func (s *Store) load() (*types.Descriptor, error) {
	var d types.Descriptor
	if err := s.doc.Load(&d); err != nil {
		return nil, err
	}
	return &d, nil
}

func validName(name string) error {
	if strings.TrimSpace(name) == "" {
		return apperr.Validation("name must be non-empty")
	}
	return nil
}

func findCourse(d *types.Descriptor, courseID string) (*types.Course, error) {
	course, ok := d.Courses[courseID]
	if !ok {
		return nil, apperr.NotFound("course %s not found", courseID)
	}
	return course, nil
}

func findTopic(d *types.Descriptor, topicID, courseID string) (*types.Topic, error) {
	course, err := findCourse(d, courseID)
	if err != nil {
		return nil, err
	}
	topic, ok := course.Topics[topicID]
	if !ok {
		return nil, apperr.NotFound("topic %s not found in course %s", topicID, courseID)
	}
	return topic, nil
}

func findElement(d *types.Descriptor, elementID, topicID, courseID string) (*types.Element, error) {
	topic, err := findTopic(d, topicID, courseID)
	if err != nil {
		return nil, err
	}
	element, ok := topic.Elements[elementID]
	if !ok {
		return nil, apperr.NotFound("element %s not found in topic %s", elementID, topicID)
	}
	return element, nil
}
