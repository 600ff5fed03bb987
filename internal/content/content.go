// Package content owns the physical side of the repository: a directory
// tree mirroring descriptor parentage (<root>/<courseId>/<topicId>/
// <elementId>/) holding each element's blob. The descriptor decides
// visibility, the filesystem decides physical presence, and listings return
// the intersection of the two.
package content

import (
	"os"
	"path/filepath"

	"github.com/lezionipari/coursecore/internal/apperr"
	"github.com/lezionipari/coursecore/internal/descriptor"
	"github.com/lezionipari/coursecore/internal/docstore"
	"github.com/lezionipari/coursecore/internal/platform/logger"
	"github.com/lezionipari/coursecore/internal/types"
)

const (
	lessonFile = "index.html"
	quizFile   = "index.json"
	mediaDir   = "media"
)

type Store struct {
	root string
	desc *descriptor.Store
	log  *logger.Logger
}

// New opens the store rooted at root, creating the directory if needed.
func New(root string, desc *descriptor.Store, baseLog *logger.Logger) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, apperr.Wrap(apperr.KindIO, err, "create content root %s", root)
	}
	return &Store{
		root: root,
		desc: desc,
		log:  baseLog.With("store", "content"),
	}, nil
}

// AddCourse allocates a course ID, creates its directory and registers it in
// the descriptor. A failed mkdir leaves the descriptor untouched; a failed
// registration after a successful mkdir leaves an orphan directory behind,
// which listings then exclude because the descriptor never saw the course.
func (s *Store) AddCourse(name string) (string, error) {
	courseID, err := s.desc.NextID(types.KindCourse)
	if err != nil {
		return "", err
	}
	if err := os.Mkdir(filepath.Join(s.root, courseID), 0o755); err != nil {
		return "", apperr.Wrap(apperr.KindIO, err, "create course directory %s", courseID)
	}
	if err := s.desc.AddCourse(name, courseID); err != nil {
		return "", err
	}
	s.log.Info("course created", "course", courseID)
	return courseID, nil
}

func (s *Store) AddTopic(name, courseID string) (string, error) {
	topicID, err := s.desc.NextID(types.KindTopic)
	if err != nil {
		return "", err
	}
	if err := os.Mkdir(filepath.Join(s.root, courseID, topicID), 0o755); err != nil {
		return "", apperr.Wrap(apperr.KindIO, err, "create topic directory %s", topicID)
	}
	if err := s.desc.AddTopic(name, topicID, courseID); err != nil {
		return "", err
	}
	s.log.Info("topic created", "topic", topicID, "course", courseID)
	return topicID, nil
}

// AddLesson creates the element directory seeded with an empty markup body.
func (s *Store) AddLesson(name, topicID, courseID string) (string, error) {
	elementID, err := s.desc.NextID(types.KindElement)
	if err != nil {
		return "", err
	}
	dir := s.elementDir(elementID, topicID, courseID)
	if err := os.Mkdir(dir, 0o755); err != nil {
		return "", apperr.Wrap(apperr.KindIO, err, "create element directory %s", elementID)
	}
	if err := os.WriteFile(filepath.Join(dir, lessonFile), nil, 0o644); err != nil {
		return "", apperr.Wrap(apperr.KindIO, err, "seed lesson body %s", elementID)
	}
	if err := s.desc.AddElement(name, types.ElementLesson, elementID, topicID, courseID); err != nil {
		return "", err
	}
	s.log.Info("lesson created", "element", elementID, "topic", topicID)
	return elementID, nil
}

// AddQuiz creates the element directory with a media subdirectory and the
// empty question-bank skeleton.
func (s *Store) AddQuiz(name, topicID, courseID string) (string, error) {
	elementID, err := s.desc.NextID(types.KindElement)
	if err != nil {
		return "", err
	}
	dir := s.elementDir(elementID, topicID, courseID)
	if err := os.Mkdir(dir, 0o755); err != nil {
		return "", apperr.Wrap(apperr.KindIO, err, "create element directory %s", elementID)
	}
	if err := os.Mkdir(filepath.Join(dir, mediaDir), 0o755); err != nil {
		return "", apperr.Wrap(apperr.KindIO, err, "create media directory %s", elementID)
	}
	if err := docstore.NewFile(filepath.Join(dir, quizFile)).Save(types.NewQuizState()); err != nil {
		return "", err
	}
	if err := s.desc.AddElement(name, types.ElementQuiz, elementID, topicID, courseID); err != nil {
		return "", err
	}
	s.log.Info("quiz created", "element", elementID, "topic", topicID)
	return elementID, nil
}

// EditLesson overwrites the lesson body wholesale. The markup is opaque to
// this layer: no sanitization, no partial patching.
func (s *Store) EditLesson(elementID, topicID, courseID, html string) error {
	dir := s.elementDir(elementID, topicID, courseID)
	if _, err := os.Stat(dir); err != nil {
		return apperr.Wrap(apperr.KindIO, err, "element directory %s", elementID)
	}
	return docstore.WriteAtomic(filepath.Join(dir, lessonFile), []byte(html))
}

// EditQuiz overwrites the quiz's structured state wholesale.
func (s *Store) EditQuiz(elementID, topicID, courseID string, state *types.QuizState) error {
	dir := s.elementDir(elementID, topicID, courseID)
	if _, err := os.Stat(dir); err != nil {
		return apperr.Wrap(apperr.KindIO, err, "element directory %s", elementID)
	}
	return docstore.NewFile(filepath.Join(dir, quizFile)).Save(state)
}

func (s *Store) LessonHTML(elementID, topicID, courseID string) (string, error) {
	path := filepath.Join(s.elementDir(elementID, topicID, courseID), lessonFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return "", apperr.Wrap(apperr.KindIO, err, "read lesson %s", elementID)
	}
	return string(data), nil
}

func (s *Store) QuizState(elementID, topicID, courseID string) (*types.QuizState, error) {
	path := filepath.Join(s.elementDir(elementID, topicID, courseID), quizFile)
	var state types.QuizState
	if err := docstore.NewFile(path).Load(&state); err != nil {
		return nil, err
	}
	return &state, nil
}

// ListCourses returns the intersection of the physical course directories
// and the descriptor's visible courses. An entry missing from either side is
// excluded; this is the guard against drift between the two stores.
func (s *Store) ListCourses() ([]string, error) {
	visible, err := s.desc.ListCourses()
	if err != nil {
		return nil, err
	}
	return s.intersect(s.root, visible)
}

func (s *Store) ListTopics(courseID string) ([]string, error) {
	visible, err := s.desc.ListTopics(courseID)
	if err != nil {
		return nil, err
	}
	return s.intersect(filepath.Join(s.root, courseID), visible)
}

func (s *Store) ListElements(topicID, courseID string) ([]string, error) {
	visible, err := s.desc.ListElements(topicID, courseID)
	if err != nil {
		return nil, err
	}
	return s.intersect(filepath.Join(s.root, courseID, topicID), visible)
}

// RemoveCourse soft-deletes via the descriptor; the directory tree is never
// touched.
func (s *Store) RemoveCourse(courseID string) error {
	return s.desc.RemoveCourse(courseID)
}

func (s *Store) RemoveTopic(topicID, courseID string) error {
	return s.desc.RemoveTopic(topicID, courseID)
}

func (s *Store) RemoveElement(elementID, topicID, courseID string) error {
	return s.desc.RemoveElement(elementID, topicID, courseID)
}

func (s *Store) CourseAttributes(courseID string) (*types.Course, error) {
	return s.desc.CourseAttributes(courseID)
}

func (s *Store) TopicAttributes(topicID, courseID string) (*types.Topic, error) {
	return s.desc.TopicAttributes(topicID, courseID)
}

func (s *Store) ElementAttributes(elementID, topicID, courseID string) (*types.Element, error) {
	return s.desc.ElementAttributes(elementID, topicID, courseID)
}

func (s *Store) elementDir(elementID, topicID, courseID string) string {
	return filepath.Join(s.root, courseID, topicID, elementID)
}

func (s *Store) intersect(dir string, visible []string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindIO, err, "list %s", dir)
	}
	set := make(map[string]bool, len(visible))
	for _, id := range visible {
		set[id] = true
	}
	var ids []string
	for _, entry := range entries {
		if entry.IsDir() && set[entry.Name()] {
			ids = append(ids, entry.Name())
		}
	}
	return ids, nil
}
