package content

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lezionipari/coursecore/internal/apperr"
	"github.com/lezionipari/coursecore/internal/descriptor"
	"github.com/lezionipari/coursecore/internal/docstore"
	"github.com/lezionipari/coursecore/internal/platform/logger"
	"github.com/lezionipari/coursecore/internal/quiz"
	"github.com/lezionipari/coursecore/internal/types"
)

type harness struct {
	store *Store
	desc  *descriptor.Store
	root  string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	doc := docstore.NewFile(filepath.Join(dir, "descriptor.json"))
	desc, err := descriptor.New(doc, filepath.Join(dir, "backup_descriptor"), logger.NewNop())
	require.NoError(t, err)
	root := filepath.Join(dir, "courses")
	store, err := New(root, desc, logger.NewNop())
	require.NoError(t, err)
	return &harness{store: store, desc: desc, root: root}
}

func TestAddCourseCreatesDirectoryAndRegisters(t *testing.T) {
	h := newHarness(t)

	courseID, err := h.store.AddCourse("Philosophy")
	require.NoError(t, err)
	assert.Equal(t, "c-1", courseID)

	info, err := os.Stat(filepath.Join(h.root, courseID))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	courses, err := h.store.ListCourses()
	require.NoError(t, err)
	assert.Equal(t, []string{"c-1"}, courses)
}

func TestAddCourseMkdirFailureLeavesDescriptorUntouched(t *testing.T) {
	h := newHarness(t)

	// The next course ID is c-1; a file squatting on that path makes the
	// mkdir fail.
	require.NoError(t, os.WriteFile(filepath.Join(h.root, "c-1"), []byte("x"), 0o644))

	_, err := h.store.AddCourse("Philosophy")
	assert.True(t, apperr.IsIO(err))

	courses, err := h.desc.ListCourses()
	require.NoError(t, err)
	assert.Empty(t, courses)
}

func TestListingsAreTheIntersectionOfBothStores(t *testing.T) {
	h := newHarness(t)

	first, err := h.store.AddCourse("Philosophy")
	require.NoError(t, err)
	second, err := h.store.AddCourse("Logic")
	require.NoError(t, err)

	// Soft-deleted in the descriptor: still on disk, gone from listings.
	require.NoError(t, h.store.RemoveCourse(second))
	courses, err := h.store.ListCourses()
	require.NoError(t, err)
	assert.Equal(t, []string{first}, courses)
	_, statErr := os.Stat(filepath.Join(h.root, second))
	assert.NoError(t, statErr)

	// Physically gone: still visible in the descriptor, gone from listings.
	require.NoError(t, os.RemoveAll(filepath.Join(h.root, first)))
	courses, err = h.store.ListCourses()
	require.NoError(t, err)
	assert.Empty(t, courses)
	visible, err := h.desc.ListCourses()
	require.NoError(t, err)
	assert.Equal(t, []string{first}, visible)
}

func TestLessonLifecycle(t *testing.T) {
	h := newHarness(t)

	courseID, err := h.store.AddCourse("Philosophy")
	require.NoError(t, err)
	topicID, err := h.store.AddTopic("Ethics", courseID)
	require.NoError(t, err)
	lessonID, err := h.store.AddLesson("Kant", topicID, courseID)
	require.NoError(t, err)

	// Seeded empty.
	html, err := h.store.LessonHTML(lessonID, topicID, courseID)
	require.NoError(t, err)
	assert.Equal(t, "", html)

	body := "<h1>The Categorical Imperative</h1>"
	require.NoError(t, h.store.EditLesson(lessonID, topicID, courseID, body))
	html, err = h.store.LessonHTML(lessonID, topicID, courseID)
	require.NoError(t, err)
	assert.Equal(t, body, html)

	attrs, err := h.store.ElementAttributes(lessonID, topicID, courseID)
	require.NoError(t, err)
	assert.Equal(t, types.ElementLesson, attrs.Type)

	require.NoError(t, h.store.RemoveElement(lessonID, topicID, courseID))
	elements, err := h.store.ListElements(topicID, courseID)
	require.NoError(t, err)
	assert.Empty(t, elements)
	// Soft delete: the blob survives.
	_, statErr := os.Stat(filepath.Join(h.root, courseID, topicID, lessonID, "index.html"))
	assert.NoError(t, statErr)
}

func TestQuizLifecycle(t *testing.T) {
	h := newHarness(t)

	courseID, err := h.store.AddCourse("Philosophy")
	require.NoError(t, err)
	topicID, err := h.store.AddTopic("Ethics", courseID)
	require.NoError(t, err)
	quizID, err := h.store.AddQuiz("Midterm", topicID, courseID)
	require.NoError(t, err)

	info, err := os.Stat(filepath.Join(h.root, courseID, topicID, quizID, "media"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	state, err := h.store.QuizState(quizID, topicID, courseID)
	require.NoError(t, err)
	assert.Equal(t, 0, state.Questions.Count)
	assert.Empty(t, state.Questions.Questions)
	assert.Empty(t, state.Stats)

	// Author a question through the engine and persist the result.
	engine := quiz.New(state)
	questionID := engine.AddRadio("Who wrote the Critique?", []string{"Hume"}, "Kant")
	require.NoError(t, h.store.EditQuiz(quizID, topicID, courseID, engine.State()))

	reloaded, err := h.store.QuizState(quizID, topicID, courseID)
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.Questions.Count)
	require.Contains(t, reloaded.Questions.Questions, questionID)
	assert.Equal(t, "Kant", reloaded.Questions.Questions[questionID].CorrectAnswer)
}

func TestReadsFailWithIOErrorWhenBlobMissing(t *testing.T) {
	h := newHarness(t)

	_, err := h.store.LessonHTML("e-9", "t-9", "c-9")
	assert.True(t, apperr.IsIO(err))

	_, err = h.store.QuizState("e-9", "t-9", "c-9")
	assert.True(t, apperr.IsIO(err))

	err = h.store.EditLesson("e-9", "t-9", "c-9", "<p>x</p>")
	assert.True(t, apperr.IsIO(err))
}

func TestRemoveDelegatesToDescriptor(t *testing.T) {
	h := newHarness(t)

	courseID, err := h.store.AddCourse("Philosophy")
	require.NoError(t, err)
	topicID, err := h.store.AddTopic("Ethics", courseID)
	require.NoError(t, err)

	require.NoError(t, h.store.RemoveTopic(topicID, courseID))
	err = h.store.RemoveTopic(topicID, courseID)
	assert.True(t, apperr.IsNotFound(err))

	// The topic directory is never deleted.
	_, statErr := os.Stat(filepath.Join(h.root, courseID, topicID))
	assert.NoError(t, statErr)
}
