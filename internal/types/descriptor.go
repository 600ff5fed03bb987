package types

import "time"

// IDKind selects one of the three global descriptor counters.
type IDKind string

const (
	KindCourse  IDKind = "course"
	KindTopic   IDKind = "topic"
	KindElement IDKind = "element"
)

// Prefix returns the identifier prefix for the kind ("c", "t" or "e").
func (k IDKind) Prefix() string {
	switch k {
	case KindCourse:
		return "c"
	case KindTopic:
		return "t"
	case KindElement:
		return "e"
	}
	return ""
}

type ElementType string

const (
	ElementLesson ElementType = "lesson"
	ElementQuiz   ElementType = "quiz"
)

func (t ElementType) Valid() bool {
	return t == ElementLesson || t == ElementQuiz
}

// Descriptor is the whole metadata document: three monotonic counters plus
// the course hierarchy. It is read and rewritten wholesale on every mutation.
type Descriptor struct {
	CoursesCounter  int                `json:"courses_counter"`
	TopicsCounter   int                `json:"topics_counter"`
	ElementsCounter int                `json:"elements_counter"`
	Courses         map[string]*Course `json:"courses"`
}

// NewDescriptor returns the bootstrap document: all counters at 1, no courses.
func NewDescriptor() *Descriptor {
	return &Descriptor{
		CoursesCounter:  1,
		TopicsCounter:   1,
		ElementsCounter: 1,
		Courses:         map[string]*Course{},
	}
}

type Course struct {
	Name         string            `json:"name"`
	CreationDate time.Time         `json:"creation_date"`
	DeleteDate   *time.Time        `json:"delete_date"`
	Topics       map[string]*Topic `json:"topics"`
}

type Topic struct {
	Name         string              `json:"name"`
	CreationDate time.Time           `json:"creation_date"`
	DeleteDate   *time.Time          `json:"delete_date"`
	Elements     map[string]*Element `json:"elements"`
}

type Element struct {
	Name         string      `json:"name"`
	Type         ElementType `json:"type"`
	CreationDate time.Time   `json:"creation_date"`
	EditDate     time.Time   `json:"edit_date"`
	DeleteDate   *time.Time  `json:"delete_date"`
}

// Visible reports whether the entity has not been soft-deleted. Each level
// checks only its own marker: deleting a course does not hide its topics.
func (c *Course) Visible() bool  { return c.DeleteDate == nil }
func (t *Topic) Visible() bool   { return t.DeleteDate == nil }
func (e *Element) Visible() bool { return e.DeleteDate == nil }
