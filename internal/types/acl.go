package types

import (
	"encoding/json"
	"fmt"
)

// Mode is an access mode. On the wire a disabled mode is the JSON literal
// false, not a string, so Mode carries its own codec.
type Mode string

const (
	ModeNone      Mode = ""
	ModeRead      Mode = "r"
	ModeReadWrite Mode = "rw"
)

// Valid reports whether m is one of the two grantable modes.
func (m Mode) Valid() bool {
	return m == ModeRead || m == ModeReadWrite
}

func (m Mode) MarshalJSON() ([]byte, error) {
	if m == ModeNone {
		return []byte("false"), nil
	}
	return json.Marshal(string(m))
}

func (m *Mode) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		mode := Mode(s)
		if !mode.Valid() {
			return fmt.Errorf("invalid access mode %q", s)
		}
		*m = mode
		return nil
	}
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		if b {
			return fmt.Errorf("access mode cannot be true")
		}
		*m = ModeNone
		return nil
	}
	return fmt.Errorf("invalid access mode %s", data)
}

// CourseACL holds one course's permissions. The wire shape is a single flat
// object where the reserved "everyone" key sits next to per-user entries:
// {"everyone": false, "u-1": "rw"}.
type CourseACL struct {
	Everyone Mode
	Users    map[string]Mode
}

func NewCourseACL() *CourseACL {
	return &CourseACL{Everyone: ModeNone, Users: map[string]Mode{}}
}

func (c CourseACL) MarshalJSON() ([]byte, error) {
	flat := make(map[string]Mode, len(c.Users)+1)
	for id, mode := range c.Users {
		flat[id] = mode
	}
	flat["everyone"] = c.Everyone
	return json.Marshal(flat)
}

func (c *CourseACL) UnmarshalJSON(data []byte) error {
	var flat map[string]Mode
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}
	c.Everyone = flat["everyone"]
	delete(flat, "everyone")
	if flat == nil {
		flat = map[string]Mode{}
	}
	c.Users = flat
	return nil
}

// ACL is the whole access-control document.
type ACL struct {
	Courses map[string]*CourseACL `json:"courses"`
}

func NewACL() *ACL {
	return &ACL{Courses: map[string]*CourseACL{}}
}
