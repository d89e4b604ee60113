package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// Composite fields are stored as JSON text so the same schema runs on
// PostgreSQL and SQLite.

// StringList is an ordered set of strings (tags, genres).
type StringList []string

// NewStringList trims, drops empties and removes duplicates, keeping first-seen order.
func NewStringList(in []string) StringList {
	out := make(StringList, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	return marshalColumn([]string(l))
}

func (l *StringList) Scan(src any) error {
	*l = StringList{}
	return scanColumn(src, (*[]string)(l))
}

func (s Subtasks) Value() (driver.Value, error) {
	if s == nil {
		s = Subtasks{}
	}
	return marshalColumn([]Subtask(s))
}

func (s *Subtasks) Scan(src any) error {
	*s = Subtasks{}
	return scanColumn(src, (*[]Subtask)(s))
}

func (d ActivityDetails) Value() (driver.Value, error) {
	return marshalColumn(d)
}

func (d *ActivityDetails) Scan(src any) error {
	*d = ActivityDetails{}
	return scanColumn(src, d)
}

func (p Preferences) Value() (driver.Value, error) {
	return marshalColumn(p)
}

func (p *Preferences) Scan(src any) error {
	*p = DefaultPreferences()
	return scanColumn(src, p)
}

func marshalColumn(v any) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func scanColumn(src any, dst any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported column type %T", src)
	}
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}
