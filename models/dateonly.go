package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// DateOnly wraps time.Time for calendar-date fields (data_solicitacao,
// data_vistoria, data_nascimento) so we can control both JSON un/marshaling
// and SQL driver encoding. The wire form is always "2006-01-02".
type DateOnly time.Time

const dateOnlyLayout = "2006-01-02"

// UnmarshalJSON accepts the plain date form ("2025-08-14") and, for
// tolerance with exports from the old system, a full RFC3339 timestamp
// whose time part is discarded.
func (d *DateOnly) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	if s == "" || s == "null" {
		*d = DateOnly(time.Time{})
		return nil
	}

	if t, err := time.Parse(dateOnlyLayout, s); err == nil {
		*d = DateOnly(t)
		return nil
	}

	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("DateOnly.UnmarshalJSON: cannot parse %q: %w", s, err)
	}
	*d = DateOnly(t.Truncate(24 * time.Hour))
	return nil
}

// MarshalJSON emits "2006-01-02", or null for the zero date.
func (d DateOnly) MarshalJSON() ([]byte, error) {
	t := time.Time(d)
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(dateOnlyLayout))
}

func (d DateOnly) String() string {
	t := time.Time(d)
	if t.IsZero() {
		return ""
	}
	return t.Format(dateOnlyLayout)
}

func (d DateOnly) IsZero() bool {
	return time.Time(d).IsZero()
}

// Value implements driver.Valuer so GORM can write a SQL DATE parameter.
func (d DateOnly) Value() (driver.Value, error) {
	t := time.Time(d)
	if t.IsZero() {
		return nil, nil
	}
	return t, nil
}

// Scan implements sql.Scanner so GORM can read DATE columns back.
func (d *DateOnly) Scan(src interface{}) error {
	if src == nil {
		*d = DateOnly(time.Time{})
		return nil
	}

	switch v := src.(type) {
	case time.Time:
		*d = DateOnly(v)
		return nil
	case []byte:
		return d.scanString(string(v))
	case string:
		return d.scanString(v)
	default:
		return fmt.Errorf("DateOnly.Scan: unsupported type %T", src)
	}
}

func (d *DateOnly) scanString(s string) error {
	if t, err := time.Parse(dateOnlyLayout, s); err == nil {
		*d = DateOnly(t)
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return fmt.Errorf("DateOnly.Scan: parse %q: %w", s, err)
	}
	*d = DateOnly(t)
	return nil
}

// Hoje returns the current calendar date in local time.
func Hoje() DateOnly {
	y, m, day := time.Now().Date()
	return DateOnly(time.Date(y, m, day, 0, 0, 0, 0, time.UTC))
}
