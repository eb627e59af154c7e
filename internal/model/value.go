package model

import (
	"fmt"
	"time"
)

// Value is a sealed interface representing attribute values.
// Only Null, String, Int and Date implement it.
type Value interface {
	valueKind() ValueKind
}

// ValueKind names the kind of an attribute.
type ValueKind string

const (
	KindNull   ValueKind = "null"
	KindString ValueKind = "string"
	KindInt    ValueKind = "int"
	KindDate   ValueKind = "date"
)

// KindOf returns the kind of v. A nil Value is reported as KindNull.
func KindOf(v Value) ValueKind {
	if v == nil {
		return KindNull
	}
	return v.valueKind()
}

// Null represents an absent attribute (e.g. an unknown birth date).
type Null struct{}

func (Null) valueKind() ValueKind { return KindNull }

func (Null) String() string { return "null" }

// String is a string attribute. Comparison is exact and case-sensitive.
type String string

func (String) valueKind() ValueKind { return KindString }

// Int is an integer attribute.
type Int int64

func (Int) valueKind() ValueKind { return KindInt }

// Date is a calendar date without time of day or zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func (Date) valueKind() ValueKind { return KindDate }

// DateLayout is the textual form of a Date in datasets and output.
const DateLayout = "2006-01-02"

// NewDate builds a Date, normalizing out-of-range month/day values the same
// way time.Date does.
func NewDate(year int, month time.Month, day int) Date {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// OptionalDate converts a possibly-nil date pointer to a Value.
func OptionalDate(d *Date) Value {
	if d == nil {
		return Null{}
	}
	return *d
}
