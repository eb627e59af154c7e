package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotLoaded is returned by reads before Load has completed.
	ErrNotLoaded = errors.New("store not loaded")

	// ErrAlreadyLoaded is returned by a second call to Load.
	ErrAlreadyLoaded = errors.New("store already loaded")

	// ErrNotFound is returned when no entity of the requested kind has the id.
	ErrNotFound = errors.New("entity not found")
)

// LoadErrorCode categorizes load-time integrity violations.
type LoadErrorCode string

const (
	// ErrCodeDanglingReference indicates a role or link references a missing record.
	ErrCodeDanglingReference LoadErrorCode = "DANGLING_REFERENCE"

	// ErrCodeDuplicateCountry indicates two countries share a name.
	ErrCodeDuplicateCountry LoadErrorCode = "DUPLICATE_COUNTRY"

	// ErrCodeDuplicateKey indicates two records of one kind share a key.
	ErrCodeDuplicateKey LoadErrorCode = "DUPLICATE_KEY"

	// ErrCodeDuplicateLink indicates the same film link appears twice.
	ErrCodeDuplicateLink LoadErrorCode = "DUPLICATE_LINK"

	// ErrCodeMissingAttribute indicates a required attribute is empty.
	ErrCodeMissingAttribute LoadErrorCode = "MISSING_ATTRIBUTE"

	// ErrCodeUnknownKind indicates a record with an unrecognized kind tag.
	ErrCodeUnknownKind LoadErrorCode = "UNKNOWN_KIND"
)

// LoadError reports a referential integrity violation found during Load.
// Load errors are fatal: nothing from the batch is published.
type LoadError struct {
	Code LoadErrorCode

	// Index is the position of the offending record in the batch.
	Index int

	Kind    RecordKind
	Key     int64
	Message string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load error %s: record %d (%s key=%d): %s", e.Code, e.Index, e.Kind, e.Key, e.Message)
}

// IsLoadError reports whether err is (or wraps) a *LoadError.
func IsLoadError(err error) bool {
	var le *LoadError
	return errors.As(err, &le)
}

func newLoadError(code LoadErrorCode, index int, rec Record, format string, args ...any) *LoadError {
	return &LoadError{
		Code:    code,
		Index:   index,
		Kind:    rec.Kind,
		Key:     rec.Key,
		Message: fmt.Sprintf(format, args...),
	}
}
