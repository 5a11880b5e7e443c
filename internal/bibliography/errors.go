package bibliography

import "errors"

// Back-reference resolution errors. They are logged, never returned by
// Collect: an unresolved back-reference only leaves its markers untouched.
var (
	ErrNonNumericKey         = errors.New("back-reference note key is not numeric")
	ErrNoPredecessor         = errors.New("back-reference has no preceding note")
	ErrPredecessorUnresolved = errors.New("preceding note is not resolved")
)

// ErrEmptyBibliography is returned by WriteBibTeX when there is nothing to write.
var ErrEmptyBibliography = errors.New("bibliography has no entries")
