// Package apperr defines the stable short codes the presentation layer uses
// to render a consistent message for every core failure.
package apperr

// Code is a stable, user-visible error reference.
type Code string

const (
	CodeDBLoad     Code = "PJ-DB01" // store rows could not be read
	CodeDBSave     Code = "PJ-DB02" // a write failed
	CodeDBDelete   Code = "PJ-DB03" // a delete was rejected or failed
	CodeDBConnect  Code = "PJ-DB04" // the store could not be opened
	CodeDBVacuum   Code = "PJ-DB05" // optimize (VACUUM) did not complete
	CodeIOBackup   Code = "PJ-IO01" // a backup file could not be written
	CodeValNumber  Code = "PJ-VAL01" // malformed numeric input
	CodeValDate    Code = "PJ-VAL02" // malformed date input
	CodeUnexpected Code = "PJ-APP01" // unclassified internal failure
)

var messages = map[Code]string{
	CodeDBLoad:     "Your data could not be loaded. The list may appear empty.",
	CodeDBSave:     "Your changes could not be saved. Please try again.",
	CodeDBDelete:   "This item could not be deleted. Please try again.",
	CodeDBConnect:  "Could not open the database. Restart the app and try again.",
	CodeDBVacuum:   "The database optimisation did not complete.",
	CodeIOBackup:   "The backup file could not be written. Check available disk space.",
	CodeValNumber:  "Please enter a valid number in that field.",
	CodeValDate:    "Please enter a date in YYYY-MM-DD format.",
	CodeUnexpected: "Something unexpected happened. No data was lost.",
}

// Message returns the user-facing text for a code.
func Message(c Code) string {
	if m, ok := messages[c]; ok {
		return m
	}
	return "An unexpected error occurred."
}

// Error pairs a code with the underlying cause so callers can both render a
// stable reference and unwrap the original failure.
type Error struct {
	Code Code
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return string(e.Code) + ": " + Message(e.Code)
	}
	return string(e.Code) + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Wrap attaches a code to err. A nil err yields nil.
func Wrap(c Code, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Code: c, Err: err}
}
