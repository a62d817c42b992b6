package changelog

import "time"

// Category is a Keep a Changelog section name.
type Category string

const (
	Added   Category = "Added"
	Changed Category = "Changed"
	Fixed   Category = "Fixed"
	Removed Category = "Removed"
	// Notes holds free text lifted from remote release bodies.
	// It is never produced by the feature parser.
	Notes Category = "Notes"
)

// CategoryOrder returns the categories in their rendering order.
func CategoryOrder() []Category {
	return []Category{Added, Changed, Fixed, Removed, Notes}
}

// DateSource records where an entry's implementation date came from.
type DateSource string

const (
	DateNone            DateSource = "none"
	DateExplicitEntry   DateSource = "explicit-in-entry"
	DateExplicitTitle   DateSource = "explicit-in-title"
	DateCarriedForward  DateSource = "carried-forward"
	DateInferredPR      DateSource = "inferred-from-pr"
	DateInferredHistory DateSource = "inferred-from-history"
)

// DateLayout is the ISO calendar date format used in the feature log
// and in rendered output.
const DateLayout = "2006-01-02"

// Tag is a version-control tag and its creation timestamp.
type Tag struct {
	Name      string
	Timestamp time.Time
}

// Release is the remote release metadata published for a tag.
// Published is zero when the remote carried no date.
type Release struct {
	TagName   string
	Name      string
	Body      string
	Published time.Time
}

// Entry is a single checked item parsed from the feature log.
type Entry struct {
	// RawTag is the bracketed category tag as written, trimmed.
	RawTag   string
	Category Category
	Title    string
	// ReferenceID is the uppercase feature reference (e.g. "DS-042"), or empty.
	ReferenceID string
	// Date is the resolved implementation date at midnight UTC; zero when unknown.
	Date time.Time
	// DateText is the ISO date string rendered after the title.
	DateText   string
	DateSource DateSource
	// Line is the 1-based line number in the feature log.
	Line int
}

// HasDate reports whether the entry has a resolved implementation date.
func (e Entry) HasDate() bool {
	return !e.Date.IsZero()
}

// SetDate resolves the entry's implementation date from the given source.
func (e *Entry) SetDate(d time.Time, source DateSource) {
	e.Date = Day(d)
	e.DateText = e.Date.Format(DateLayout)
	e.DateSource = source
}

// PullRequestInfo is the subset of pull-request metadata used to infer dates
// and link entries.
type PullRequestInfo struct {
	Number    int
	ClosedAt  time.Time
	CreatedAt time.Time
}

// BestDate returns the close date, falling back to the creation date.
// The boolean is false when neither is known.
func (p PullRequestInfo) BestDate() (time.Time, bool) {
	if !p.ClosedAt.IsZero() {
		return p.ClosedAt, true
	}
	if !p.CreatedAt.IsZero() {
		return p.CreatedAt, true
	}
	return time.Time{}, false
}

// Day returns the calendar day of t, as seen in t's own location, at
// midnight UTC so days from different zones compare directly.
func Day(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
