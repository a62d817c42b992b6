package changelog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"time"
)

// DefaultReferencePrefix is the prefix of feature reference ids ("DS-042").
const DefaultReferencePrefix = "DS"

// categoryTags maps explicit bracketed tags to categories.
var categoryTags = map[string]Category{
	"new_features": Added,
	"changes":      Changed,
	"bugs":         Fixed,
}

// keywordRules classify untagged entries. Order matters: the first rule
// with a matching keyword wins.
var keywordRules = []struct {
	category Category
	keywords []string
}{
	{Fixed, []string{"fix", "bug", "error", "issue"}},
	{Added, []string{"add", "introduce", "new"}},
	{Removed, []string{"remove", "drop", "delete"}},
}

var (
	entryPattern = regexp.MustCompile(
		`^- \[x\](?: \[([^\]]+)\])? \*\*(.*?)\*\*(?: \((\d{4}-\d{2}-\d{2})\))?\s*(.*)$`)
	titleDatePattern   = regexp.MustCompile(`\((\d{4}-\d{2}-\d{2})\)`)
	whitespacePattern  = regexp.MustCompile(`\s+`)
	leadingEmptyBox    = regexp.MustCompile(`^\[\s*\]`)
	highlightMarkupTag = strings.NewReplacer("<mark>", "", "</mark>", "")
)

// DateError reports an implementation date that has the ISO shape but is not
// a real calendar date.
type DateError struct {
	Line  int
	Value string
	Err   error
}

func (e *DateError) Error() string {
	return fmt.Sprintf("line %d: invalid implementation date %q (expected YYYY-MM-DD)", e.Line, e.Value)
}

func (e *DateError) Unwrap() error {
	return e.Err
}

// IsDateError returns true if the error is a DateError.
func IsDateError(err error) bool {
	var de *DateError
	return errors.As(err, &de)
}

// ParseOptions controls feature log parsing.
type ParseOptions struct {
	// CarryForward fills a missing date from the nearest earlier entry.
	CarryForward bool
	// ReferencePrefix overrides DefaultReferencePrefix.
	ReferencePrefix string
}

// Parser turns feature log lines into entries.
type Parser struct {
	opts       ParseOptions
	refPattern *regexp.Regexp
}

// NewParser compiles a parser for the given options.
func NewParser(opts ParseOptions) *Parser {
	prefix := strings.TrimSpace(opts.ReferencePrefix)
	if prefix == "" {
		prefix = DefaultReferencePrefix
	}
	return &Parser{
		opts:       opts,
		refPattern: regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(prefix) + `-\d+\b`),
	}
}

// LoadFeatureLog reads and parses the feature log at path.
func LoadFeatureLog(path string, opts ParseOptions) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening feature log: %w", err)
	}
	defer f.Close()

	return NewParser(opts).Parse(f)
}

// Parse reads the feature log from r and returns its checked entries in
// file order. Lines that are not checked entries are skipped.
func (p *Parser) Parse(r io.Reader) ([]Entry, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var entries []Entry
	lastDate := ""
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		entry, ok := p.ParseLine(scanner.Text())
		if !ok {
			continue
		}
		entry.Line = lineNo

		if entry.DateText == "" && p.opts.CarryForward && lastDate != "" {
			entry.DateText = lastDate
			entry.DateSource = DateCarriedForward
		}

		if entry.DateText != "" {
			d, err := time.Parse(DateLayout, entry.DateText)
			if err != nil {
				return nil, &DateError{Line: lineNo, Value: entry.DateText, Err: err}
			}
			entry.Date = d
			lastDate = entry.DateText
		}

		entries = append(entries, entry)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading feature log: %w", err)
	}

	return entries, nil
}

// ParseLine parses a single feature log line. The returned entry carries the
// explicit or title date as text only; Parse validates it and applies
// carry-forward. The boolean is false for lines that are not checked entries.
func (p *Parser) ParseLine(line string) (Entry, bool) {
	line = highlightMarkupTag.Replace(strings.TrimRight(line, "\r"))
	m := entryPattern.FindStringSubmatch(line)
	if m == nil {
		return Entry{}, false
	}
	rawTag, title, explicitDate, trailing := m[1], m[2], m[3], m[4]

	refID := strings.ToUpper(p.refPattern.FindString(title + " " + trailing))
	if refID != "" {
		title = p.stripReference(title, refID)
	}
	title = normalizeTitle(title)

	titleDate := ""
	if dm := titleDatePattern.FindStringSubmatch(title); dm != nil {
		titleDate = dm[1]
		title = normalizeTitle(titleDatePattern.ReplaceAllString(title, ""))
	}

	trailing = strings.TrimSpace(trailing)
	if title == "" && trailing != "" {
		if refID != "" {
			trailing = p.stripReference(trailing, refID)
		}
		title = normalizeTitle(trailing)
	}

	entry := Entry{
		RawTag:      strings.TrimSpace(rawTag),
		Category:    Categorize(rawTag, title),
		Title:       title,
		ReferenceID: refID,
		DateSource:  DateNone,
	}

	switch {
	case explicitDate != "":
		entry.DateText = explicitDate
		entry.DateSource = DateExplicitEntry
	case titleDate != "":
		entry.DateText = titleDate
		entry.DateSource = DateExplicitTitle
	}

	return entry, true
}

// stripReference removes every case-insensitive occurrence of refID.
func (p *Parser) stripReference(text, refID string) string {
	return p.refPattern.ReplaceAllStringFunc(text, func(match string) string {
		if strings.EqualFold(match, refID) {
			return ""
		}
		return match
	})
}

// normalizeTitle drops empty bracket artifacts and collapses whitespace.
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "[]", "")
	title = strings.TrimSpace(whitespacePattern.ReplaceAllString(title, " "))
	return strings.TrimSpace(leadingEmptyBox.ReplaceAllString(title, ""))
}

// Categorize resolves an entry category. A known explicit tag wins;
// otherwise the title is classified by keyword, defaulting to Changed.
func Categorize(rawTag, title string) Category {
	if c, ok := categoryTags[strings.ToLower(strings.TrimSpace(rawTag))]; ok {
		return c
	}

	lowered := strings.ToLower(title)
	for _, rule := range keywordRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lowered, kw) {
				return rule.category
			}
		}
	}
	return Changed
}
