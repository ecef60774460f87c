package internal

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// ErrEmptyDate is returned for blank input; no parse is attempted
var ErrEmptyDate = errors.New("empty date")

// DateParseError reports a date string no known format could read
type DateParseError struct {
	Input string
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("unparseable date %q", e.Input)
}

// DateNormalizer turns the date strings found in webhook rows into instants.
// Strings without an explicit zone are read in the configured location.
type DateNormalizer struct {
	loc     *time.Location
	layouts []string
}

// NewDateNormalizer creates a DateNormalizer for the given location and fallback layouts
func NewDateNormalizer(loc *time.Location, layouts []string) *DateNormalizer {
	if loc == nil {
		loc = time.UTC
	}
	return &DateNormalizer{loc: loc, layouts: layouts}
}

// Parse returns the instant for raw, ErrEmptyDate for blank input,
// or a *DateParseError when every format fails.
func (n *DateNormalizer) Parse(raw string) (time.Time, error) {
	s := cleanDate(raw)
	if s == "" {
		return time.Time{}, ErrEmptyDate
	}

	// ISO-8601 and the other zone-agnostic forms. Time-only and yearless
	// layouts come back in year 0 and count as unparsed.
	if t, err := cast.ToTimeInDefaultLocationE(s, n.loc); err == nil && t.Year() != 0 {
		return t, nil
	}

	for _, layout := range n.layouts {
		if t, err := time.ParseInLocation(layout, s, n.loc); err == nil {
			return t, nil
		}
	}

	return time.Time{}, &DateParseError{Input: raw}
}

// cleanDate trims input and drops literal `\n` sequences left by some exports
func cleanDate(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, `\n`, "")
	return strings.TrimSpace(s)
}

// TimedConversation is a conversation row with its timestamps normalized
type TimedConversation struct {
	ConversationRow
	Start    time.Time
	End      time.Time
	HasStart bool
	HasEnd   bool
}

// TimeConversations parses the start and end of every row once. Non-empty
// strings that fail to parse are logged; the row keeps HasStart/HasEnd false.
func (n *DateNormalizer) TimeConversations(rows []ConversationRow) []TimedConversation {
	timed := make([]TimedConversation, len(rows))
	for i, row := range rows {
		timed[i].ConversationRow = row
		timed[i].Start, timed[i].HasStart = n.parseField(row.StartTime, fieldStartTime, i, row.ConversationID)
		timed[i].End, timed[i].HasEnd = n.parseField(row.EndTime, fieldEndTime, i, row.ConversationID)
	}
	return timed
}

func (n *DateNormalizer) parseField(raw, field string, index int, id string) (time.Time, bool) {
	t, err := n.Parse(raw)
	if err != nil {
		var parseErr *DateParseError
		if errors.As(err, &parseErr) {
			LogWarn("Could not parse %s %q in %s", field, raw, rowRef(index, id))
		}
		return time.Time{}, false
	}
	return t, true
}
