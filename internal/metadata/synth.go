package metadata

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

const (
	fallbackAuthor = "Unknown"
	fallbackTitle  = "Untitled"
)

// Segments are the sanitized path components a document organizes into.
// Series is empty when the document names no series; the organizer omits the
// directory level entirely in that case.
type Segments struct {
	Author string
	Series string
	Title  string
}

// Synthesize maps a metadata document to library path segments. It is a pure
// function: identical documents always yield identical segments, and every
// document (including the empty one) yields non-empty author and title
// segments.
func Synthesize(doc Document) Segments {
	return Segments{
		Author: authorSegment(doc.Author),
		Series: SanitizeSegment(doc.Series),
		Title:  titleSegment(doc),
	}
}

func authorSegment(author Author) string {
	if !author.Structured {
		if segment := SanitizeSegment(author.Raw); segment != "" {
			return segment
		}
		return fallbackAuthor
	}

	last := SanitizeSegment(author.Last)
	first := SanitizeSegment(author.First)
	switch {
	case last != "" && first != "":
		return last + ", " + first
	case last != "":
		return last
	case first != "":
		return first
	default:
		return fallbackAuthor
	}
}

func titleSegment(doc Document) string {
	var parts []string

	if doc.SeriesSequence > 0 {
		parts = append(parts, fmt.Sprintf("Vol %d", int(doc.SeriesSequence)))
	}
	if doc.PublishYear > 0 {
		parts = append(parts, strconv.Itoa(int(doc.PublishYear)))
	}

	main := SanitizeSegment(doc.Title.Main)
	if main == "" {
		main = fallbackTitle
	}
	parts = append(parts, main)

	if subtitle := SanitizeSegment(doc.Title.Subtitle); subtitle != "" {
		parts = append(parts, subtitle)
	}

	// The narrator rides on whichever component comes last, never on its own.
	if narrator := SanitizeSegment(doc.Narrator); narrator != "" {
		parts[len(parts)-1] += " {" + narrator + "}"
	}

	return strings.Join(parts, " - ")
}

// SanitizeSegment makes a string safe to use as a single path component on
// the supported platforms. Composed form is normalized (NFC) first so the
// same logical name always produces the same bytes, then separators, colons,
// and the remaining characters that are illegal in path segments become
// hyphens. Leading/trailing whitespace and trailing dots are dropped.
func SanitizeSegment(s string) string {
	s = norm.NFC.String(strings.TrimSpace(s))
	if s == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '/' || r == '\\' || r == ':':
			b.WriteRune('-')
		case r == '*' || r == '?' || r == '"' || r == '<' || r == '>' || r == '|':
			b.WriteRune('-')
		case r < 0x20 || r == 0x7f:
			b.WriteRune('-')
		default:
			b.WriteRune(r)
		}
	}

	return strings.TrimRight(strings.TrimSpace(b.String()), ".")
}
