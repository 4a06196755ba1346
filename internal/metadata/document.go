package metadata

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Confidence is the qualitative trust level the resolver attaches to title
// metadata. An absent or unknown level is treated as low.
type Confidence string

const (
	ConfidenceLow      Confidence = "low"
	ConfidenceHigh     Confidence = "high"
	ConfidenceVeryHigh Confidence = "very_high"
)

// Normalize maps empty and unrecognized values to ConfidenceLow.
func (c Confidence) Normalize() Confidence {
	switch Confidence(strings.ToLower(strings.TrimSpace(string(c)))) {
	case ConfidenceHigh:
		return ConfidenceHigh
	case ConfidenceVeryHigh:
		return ConfidenceVeryHigh
	default:
		return ConfidenceLow
	}
}

// Accepted reports whether the level clears the organization gate.
func (c Confidence) Accepted() bool {
	normalized := c.Normalize()
	return normalized == ConfidenceHigh || normalized == ConfidenceVeryHigh
}

// Author normalizes the wire "author" field, which resolvers return either as
// a plain string or as {"first": ..., "last": ...}. The structured flag is the
// variant tag; downstream code never re-inspects raw JSON.
type Author struct {
	Raw        string
	First      string
	Last       string
	Structured bool
}

func (a *Author) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*a = Author{}
		return nil
	}
	if trimmed[0] == '"' {
		var value string
		if err := json.Unmarshal(trimmed, &value); err != nil {
			return fmt.Errorf("author: %w", err)
		}
		*a = Author{Raw: strings.TrimSpace(value)}
		return nil
	}
	var structured struct {
		First string `json:"first"`
		Last  string `json:"last"`
	}
	if err := json.Unmarshal(trimmed, &structured); err != nil {
		return fmt.Errorf("author: %w", err)
	}
	*a = Author{
		First:      strings.TrimSpace(structured.First),
		Last:       strings.TrimSpace(structured.Last),
		Structured: true,
	}
	return nil
}

func (a Author) MarshalJSON() ([]byte, error) {
	if !a.Structured {
		return json.Marshal(a.Raw)
	}
	return json.Marshal(struct {
		First string `json:"first"`
		Last  string `json:"last"`
	}{First: a.First, Last: a.Last})
}

// IsZero reports whether no author information is present in either variant.
func (a Author) IsZero() bool {
	return a.Raw == "" && a.First == "" && a.Last == ""
}

// Title normalizes the wire "title" field, which may be a plain string or
// {"main": ..., "subtitle": ...}.
type Title struct {
	Main     string
	Subtitle string
}

func (t *Title) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*t = Title{}
		return nil
	}
	if trimmed[0] == '"' {
		var value string
		if err := json.Unmarshal(trimmed, &value); err != nil {
			return fmt.Errorf("title: %w", err)
		}
		*t = Title{Main: strings.TrimSpace(value)}
		return nil
	}
	var structured struct {
		Main     string `json:"main"`
		Subtitle string `json:"subtitle"`
	}
	if err := json.Unmarshal(trimmed, &structured); err != nil {
		return fmt.Errorf("title: %w", err)
	}
	*t = Title{
		Main:     strings.TrimSpace(structured.Main),
		Subtitle: strings.TrimSpace(structured.Subtitle),
	}
	return nil
}

func (t Title) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Main     string `json:"main"`
		Subtitle string `json:"subtitle,omitempty"`
	}{Main: t.Main, Subtitle: t.Subtitle})
}

// FlexInt tolerates the numeric sloppiness of resolver responses: JSON
// numbers, numeric strings, and null all decode; anything else is an error.
type FlexInt int

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*f = 0
		return nil
	}
	if trimmed[0] == '"' {
		var value string
		if err := json.Unmarshal(trimmed, &value); err != nil {
			return err
		}
		value = strings.TrimSpace(value)
		if value == "" {
			*f = 0
			return nil
		}
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("parse %q as integer: %w", value, err)
		}
		*f = FlexInt(parsed)
		return nil
	}
	var number float64
	if err := json.Unmarshal(trimmed, &number); err != nil {
		return err
	}
	*f = FlexInt(int(number))
	return nil
}

// ConfidenceBlock carries per-field confidence levels from the resolver.
type ConfidenceBlock struct {
	Title Confidence `json:"title,omitempty"`
}

// Document is the metadata returned by the resolver for one folder.
// All fields are optional; zero values mean "not provided".
type Document struct {
	Author         Author          `json:"author,omitempty"`
	Title          Title           `json:"title,omitempty"`
	Series         string          `json:"series,omitempty"`
	SeriesSequence FlexInt         `json:"series_sequence,omitempty"`
	PublishYear    FlexInt         `json:"publish_year,omitempty"`
	Narrator       string          `json:"narrator,omitempty"`
	Confidence     ConfidenceBlock `json:"confidence,omitempty"`
}

// TitleConfidence returns the normalized title confidence; absence means low.
func (d Document) TitleConfidence() Confidence {
	return d.Confidence.Title.Normalize()
}

// IsEmpty reports whether the document carries no usable metadata at all.
func (d Document) IsEmpty() bool {
	return d.Author.IsZero() &&
		d.Title.Main == "" && d.Title.Subtitle == "" &&
		d.Series == "" && d.SeriesSequence == 0 &&
		d.PublishYear == 0 && d.Narrator == ""
}
