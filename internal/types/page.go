package types

import (
	"encoding/json"
	"time"
)

// Page is the fully parsed representation of a single published page.
// It is constructed once per parse call and treated as immutable.
type Page struct {
	// URL is the declared source URL (or the canonical URL when no
	// source URL was provided).
	URL string `json:"url"`

	// Slug is derived from the URL path.
	Slug string `json:"slug"`

	// Title is the resolved page title.
	Title string `json:"title"`

	// IntroText is the first paragraph before the first level-2
	// heading, when one exists.
	IntroText *string `json:"intro_text"`

	// Infobox holds label/value pairs extracted from definition lists.
	Infobox []InfoboxField `json:"infobox"`

	// LeadFigure is the first figure found in the article, if any.
	LeadFigure *LeadFigure `json:"lead_figure"`

	// Sections is the top-level (level-2) section tree.
	Sections []*Section `json:"sections"`

	// References are the entries collected under "References" headings.
	References []Reference `json:"references"`

	// Links are the absolute outbound link URLs in first-seen order.
	Links []string `json:"links"`

	// Metadata carries fetch and head-element metadata.
	Metadata PageMetadata `json:"metadata"`
}

// PageMetadata holds fetch context and head-element metadata.
type PageMetadata struct {
	StatusCode   int      `json:"status_code"`
	FetchedAtUTC UTCTime  `json:"fetched_at_utc"`
	CanonicalURL *string  `json:"canonical_url"`
	Description  *string  `json:"description"`
	Keywords     []string `json:"keywords"`
}

// Section is a level-2 or level-3 logical division of the document.
// Level-3 sections only ever appear nested one level inside a level-2
// section.
type Section struct {
	ID          *string        `json:"id"`
	Title       string         `json:"title"`
	Level       int            `json:"level"`
	Text        string         `json:"text"`
	Media       []SectionMedia `json:"media"`
	Subsections []*Section     `json:"subsections"`
}

// SectionMedia is one image attached to a section. Index is 1-based
// and unique within the owning section.
type SectionMedia struct {
	Index    int     `json:"index"`
	ImageURL string  `json:"image_url"`
	Caption  *string `json:"caption"`
	AltText  *string `json:"alt_text"`
}

// LeadFigure is the article's lead image.
type LeadFigure struct {
	ImageURL string  `json:"image_url"`
	Caption  *string `json:"caption"`
	AltText  *string `json:"alt_text"`
}

// Reference is one entry from a references list. Index is 1-based and
// contiguous across all reference lists in a single extraction.
type Reference struct {
	Index int     `json:"index"`
	Text  string  `json:"text"`
	URL   *string `json:"url"`
}

// InfoboxField is a single label/value pair from a definition list.
type InfoboxField struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// UTCTime is a time.Time that serializes as UTC ISO-8601 with a
// literal "Z" suffix.
type UTCTime struct {
	time.Time
}

// NewUTCTime converts t to UTC and wraps it.
func NewUTCTime(t time.Time) UTCTime {
	return UTCTime{t.UTC()}
}

// MarshalJSON implements json.Marshaler.
func (t UTCTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Format())
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *UTCTime) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseUTCTime(raw)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Format renders the time as RFC 3339 in UTC.
func (t UTCTime) Format() string {
	return t.Time.UTC().Format(time.RFC3339Nano)
}

// ParseUTCTime parses an RFC 3339 timestamp into a UTCTime.
func ParseUTCTime(value string) (UTCTime, error) {
	parsed, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return UTCTime{}, err
	}
	return UTCTime{parsed.UTC()}, nil
}
