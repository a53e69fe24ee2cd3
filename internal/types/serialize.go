package types

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ToMap returns the plain nested-object representation of the page.
// The result round-trips through PageFromMap losslessly.
func (p *Page) ToMap() map[string]any {
	return map[string]any{
		"url":         p.URL,
		"slug":        p.Slug,
		"title":       p.Title,
		"intro_text":  optString(p.IntroText),
		"infobox":     infoboxToList(p.Infobox),
		"lead_figure": leadFigureToMap(p.LeadFigure),
		"sections":    sectionsToList(p.Sections),
		"references":  referencesToList(p.References),
		"links":       stringsToList(p.Links),
		"metadata": map[string]any{
			"status_code":    p.Metadata.StatusCode,
			"fetched_at_utc": p.Metadata.FetchedAtUTC.Format(),
			"canonical_url":  optString(p.Metadata.CanonicalURL),
			"description":    optString(p.Metadata.Description),
			"keywords":       optStringList(p.Metadata.Keywords),
		},
	}
}

// ToJSON serializes the page to its JSON text form.
func (p *Page) ToJSON() (string, error) {
	data, err := json.Marshal(p.ToMap())
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// PageFromJSON reconstructs a Page from its JSON text form.
func PageFromJSON(data []byte) (*Page, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, &ValidationError{Field: "page", Message: fmt.Sprintf("must be a JSON object: %v", err)}
	}
	return PageFromMap(raw)
}

// PageFromMap reconstructs a Page from its plain nested-object
// representation, validating every field along the way.
func PageFromMap(raw map[string]any) (*Page, error) {
	page := &Page{}
	var err error

	if page.URL, err = requireString(raw["url"], "url"); err != nil {
		return nil, err
	}
	if page.Slug, err = requireString(raw["slug"], "slug"); err != nil {
		return nil, err
	}
	if page.Title, err = requireString(raw["title"], "title"); err != nil {
		return nil, err
	}
	if page.IntroText, err = requireOptString(raw["intro_text"], "intro_text"); err != nil {
		return nil, err
	}

	infoboxItems, err := requireList(raw["infobox"], "infobox")
	if err != nil {
		return nil, err
	}
	page.Infobox = make([]InfoboxField, 0, len(infoboxItems))
	for i, item := range infoboxItems {
		field, err := infoboxFieldFromValue(item, fmt.Sprintf("infobox[%d]", i))
		if err != nil {
			return nil, err
		}
		page.Infobox = append(page.Infobox, field)
	}

	if raw["lead_figure"] != nil {
		m, err := requireMap(raw["lead_figure"], "lead_figure")
		if err != nil {
			return nil, err
		}
		figure, err := leadFigureFromMap(m, "lead_figure")
		if err != nil {
			return nil, err
		}
		page.LeadFigure = figure
	}

	sectionItems, err := requireList(raw["sections"], "sections")
	if err != nil {
		return nil, err
	}
	page.Sections = make([]*Section, 0, len(sectionItems))
	for i, item := range sectionItems {
		section, err := sectionFromValue(item, fmt.Sprintf("sections[%d]", i))
		if err != nil {
			return nil, err
		}
		page.Sections = append(page.Sections, section)
	}

	referenceItems, err := requireList(raw["references"], "references")
	if err != nil {
		return nil, err
	}
	page.References = make([]Reference, 0, len(referenceItems))
	for i, item := range referenceItems {
		ref, err := referenceFromValue(item, fmt.Sprintf("references[%d]", i))
		if err != nil {
			return nil, err
		}
		page.References = append(page.References, ref)
	}

	linkItems, err := requireList(raw["links"], "links")
	if err != nil {
		return nil, err
	}
	page.Links = make([]string, 0, len(linkItems))
	for i, item := range linkItems {
		link, err := requireString(item, fmt.Sprintf("links[%d]", i))
		if err != nil {
			return nil, err
		}
		page.Links = append(page.Links, link)
	}

	metadataMap, err := requireMap(raw["metadata"], "metadata")
	if err != nil {
		return nil, err
	}
	if page.Metadata, err = metadataFromMap(metadataMap); err != nil {
		return nil, err
	}

	return page, nil
}

func metadataFromMap(raw map[string]any) (PageMetadata, error) {
	var meta PageMetadata
	var err error

	if meta.StatusCode, err = requireInt(raw["status_code"], "metadata.status_code"); err != nil {
		return meta, err
	}

	stamp, err := requireString(raw["fetched_at_utc"], "metadata.fetched_at_utc")
	if err != nil {
		return meta, err
	}
	if meta.FetchedAtUTC, err = ParseUTCTime(stamp); err != nil {
		return meta, &ValidationError{Field: "metadata.fetched_at_utc", Message: "must be an RFC 3339 timestamp"}
	}

	if meta.CanonicalURL, err = requireOptString(raw["canonical_url"], "metadata.canonical_url"); err != nil {
		return meta, err
	}
	if meta.Description, err = requireOptString(raw["description"], "metadata.description"); err != nil {
		return meta, err
	}
	if meta.Keywords, err = requireOptStringList(raw["keywords"], "metadata.keywords"); err != nil {
		return meta, err
	}

	return meta, nil
}

func sectionFromValue(value any, path string) (*Section, error) {
	raw, err := requireMap(value, path)
	if err != nil {
		return nil, err
	}

	section := &Section{}
	if section.ID, err = requireOptString(raw["id"], path+".id"); err != nil {
		return nil, err
	}
	if section.Title, err = requireString(raw["title"], path+".title"); err != nil {
		return nil, err
	}
	if section.Level, err = requireInt(raw["level"], path+".level"); err != nil {
		return nil, err
	}
	if section.Text, err = requireString(raw["text"], path+".text"); err != nil {
		return nil, err
	}

	mediaItems, err := requireList(raw["media"], path+".media")
	if err != nil {
		return nil, err
	}
	section.Media = make([]SectionMedia, 0, len(mediaItems))
	for i, item := range mediaItems {
		media, err := sectionMediaFromValue(item, fmt.Sprintf("%s.media[%d]", path, i))
		if err != nil {
			return nil, err
		}
		section.Media = append(section.Media, media)
	}

	subsectionItems, err := requireList(raw["subsections"], path+".subsections")
	if err != nil {
		return nil, err
	}
	section.Subsections = make([]*Section, 0, len(subsectionItems))
	for i, item := range subsectionItems {
		subsection, err := sectionFromValue(item, fmt.Sprintf("%s.subsections[%d]", path, i))
		if err != nil {
			return nil, err
		}
		section.Subsections = append(section.Subsections, subsection)
	}

	return section, nil
}

func sectionMediaFromValue(value any, path string) (SectionMedia, error) {
	var media SectionMedia
	raw, err := requireMap(value, path)
	if err != nil {
		return media, err
	}

	if media.Index, err = requireInt(raw["index"], path+".index"); err != nil {
		return media, err
	}
	if media.ImageURL, err = requireString(raw["image_url"], path+".image_url"); err != nil {
		return media, err
	}
	if media.Caption, err = requireOptString(raw["caption"], path+".caption"); err != nil {
		return media, err
	}
	if media.AltText, err = requireOptString(raw["alt_text"], path+".alt_text"); err != nil {
		return media, err
	}
	return media, nil
}

func leadFigureFromMap(raw map[string]any, path string) (*LeadFigure, error) {
	figure := &LeadFigure{}
	var err error

	if figure.ImageURL, err = requireString(raw["image_url"], path+".image_url"); err != nil {
		return nil, err
	}
	if figure.Caption, err = requireOptString(raw["caption"], path+".caption"); err != nil {
		return nil, err
	}
	if figure.AltText, err = requireOptString(raw["alt_text"], path+".alt_text"); err != nil {
		return nil, err
	}
	return figure, nil
}

func referenceFromValue(value any, path string) (Reference, error) {
	var ref Reference
	raw, err := requireMap(value, path)
	if err != nil {
		return ref, err
	}

	if ref.Index, err = requireInt(raw["index"], path+".index"); err != nil {
		return ref, err
	}
	if ref.Text, err = requireString(raw["text"], path+".text"); err != nil {
		return ref, err
	}
	if ref.URL, err = requireOptString(raw["url"], path+".url"); err != nil {
		return ref, err
	}
	return ref, nil
}

func infoboxFieldFromValue(value any, path string) (InfoboxField, error) {
	var field InfoboxField
	raw, err := requireMap(value, path)
	if err != nil {
		return field, err
	}

	if field.Label, err = requireString(raw["label"], path+".label"); err != nil {
		return field, err
	}
	if field.Value, err = requireString(raw["value"], path+".value"); err != nil {
		return field, err
	}
	return field, nil
}

// --- map construction helpers ---

func optString(value *string) any {
	if value == nil {
		return nil
	}
	return *value
}

func optStringList(values []string) any {
	if values == nil {
		return nil
	}
	return stringsToList(values)
}

func stringsToList(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func infoboxToList(fields []InfoboxField) []any {
	out := make([]any, len(fields))
	for i, f := range fields {
		out[i] = map[string]any{"label": f.Label, "value": f.Value}
	}
	return out
}

func leadFigureToMap(figure *LeadFigure) any {
	if figure == nil {
		return nil
	}
	return map[string]any{
		"image_url": figure.ImageURL,
		"caption":   optString(figure.Caption),
		"alt_text":  optString(figure.AltText),
	}
}

func sectionsToList(sections []*Section) []any {
	out := make([]any, len(sections))
	for i, s := range sections {
		media := make([]any, len(s.Media))
		for j, m := range s.Media {
			media[j] = map[string]any{
				"index":     m.Index,
				"image_url": m.ImageURL,
				"caption":   optString(m.Caption),
				"alt_text":  optString(m.AltText),
			}
		}
		out[i] = map[string]any{
			"id":          optString(s.ID),
			"title":       s.Title,
			"level":       s.Level,
			"text":        s.Text,
			"media":       media,
			"subsections": sectionsToList(s.Subsections),
		}
	}
	return out
}

func referencesToList(references []Reference) []any {
	out := make([]any, len(references))
	for i, r := range references {
		out[i] = map[string]any{
			"index": r.Index,
			"text":  r.Text,
			"url":   optString(r.URL),
		}
	}
	return out
}

// --- validation helpers ---

func requireString(value any, path string) (string, error) {
	s, ok := value.(string)
	if !ok {
		return "", &ValidationError{Field: path, Message: "must be a string"}
	}
	return s, nil
}

func requireOptString(value any, path string) (*string, error) {
	if value == nil {
		return nil, nil
	}
	s, ok := value.(string)
	if !ok {
		return nil, &ValidationError{Field: path, Message: "must be a string or null"}
	}
	return &s, nil
}

func requireInt(value any, path string) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, &ValidationError{Field: path, Message: "must be an integer"}
		}
		return int(n), nil
	case float64:
		if v != float64(int64(v)) {
			return 0, &ValidationError{Field: path, Message: "must be an integer"}
		}
		return int(v), nil
	default:
		return 0, &ValidationError{Field: path, Message: "must be an integer"}
	}
}

func requireList(value any, path string) ([]any, error) {
	if value == nil {
		return nil, nil
	}
	list, ok := value.([]any)
	if !ok {
		return nil, &ValidationError{Field: path, Message: "must be a list"}
	}
	return list, nil
}

func requireMap(value any, path string) (map[string]any, error) {
	m, ok := value.(map[string]any)
	if !ok {
		return nil, &ValidationError{Field: path, Message: "must be an object"}
	}
	return m, nil
}

func requireOptStringList(value any, path string) ([]string, error) {
	if value == nil {
		return nil, nil
	}
	items, ok := value.([]any)
	if !ok {
		return nil, &ValidationError{Field: path, Message: "must be a list of strings or null"}
	}
	out := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, &ValidationError{Field: fmt.Sprintf("%s[%d]", path, i), Message: "must be a string"}
		}
		out = append(out, s)
	}
	return out, nil
}
