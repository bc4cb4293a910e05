package models

// Draft is the partially composed post of a single user. A user has at
// most one draft at a time; a missing draft means the user is idle.
type Draft struct {
	UserID       int64
	Step         string
	Title        string
	Body         string
	Description  string
	PhotoFileID  string
	CategorySlug string
	SelectedTags []string
	MetaTags     []Tag
}

// ToggleTag adds slug to the selection, or removes it if already selected.
func (d *Draft) ToggleTag(slug string) {
	for i, s := range d.SelectedTags {
		if s == slug {
			d.SelectedTags = append(d.SelectedTags[:i], d.SelectedTags[i+1:]...)
			return
		}
	}
	d.SelectedTags = append(d.SelectedTags, slug)
}

// HasTag reports whether slug is currently selected.
func (d *Draft) HasTag(slug string) bool {
	for _, s := range d.SelectedTags {
		if s == slug {
			return true
		}
	}
	return false
}

// HasPhoto reports whether a cover image was attached.
func (d *Draft) HasPhoto() bool {
	return d.PhotoFileID != ""
}

// Preview returns the announcement snippet: the description when present,
// otherwise the body, cut to 400 runes.
func (d *Draft) Preview() string {
	source := d.Description
	if source == "" {
		source = d.Body
	}
	runes := []rune(source)
	if len(runes) > 400 {
		runes = runes[:400]
	}
	return string(runes)
}
