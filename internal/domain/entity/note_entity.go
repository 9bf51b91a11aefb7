package entity

import "time"

const DefaultNoteTitle = "Untitled"

// Note belongs to exactly one user for its whole life
type Note struct {
	ID        string
	UserID    string
	Title     string
	Content   string
	Tags      []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NotePatch carries the fields of a partial update; nil means keep the stored value
type NotePatch struct {
	Title   *string
	Content *string
	Tags    *[]string
}

// Apply writes the supplied fields onto n
func (p NotePatch) Apply(n *Note) {
	if p.Title != nil {
		n.Title = *p.Title
	}
	if p.Content != nil {
		n.Content = *p.Content
	}
	if p.Tags != nil {
		n.Tags = NormalizeTags(*p.Tags)
	}
}

// NormalizeTags never returns nil so that JSON encodes an empty list as []
func NormalizeTags(tags []string) []string {
	out := make([]string, len(tags))
	copy(out, tags)
	return out
}
