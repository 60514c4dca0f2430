package model

// Category is a user-defined bucket for movements. Its identity is the
// server-assigned ID.
type Category struct {
	Name        string
	Description string
	Emoji       string
	ID          int64
}

// Label renders the category the way movement listings show it.
func (c Category) Label() string {
	return categoryLabel(c.Emoji, c.Name)
}

// CategoryInput is the payload for creating or updating a category.
type CategoryInput struct {
	Name        string
	Description string
	Emoji       string
}
