package models

import "time"

type Category struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	Color               string    `json:"color"`
	Image               string    `json:"image"`
	ImageURL            *string   `json:"imageUrl"`
	ShowImageInQuestion bool      `json:"showImageInQuestion"`
	ShowImageInAnswer   bool      `json:"showImageInAnswer"`
	IsMergedCategory    bool      `json:"isMergedCategory"`
	SourceCategoryIDs   []string  `json:"sourceCategoryIds"`
	QuestionIDs         []string  `json:"questionIds"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

const (
	DefaultCategoryColor = "bg-blue-500"
	DefaultCategoryImage = "📝"
)

// CategoryData is the display part of a category as supplied by an editor.
type CategoryData struct {
	Name                string  `json:"name"`
	Color               string  `json:"color"`
	Image               string  `json:"image"`
	ImageURL            *string `json:"imageUrl"`
	ShowImageInQuestion *bool   `json:"showImageInQuestion"`
	ShowImageInAnswer   *bool   `json:"showImageInAnswer"`
}

func (d CategoryData) ToCategory(id string, now time.Time) *Category {
	c := &Category{
		ID:                  id,
		Name:                d.Name,
		Color:               d.Color,
		Image:               d.Image,
		ImageURL:            d.ImageURL,
		ShowImageInQuestion: true,
		ShowImageInAnswer:   true,
		SourceCategoryIDs:   []string{},
		QuestionIDs:         []string{},
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if c.Color == "" {
		c.Color = DefaultCategoryColor
	}
	if c.Image == "" {
		c.Image = DefaultCategoryImage
	}
	if d.ShowImageInQuestion != nil {
		c.ShowImageInQuestion = *d.ShowImageInQuestion
	}
	if d.ShowImageInAnswer != nil {
		c.ShowImageInAnswer = *d.ShowImageInAnswer
	}
	return c
}

// CategoryPatch holds the fields an editor may change after creation.
// Composition fields are not patchable.
type CategoryPatch struct {
	Name                *string `json:"name,omitempty"`
	Color               *string `json:"color,omitempty"`
	Image               *string `json:"image,omitempty"`
	ImageURL            *string `json:"imageUrl,omitempty"`
	ShowImageInQuestion *bool   `json:"showImageInQuestion,omitempty"`
	ShowImageInAnswer   *bool   `json:"showImageInAnswer,omitempty"`
}

func (p CategoryPatch) Fields() map[string]any {
	fields := map[string]any{}
	if p.Name != nil {
		fields["name"] = *p.Name
	}
	if p.Color != nil {
		fields["color"] = *p.Color
	}
	if p.Image != nil {
		fields["image"] = *p.Image
	}
	if p.ImageURL != nil {
		fields["imageUrl"] = *p.ImageURL
	}
	if p.ShowImageInQuestion != nil {
		fields["showImageInQuestion"] = *p.ShowImageInQuestion
	}
	if p.ShowImageInAnswer != nil {
		fields["showImageInAnswer"] = *p.ShowImageInAnswer
	}
	return fields
}
