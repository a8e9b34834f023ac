package models

import "time"

// CategorySelection pairs a content category with the user's expertise level.
type CategorySelection struct {
	Category string         `json:"category"`
	Level    ExpertiseLevel `json:"expertise_level"`
}

// SelectedCategories is a user's chosen content categories with per-category
// expertise levels. One document per user.
type SelectedCategories struct {
	UserID     string              `json:"user_id" badgerhold:"key"`
	Selections []CategorySelection `json:"categories"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

// SelectedTopics is a user's chosen topics of interest within categories.
// One document per user.
type SelectedTopics struct {
	UserID    string    `json:"user_id" badgerhold:"key"`
	Topics    []string  `json:"topics"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Categories returns the category names only, in selection order.
func (s *SelectedCategories) Categories() []string {
	names := make([]string, 0, len(s.Selections))
	for _, sel := range s.Selections {
		names = append(names, sel.Category)
	}
	return names
}

// LevelFor returns the expertise level for a category, defaulting to beginner
// when the category was never selected.
func (s *SelectedCategories) LevelFor(category string) ExpertiseLevel {
	for _, sel := range s.Selections {
		if sel.Category == category {
			return NormalizeLevel(string(sel.Level))
		}
	}
	return LevelBeginner
}
