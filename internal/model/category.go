package model

// Category is a user-defined spending category.
type Category struct {
	ID   string
	Name string
}

// Rule maps a keyword to a category. Rules are evaluated in the order they
// are supplied and the first match wins.
type Rule struct {
	Keyword    string `yaml:"keyword"`
	CategoryID string `yaml:"category_id"`
}
