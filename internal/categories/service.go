// Package categories holds the user's category dictionary.
package categories

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cleared-dev/bankfeed/internal/model"
)

// Dir and File locate categories.csv inside a workspace.
const (
	Dir  = "categories"
	File = "categories.csv"
)

// Service provides in-memory lookup over the category dictionary.
type Service struct {
	categories []model.Category
	byID       map[string]model.Category
}

// NewService creates a Service from a slice of categories.
func NewService(cats []model.Category) *Service {
	byID := make(map[string]model.Category, len(cats))
	for _, c := range cats {
		byID[c.ID] = c
	}
	return &Service{categories: cats, byID: byID}
}

// Load reads categories/categories.csv from a workspace root.
func Load(root string) (*Service, error) {
	f, err := os.Open(filepath.Join(root, Dir, File))
	if err != nil {
		return nil, fmt.Errorf("opening categories: %w", err)
	}
	defer f.Close()

	cats, err := ReadCategories(f)
	if err != nil {
		return nil, fmt.Errorf("reading categories: %w", err)
	}
	return NewService(cats), nil
}

// All returns all categories in file order.
func (s *Service) All() []model.Category {
	return s.categories
}

// Get returns a category by ID.
func (s *Service) Get(id string) (model.Category, bool) {
	c, ok := s.byID[id]
	return c, ok
}

// Exists reports whether a category ID exists.
func (s *Service) Exists(id string) bool {
	_, ok := s.byID[id]
	return ok
}

// Save writes the dictionary to categories/categories.csv.
func (s *Service) Save(root string) error {
	dir := filepath.Join(root, Dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating categories dir: %w", err)
	}

	f, err := os.Create(filepath.Join(dir, File))
	if err != nil {
		return fmt.Errorf("creating categories file: %w", err)
	}
	defer f.Close()

	if err := WriteCategories(f, s.categories); err != nil {
		return fmt.Errorf("writing categories: %w", err)
	}
	return nil
}

// Default returns the starter dictionary written by init.
func Default() []model.Category {
	return []model.Category{
		{ID: "groceries", Name: "Groceries"},
		{ID: "restaurants", Name: "Restaurants & Coffee"},
		{ID: "transport", Name: "Transport"},
		{ID: "utilities", Name: "Utilities"},
		{ID: "housing", Name: "Housing"},
		{ID: "health", Name: "Health"},
		{ID: "shopping", Name: "Shopping"},
		{ID: "subscriptions", Name: "Subscriptions"},
		{ID: "income", Name: "Income"},
		{ID: "transfers", Name: "Transfers"},
	}
}
