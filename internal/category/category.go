package category

import (
	"github.com/frahmantamala/budget-story/internal"
)

// Category is one entry of the catalog: a name and its display color.
type Category struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

func (c Category) ToResponse() CategoryResponse {
	return CategoryResponse{
		Name:  c.Name,
		Color: c.Color,
	}
}

// DefaultCategories is the built-in catalog, in display order.
func DefaultCategories() []Category {
	return []Category{
		{Name: "Housing", Color: "#6366F1"},
		{Name: "Food", Color: "#EC4899"},
		{Name: "Transport", Color: "#14B8A6"},
		{Name: "Leisure", Color: "#F59E0B"},
		{Name: "Utilities", Color: "#8B5CF6"},
		{Name: "Healthcare", Color: "#F43F5E"},
	}
}

// FromConfig converts the budget.categories section. An empty section
// yields the built-in catalog.
func FromConfig(cfg []internal.CategoryConfig) []Category {
	if len(cfg) == 0 {
		return DefaultCategories()
	}
	out := make([]Category, len(cfg))
	for i, c := range cfg {
		out[i] = Category{Name: c.Name, Color: c.Color}
	}
	return out
}
