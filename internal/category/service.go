package category

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
)

var (
	ErrEmptyCatalog    = errors.New("category catalog is empty")
	ErrInvalidCategory = errors.New("invalid category")
	hexColor           = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)
)

// Service holds the fixed Category Catalog. It is read-only after construction.
type Service struct {
	categories []Category
	byName     map[string]Category
	logger     *slog.Logger
}

func NewService(categories []Category, logger *slog.Logger) (*Service, error) {
	if len(categories) == 0 {
		return nil, ErrEmptyCatalog
	}

	byName := make(map[string]Category, len(categories))
	ordered := make([]Category, 0, len(categories))
	for _, c := range categories {
		if strings.TrimSpace(c.Name) == "" {
			return nil, fmt.Errorf("%w: name is required", ErrInvalidCategory)
		}
		if _, dup := byName[c.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate name %q", ErrInvalidCategory, c.Name)
		}
		if !hexColor.MatchString(c.Color) {
			return nil, fmt.Errorf("%w: %q has color %q", ErrInvalidCategory, c.Name, c.Color)
		}
		byName[c.Name] = c
		ordered = append(ordered, c)
	}

	logger.Debug("category catalog loaded", "count", len(ordered))

	return &Service{
		categories: ordered,
		byName:     byName,
		logger:     logger,
	}, nil
}

func (s *Service) GetAllCategories() []CategoryResponse {
	responses := make([]CategoryResponse, len(s.categories))
	for i, c := range s.categories {
		responses[i] = c.ToResponse()
	}
	return responses
}

// Lookup is case-sensitive; catalog names are an enumeration, not free text.
func (s *Service) Lookup(name string) (Category, bool) {
	c, ok := s.byName[name]
	if !ok {
		s.logger.Debug("unknown category", "name", name)
	}
	return c, ok
}
