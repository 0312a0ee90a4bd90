// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package catalog projects the fetched category list into the lookups the
// offer forms need: the category options, the subcategories of a selected
// category, and validation of a category/subcategory pair.
package catalog

import (
	"errors"

	"offerdesk/internal/models"
)

// ErrForeignSubcategory is returned when a subcategory is selected that does
// not belong to the selected category.
var ErrForeignSubcategory = errors.New("subcategory does not belong to the selected category")

// Index is an immutable view over a category list. The zero value and a nil
// *Index are both usable and empty.
type Index struct {
	categories []models.Category
	byID       map[string]int
}

// New builds an index over categories. The slice is retained; callers must
// not mutate it afterwards.
func New(categories []models.Category) *Index {
	idx := &Index{
		categories: categories,
		byID:       make(map[string]int, len(categories)),
	}
	for i, c := range categories {
		if _, dup := idx.byID[c.ID]; !dup {
			idx.byID[c.ID] = i
		}
	}
	return idx
}

// Categories returns the category options in upstream order.
func (idx *Index) Categories() []models.Category {
	if idx == nil {
		return nil
	}
	return idx.categories
}

// Len returns the number of categories.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.categories)
}

// Category looks up a category by id.
func (idx *Index) Category(id string) (models.Category, bool) {
	if idx == nil {
		return models.Category{}, false
	}
	i, ok := idx.byID[id]
	if !ok {
		return models.Category{}, false
	}
	return idx.categories[i], true
}

// Subcategories returns the options for the given category, or nil when the
// category is unknown.
func (idx *Index) Subcategories(categoryID string) []models.Subcategory {
	c, ok := idx.Category(categoryID)
	if !ok {
		return nil
	}
	return c.SubCategoryList
}

// All returns every subcategory across all categories. The create form shows
// this list until a category has been picked.
func (idx *Index) All() []models.Subcategory {
	if idx == nil {
		return nil
	}
	var all []models.Subcategory
	for _, c := range idx.categories {
		all = append(all, c.SubCategoryList...)
	}
	return all
}

// Contains reports whether subcategoryID is one of categoryID's subcategories.
func (idx *Index) Contains(categoryID, subcategoryID string) bool {
	for _, s := range idx.Subcategories(categoryID) {
		if s.ID.String() == subcategoryID {
			return true
		}
	}
	return false
}

// Name returns the display name of a category, falling back to its id.
func (idx *Index) Name(categoryID string) string {
	if c, ok := idx.Category(categoryID); ok && c.Name != "" {
		return c.Name
	}
	return categoryID
}
