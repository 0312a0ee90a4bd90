// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import "offerdesk/internal/models"

// Selection is a cascading category/subcategory choice. SubcategoryID is
// either empty or a member of CategoryID's subcategory list.
type Selection struct {
	CategoryID    string
	SubcategoryID string
}

// Select switches the category and returns the subcategory options for it.
// The previous subcategory is always cleared; subcategory ids are only
// unique within their category.
func (s *Selection) Select(idx *Index, categoryID string) []models.Subcategory {
	s.CategoryID = categoryID
	s.SubcategoryID = ""
	return idx.Subcategories(categoryID)
}

// SelectSub picks a subcategory of the current category.
func (s *Selection) SelectSub(idx *Index, subcategoryID string) error {
	if subcategoryID == "" {
		s.SubcategoryID = ""
		return nil
	}
	if !idx.Contains(s.CategoryID, subcategoryID) {
		return ErrForeignSubcategory
	}
	s.SubcategoryID = subcategoryID
	return nil
}

// Valid reports whether the selection is a complete, consistent pair.
func (s Selection) Valid(idx *Index) bool {
	return s.CategoryID != "" && s.SubcategoryID != "" && idx.Contains(s.CategoryID, s.SubcategoryID)
}

// Options returns the subcategory list to render for the selection. Before a
// category is chosen every subcategory is offered.
func (s Selection) Options(idx *Index) []models.Subcategory {
	if s.CategoryID == "" {
		return idx.All()
	}
	return idx.Subcategories(s.CategoryID)
}
