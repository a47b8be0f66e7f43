// Package recipe contains the core domain model for recipe sets.
// A set is a backend-generated, id-addressable collection of candidate
// recipes produced from one user query. Sets are immutable for a given id.
package recipe

import (
	"time"
)

// Recipe is a single candidate recipe within a set. It mirrors the wire
// shape returned by the recipe service.
type Recipe struct {
	Title                string   `json:"title"`
	Ingredients          []string `json:"ingredients"`
	Instructions         []string `json:"instructions"`
	EstimatedTimeMinutes int      `json:"estimatedTimeMinutes,omitempty"`
	Difficulty           string   `json:"difficulty,omitempty"`
	Warnings             []string `json:"warnings,omitempty"`
}

// Clone returns a deep copy. Callers that display or hold a recipe get a
// copy, never a reference back into the owning set.
func (r Recipe) Clone() Recipe {
	out := r
	out.Ingredients = append([]string(nil), r.Ingredients...)
	out.Instructions = append([]string(nil), r.Instructions...)
	out.Warnings = append([]string(nil), r.Warnings...)
	return out
}

// Set is the aggregate holding the recipes resolved for one set id.
// It is never mutated after construction.
type Set struct {
	id        string
	recipes   []Recipe
	fetchedAt time.Time
}

// NewSet creates an immutable Set from fetched recipes.
// An empty recipe slice is a valid terminal result, not an error.
func NewSet(id string, recipes []Recipe) (*Set, error) {
	if id == "" {
		return nil, ErrEmptySetID
	}

	owned := make([]Recipe, len(recipes))
	for i, r := range recipes {
		owned[i] = r.Clone()
	}

	return &Set{
		id:        id,
		recipes:   owned,
		fetchedAt: time.Now(),
	}, nil
}

// ID returns the opaque set identifier assigned by the agent
func (s *Set) ID() string {
	return s.id
}

// Len returns the number of recipes in the set
func (s *Set) Len() int {
	return len(s.recipes)
}

// IsEmpty reports whether the set was fetched successfully but contains
// no recipes
func (s *Set) IsEmpty() bool {
	return len(s.recipes) == 0
}

// FetchedAt returns when the set was resolved
func (s *Set) FetchedAt() time.Time {
	return s.fetchedAt
}

// Recipes returns a copy of the recipes in their original order
func (s *Set) Recipes() []Recipe {
	out := make([]Recipe, len(s.recipes))
	for i, r := range s.recipes {
		out[i] = r.Clone()
	}
	return out
}

// LookupByTitle finds a recipe by exact title match. If the backend
// violated title uniqueness within a set, the first recipe in original
// order wins, deterministically across repeated calls.
func (s *Set) LookupByTitle(title string) (Recipe, bool) {
	for _, r := range s.recipes {
		if r.Title == title {
			return r.Clone(), true
		}
	}
	return Recipe{}, false
}
