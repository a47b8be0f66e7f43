package testutils

import (
	"fmt"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/cookchat/cookchat/internal/domain/recipe"
)

// RecipeFactory provides methods to create test recipes
type RecipeFactory struct {
	faker *gofakeit.Faker
}

// NewRecipeFactory creates a new recipe factory with seeded faker
func NewRecipeFactory(seed int64) *RecipeFactory {
	return &RecipeFactory{
		faker: gofakeit.New(seed),
	}
}

// Recipe builds one plausible recipe
func (f *RecipeFactory) Recipe() recipe.Recipe {
	ingredients := make([]string, f.faker.Number(2, 6))
	for i := range ingredients {
		ingredients[i] = f.faker.Breakfast()
	}

	instructions := make([]string, f.faker.Number(2, 5))
	for i := range instructions {
		instructions[i] = f.faker.Sentence(8)
	}

	return recipe.Recipe{
		Title:                f.faker.Dinner(),
		Ingredients:          ingredients,
		Instructions:         instructions,
		EstimatedTimeMinutes: f.faker.Number(10, 120),
		Difficulty:           f.faker.RandomString([]string{"easy", "medium", "hard"}),
	}
}

// Recipes builds n recipes with distinct titles
func (f *RecipeFactory) Recipes(n int) []recipe.Recipe {
	out := make([]recipe.Recipe, n)
	for i := range out {
		r := f.Recipe()
		r.Title = fmt.Sprintf("%s #%d", r.Title, i+1)
		out[i] = r
	}
	return out
}

// Set builds a resolved set with n recipes
func (f *RecipeFactory) Set(id string, n int) *recipe.Set {
	set, err := recipe.NewSet(id, f.Recipes(n))
	if err != nil {
		panic(err)
	}
	return set
}
