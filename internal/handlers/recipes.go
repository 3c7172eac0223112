package handlers

import (
	"github.com/AnshRaj112/healthtips-backend/internal/models"
	"github.com/AnshRaj112/healthtips-backend/internal/validation"
)

type RecipeHandler = Resource[models.Recipe]

func NewRecipeHandler(store Store[models.Recipe]) *RecipeHandler {
	return &RecipeHandler{
		store:    store,
		name:     "recipe",
		title:    "Recipe",
		plural:   "recipes",
		validate: validation.Recipe,
		decode:   validation.DecodeRecipe,
		fields:   validation.RecipeUpdate,
	}
}
