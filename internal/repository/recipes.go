package repository

import (
	"github.com/AnshRaj112/healthtips-backend/internal/models"
)

const RecipesCollection = "recipes"

type Recipes = Collection[models.Recipe, *models.Recipe]

func NewRecipes(src Source, opts ...Option) (*Recipes, error) {
	coll, err := src.Collection(RecipesCollection)
	if err != nil {
		return nil, err
	}
	return NewCollection[models.Recipe](coll, opts...), nil
}
