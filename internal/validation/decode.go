package validation

import (
	"strings"

	"github.com/AnshRaj112/healthtips-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
)

// The decoders below assume the payload already passed validation; values of
// the wrong type are skipped rather than reported.

// DecodeHealthTip builds a new health tip from a create payload, applying defaults.
func DecodeHealthTip(payload map[string]any) *models.HealthTip {
	tip := &models.HealthTip{
		Title:    stringOf(payload["title"]),
		Content:  stringOf(payload["content"]),
		Category: stringOf(payload["category"]),
		Author:   stringOf(payload["author"]),
	}
	if tip.Author == "" {
		tip.Author = models.DefaultAuthor
	}
	return tip
}

// DecodeRecipe builds a new recipe from a create payload, applying defaults.
func DecodeRecipe(payload map[string]any) *models.Recipe {
	recipe := &models.Recipe{
		Title:       stringOf(payload["title"]),
		Ingredients: stringsOf(payload["ingredients"]),
		Steps:       stringsOf(payload["steps"]),
		Calories:    numberOf(payload["calories"]),
		PrepTime:    prepTimeOf(payload["prepTime"]),
		CookTime:    numberOf(payload["cookTime"]),
		Category:    stringOf(payload["category"]),
	}
	if v, ok := payload["isVegan"].(bool); ok {
		recipe.IsVegan = v
	}
	if recipe.Category == "" {
		recipe.Category = models.DefaultRecipeCategory
	}
	return recipe
}

// HealthTipUpdate returns the fields an update payload sets.
func HealthTipUpdate(payload map[string]any) bson.M {
	return updateFields(payload, healthTipFields)
}

// RecipeUpdate returns the fields an update payload sets.
func RecipeUpdate(payload map[string]any) bson.M {
	return updateFields(payload, recipeFields)
}

// updateFields keeps known, non-null keys in their storage form. Unknown keys
// are dropped so a client can never write arbitrary fields.
func updateFields(payload map[string]any, fields []Field) bson.M {
	set := bson.M{}
	for _, f := range fields {
		v, ok := payload[f.Name]
		if !ok || v == nil {
			continue
		}
		switch f.kind {
		case kindString:
			set[f.Name] = stringOf(v)
		case kindStringList:
			set[f.Name] = stringsOf(v)
		case kindNumber:
			if n := numberOf(v); n != nil {
				set[f.Name] = *n
			}
		case kindBool:
			set[f.Name] = v
		case kindDuration:
			if p := prepTimeOf(v); p != nil {
				set[f.Name] = p.Value()
			}
		}
	}
	return set
}

func stringOf(v any) string {
	s, _ := v.(string)
	return s
}

func stringsOf(v any) []string {
	items, _ := v.([]any)
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func numberOf(v any) *float64 {
	n, ok := v.(float64)
	if !ok {
		return nil
	}
	return &n
}

func prepTimeOf(v any) *models.PrepTime {
	switch t := v.(type) {
	case string:
		return &models.PrepTime{Duration: strings.TrimSpace(t)}
	case float64:
		return &models.PrepTime{Minutes: t}
	}
	return nil
}
