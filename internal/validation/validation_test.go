package validation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// payload decodes a JSON literal the way handlers do, so numbers arrive as float64.
func payload(t *testing.T, s string) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(s), &m))
	return m
}

func TestHealthTip_Create(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{
			name: "valid with defaults left out",
			body: `{"title":"Drink water","content":"Eight glasses a day"}`,
			want: []string{},
		},
		{
			name: "missing content",
			body: `{"title":"Drink water"}`,
			want: []string{"content is required"},
		},
		{
			name: "null counts as missing",
			body: `{"title":null,"content":"x"}`,
			want: []string{"title is required"},
		},
		{
			name: "blank title",
			body: `{"title":"   ","content":"x"}`,
			want: []string{"title cannot be empty"},
		},
		{
			name: "wrong types",
			body: `{"title":1,"content":"x","category":["a"],"author":false}`,
			want: []string{"Title must be a string", "Category must be a string", "Author must be a string"},
		},
		{
			name: "unknown fields ignored",
			body: `{"title":"a","content":"b","likes":3}`,
			want: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HealthTip(payload(t, tt.body), Create))
		})
	}
}

func TestHealthTip_Update(t *testing.T) {
	assert.Empty(t, HealthTip(payload(t, `{}`), Update))
	assert.Empty(t, HealthTip(payload(t, `{"category":"sleep"}`), Update))
	assert.Empty(t, HealthTip(payload(t, `{"category":null}`), Update))
	assert.Equal(t, []string{"content cannot be null"}, HealthTip(payload(t, `{"content":null}`), Update))
	assert.Equal(t, []string{"Title must be a string"}, HealthTip(payload(t, `{"title":42}`), Update))
}

func TestRecipe_Create(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{
			name: "minimal",
			body: `{"title":"Soup","ingredients":["tomato"],"steps":["boil"]}`,
			want: []string{},
		},
		{
			name: "full",
			body: `{"title":"Soup","ingredients":["tomato","salt"],"steps":["chop","boil"],
				"calories":0,"prepTime":"1h30m","cookTime":20,"category":"Soups","isVegan":false}`,
			want: []string{},
		},
		{
			name: "scalar ingredients",
			body: `{"title":"Soup","ingredients":"tomato","steps":["boil"]}`,
			want: []string{"Ingredients must be an array"},
		},
		{
			name: "non string step",
			body: `{"title":"Soup","ingredients":["tomato"],"steps":["boil",2]}`,
			want: []string{"Steps must contain only strings"},
		},
		{
			name: "everything missing",
			body: `{}`,
			want: []string{"title is required", "ingredients is required", "steps is required"},
		},
		{
			name: "negative and mistyped numbers",
			body: `{"title":"Soup","ingredients":[],"steps":[],"calories":-1,"cookTime":"ten","isVegan":"yes"}`,
			want: []string{
				"Calories must be a non-negative number",
				"CookTime must be a non-negative number",
				"isVegan must be a boolean",
			},
		},
		{
			name: "numeric prep time",
			body: `{"title":"Soup","ingredients":[],"steps":[],"prepTime":15}`,
			want: []string{},
		},
		{
			name: "bad prep time string",
			body: `{"title":"Soup","ingredients":[],"steps":[],"prepTime":"a while"}`,
			want: []string{"PrepTime must be a non-negative number or duration string"},
		},
		{
			name: "negative prep time",
			body: `{"title":"Soup","ingredients":[],"steps":[],"prepTime":"-5m"}`,
			want: []string{"PrepTime must be a non-negative number or duration string"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Recipe(payload(t, tt.body), Create))
		})
	}
}

func TestRecipe_Update(t *testing.T) {
	assert.Empty(t, Recipe(payload(t, `{"isVegan":true}`), Update))
	assert.Empty(t, Recipe(payload(t, `{"calories":null}`), Update))
	assert.Equal(t, []string{"ingredients cannot be null"}, Recipe(payload(t, `{"ingredients":null}`), Update))
	assert.Equal(t, []string{"Ingredients must be an array"}, Recipe(payload(t, `{"ingredients":"tomato"}`), Update))
}

func TestFieldsCoverModel(t *testing.T) {
	names := func(fs []Field) []string {
		out := make([]string, 0, len(fs))
		for _, f := range fs {
			out = append(out, f.Name)
		}
		return out
	}
	assert.Equal(t, []string{"title", "content", "category", "author"}, names(healthTipFields))
	assert.Equal(t, []string{"title", "ingredients", "steps", "calories", "prepTime", "cookTime", "category", "isVegan"}, names(recipeFields))
}

func TestMode_String(t *testing.T) {
	assert.Equal(t, "create", Create.String())
	assert.Equal(t, "update", Update.String())
}
