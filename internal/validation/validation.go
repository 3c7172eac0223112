// Package validation checks decoded JSON payloads for the healthtips and
// recipes resources. Every check is pure; callers reject the request when the
// returned list is non-empty and never apply a partially valid payload.
package validation

import (
	"fmt"
	"strings"
	"time"
)

// Mode selects between creation rules (required fields enforced) and
// partial-update rules (every field optional).
type Mode int

const (
	Create Mode = iota
	Update
)

func (m Mode) String() string {
	if m == Update {
		return "update"
	}
	return "create"
}

type kind int

const (
	kindString kind = iota
	kindStringList
	kindNumber
	kindBool
	kindDuration
)

// Field describes one accepted payload key.
type Field struct {
	Name     string
	Label    string // capitalised name used in type errors
	kind     kind
	Required bool
}

var healthTipFields = []Field{
	{Name: "title", Label: "Title", kind: kindString, Required: true},
	{Name: "content", Label: "Content", kind: kindString, Required: true},
	{Name: "category", Label: "Category", kind: kindString},
	{Name: "author", Label: "Author", kind: kindString},
}

var recipeFields = []Field{
	{Name: "title", Label: "Title", kind: kindString, Required: true},
	{Name: "ingredients", Label: "Ingredients", kind: kindStringList, Required: true},
	{Name: "steps", Label: "Steps", kind: kindStringList, Required: true},
	{Name: "calories", Label: "Calories", kind: kindNumber},
	{Name: "prepTime", Label: "PrepTime", kind: kindDuration},
	{Name: "cookTime", Label: "CookTime", kind: kindNumber},
	{Name: "category", Label: "Category", kind: kindString},
	{Name: "isVegan", Label: "isVegan", kind: kindBool},
}

// HealthTip validates a health tip payload.
func HealthTip(payload map[string]any, mode Mode) []string {
	return check(payload, healthTipFields, mode)
}

// Recipe validates a recipe payload.
func Recipe(payload map[string]any, mode Mode) []string {
	return check(payload, recipeFields, mode)
}

func check(payload map[string]any, fields []Field, mode Mode) []string {
	errs := []string{}
	for _, f := range fields {
		v, present := payload[f.Name]
		if !present || v == nil {
			switch {
			case !f.Required:
			case mode == Create:
				errs = append(errs, fmt.Sprintf("%s is required", f.Name))
			case present:
				errs = append(errs, fmt.Sprintf("%s cannot be null", f.Name))
			}
			continue
		}
		errs = append(errs, f.check(v)...)
	}
	return errs
}

func (f Field) check(v any) []string {
	switch f.kind {
	case kindString:
		s, ok := v.(string)
		if !ok {
			return []string{f.Label + " must be a string"}
		}
		if f.Required && strings.TrimSpace(s) == "" {
			return []string{f.Name + " cannot be empty"}
		}
	case kindStringList:
		items, ok := v.([]any)
		if !ok {
			return []string{f.Label + " must be an array"}
		}
		for _, item := range items {
			if _, ok := item.(string); !ok {
				return []string{f.Label + " must contain only strings"}
			}
		}
	case kindNumber:
		if !nonNegative(v) {
			return []string{f.Label + " must be a non-negative number"}
		}
	case kindBool:
		if _, ok := v.(bool); !ok {
			return []string{f.Label + " must be a boolean"}
		}
	case kindDuration:
		if s, ok := v.(string); ok {
			if d, err := time.ParseDuration(strings.TrimSpace(s)); err == nil && d >= 0 {
				return nil
			}
		} else if nonNegative(v) {
			return nil
		}
		return []string{f.Label + " must be a non-negative number or duration string"}
	}
	return nil
}

func nonNegative(v any) bool {
	n, ok := v.(float64)
	return ok && n >= 0
}
