package models

import (
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultRecipeCategory is stored when a recipe is created without a category.
const DefaultRecipeCategory = "Uncategorized"

type Recipe struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Ingredients []string           `bson:"ingredients" json:"ingredients"`
	Steps       []string           `bson:"steps" json:"steps"`
	Calories    *float64           `bson:"calories,omitempty" json:"calories,omitempty"`
	PrepTime    *PrepTime          `bson:"prepTime,omitempty" json:"prepTime,omitempty"`
	CookTime    *float64           `bson:"cookTime,omitempty" json:"cookTime,omitempty"`
	Category    string             `bson:"category" json:"category"`
	IsVegan     bool               `bson:"isVegan" json:"isVegan"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (r *Recipe) SetID(id primitive.ObjectID) { r.ID = id }

// Stamp sets both timestamps, as on creation.
func (r *Recipe) Stamp(now time.Time) {
	r.CreatedAt = now
	r.UpdatedAt = now
}

// PrepTime is either a number of minutes or a duration string such as "1h30m".
// It is stored and rendered as whichever of the two the client sent.
type PrepTime struct {
	Minutes  float64
	Duration string
}

// Value returns the raw form written to storage: a string or a float64.
func (p PrepTime) Value() any {
	if p.Duration != "" {
		return p.Duration
	}
	return p.Minutes
}

func (p PrepTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Value())
}

func (p *PrepTime) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case string:
		*p = PrepTime{Duration: t}
	case float64:
		*p = PrepTime{Minutes: t}
	default:
		return fmt.Errorf("prepTime: unsupported JSON value %s", string(data))
	}
	return nil
}

func (p PrepTime) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(p.Value())
}

func (p *PrepTime) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}
	switch t {
	case bsontype.String:
		*p = PrepTime{Duration: raw.StringValue()}
	case bsontype.Double:
		*p = PrepTime{Minutes: raw.Double()}
	case bsontype.Int32:
		*p = PrepTime{Minutes: float64(raw.Int32())}
	case bsontype.Int64:
		*p = PrepTime{Minutes: float64(raw.Int64())}
	default:
		return fmt.Errorf("prepTime: unsupported BSON type %s", t)
	}
	return nil
}
