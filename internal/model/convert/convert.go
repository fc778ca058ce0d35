// Package convert provides functions to convert between GORM models and core models
package convert

import (
	"encoding/json"

	"github.com/seaplan/mplan/internal/model"
	"github.com/seaplan/mplan/pkg/core"
	"gorm.io/datatypes"
)

// tagsToJSON converts a []string to datatypes.JSON for DB storage.
func tagsToJSON(tags []string) datatypes.JSON {
	if len(tags) == 0 {
		return datatypes.JSON("[]")
	}
	data, _ := json.Marshal(tags)
	return datatypes.JSON(data)
}

func tagsFromJSON(data datatypes.JSON) []string {
	var tags []string
	if len(data) > 0 {
		_ = json.Unmarshal(data, &tags)
	}
	if len(tags) == 0 {
		return nil
	}
	return tags
}

// TemplateToGorm converts a core.Template to a GORM Template. Timestamps are left to GORM.
func TemplateToGorm(t core.Template) model.Template {
	return model.Template{
		Name:     t.Name,
		Vehicle:  t.Vehicle,
		Kind:     t.Kind,
		Document: string(t.Document),
		Tags:     tagsToJSON(t.Tags),
	}
}

// TemplateToCore converts a GORM Template to a core.Template.
func TemplateToCore(t model.Template) core.Template {
	return core.Template{
		Name:      t.Name,
		Vehicle:   t.Vehicle,
		Kind:      t.Kind,
		Document:  []byte(t.Document),
		Tags:      tagsFromJSON(t.Tags),
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}
