package model

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []any{
	&Template{},
}

// Template is a stored maneuver. Document is the XML node form.
type Template struct {
	gorm.Model
	Name     string         `json:"name" gorm:"size:127;uniqueIndex:idx_template_name"`
	Vehicle  string         `json:"vehicle" gorm:"size:64;index:idx_template_vehicle"`
	Kind     string         `json:"kind" gorm:"size:64"`
	Document string         `json:"document" gorm:"type:text"`
	Tags     datatypes.JSON `json:"tags"`
}

func (*Template) TableName() string {
	return "templates"
}
