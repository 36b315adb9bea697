package models

import "time"

// ConfigField is one selectable option of a catalog category.
type ConfigField struct {
	ID          string    `db:"id" json:"id"`
	Category    string    `db:"category" json:"category"`
	Label       string    `db:"label" json:"label"`
	Value       string    `db:"value" json:"value"`
	Description *string   `db:"description" json:"description,omitempty"`
	SortOrder   int       `db:"sort_order" json:"sort_order"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// OptionCategory summarises a category with its active option count.
type OptionCategory struct {
	Category string `db:"category" json:"category"`
	Count    int    `db:"count" json:"count"`
}
