package model

type Hospital struct {
	Base
	Name string `db:"name" json:"name"`
	City string `db:"city" json:"city,omitempty"`
}
