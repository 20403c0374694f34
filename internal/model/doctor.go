package model

import (
	"github.com/google/uuid"
)

type Doctor struct {
	Base
	UserID         string     `db:"user_id" json:"user_id"`
	HospitalID     *uuid.UUID `db:"hospital_id" json:"hospital_id,omitempty"`
	Title          string     `db:"title" json:"title"`
	FirstName      string     `db:"first_name" json:"first_name"`
	LastName       string     `db:"last_name" json:"last_name"`
	Specialization string     `db:"specialization" json:"specialization"`
}

// DisplayName is the label shown to patients and used as the facility name on
// consent requests raised by this doctor.
func (d *Doctor) DisplayName() string {
	name := d.Title
	if name == "" {
		name = "Dr."
	}
	if d.FirstName != "" {
		name += " " + d.FirstName
	}
	if d.LastName != "" {
		name += " " + d.LastName
	}
	return name
}
