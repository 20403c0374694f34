package model

import (
	"time"
)

type Patient struct {
	Base
	UserID      string     `db:"user_id" json:"user_id"`
	AadharUID   string     `db:"aadhar_uid" json:"aadhar_uid"`
	FirstName   string     `db:"first_name" json:"first_name"`
	MiddleName  string     `db:"middle_name" json:"middle_name,omitempty"`
	LastName    string     `db:"last_name" json:"last_name"`
	DateOfBirth *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Gender      string     `db:"gender" json:"gender,omitempty"`
	BloodGroup  string     `db:"blood_group" json:"blood_group,omitempty"`
	Phone       string     `db:"phone_primary" json:"phone_primary,omitempty"`
}

// DisplayName joins the present name parts with single spaces. Patients created
// through partial registration flows may have no name at all.
func (p *Patient) DisplayName() string {
	parts := make([]string, 0, 3)
	for _, s := range []string{p.FirstName, p.MiddleName, p.LastName} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return "Unknown Patient"
	}
	name := parts[0]
	for _, s := range parts[1:] {
		name += " " + s
	}
	return name
}

// Age is the calendar-year age at now, accounting for whether the birthday has
// occurred yet this year. Returns nil when the date of birth is unknown.
func (p *Patient) Age(now time.Time) *int {
	if p.DateOfBirth == nil {
		return nil
	}
	dob := *p.DateOfBirth
	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	return &age
}

type RegisterPatientRequest struct {
	UserID       string     `json:"user_id" binding:"required"`
	AadharNumber string     `json:"aadhar_number" binding:"required,aadhar"`
	FirstName    string     `json:"first_name" binding:"required"`
	MiddleName   string     `json:"middle_name"`
	LastName     string     `json:"last_name"`
	DateOfBirth  *time.Time `json:"date_of_birth"`
	Gender       string     `json:"gender"`
	BloodGroup   string     `json:"blood_group"`
	Phone        string     `json:"phone_primary"`
}
