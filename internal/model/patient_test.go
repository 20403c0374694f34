package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatientDisplayName(t *testing.T) {
	assert.Equal(t, "Asha Rani Gupta", (&Patient{FirstName: "Asha", MiddleName: "Rani", LastName: "Gupta"}).DisplayName())
	assert.Equal(t, "Asha Gupta", (&Patient{FirstName: "Asha", LastName: "Gupta"}).DisplayName())
	assert.Equal(t, "Asha", (&Patient{FirstName: "Asha"}).DisplayName())
	assert.Equal(t, "Unknown Patient", (&Patient{}).DisplayName())
}

func TestPatientAge(t *testing.T) {
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	dob := time.Date(1990, 6, 15, 0, 0, 0, 0, time.UTC)
	age := (&Patient{DateOfBirth: &dob}).Age(now)
	require.NotNil(t, age)
	assert.Equal(t, 34, *age)

	// Birthday tomorrow, still 33.
	dob = time.Date(1990, 6, 16, 0, 0, 0, 0, time.UTC)
	age = (&Patient{DateOfBirth: &dob}).Age(now)
	require.NotNil(t, age)
	assert.Equal(t, 33, *age)

	assert.Nil(t, (&Patient{}).Age(now))
}

func TestDoctorDisplayName(t *testing.T) {
	assert.Equal(t, "Dr. Priya Sharma", (&Doctor{FirstName: "Priya", LastName: "Sharma"}).DisplayName())
	assert.Equal(t, "Prof. Priya Sharma", (&Doctor{Title: "Prof.", FirstName: "Priya", LastName: "Sharma"}).DisplayName())
}
