package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConsentTransitions(t *testing.T) {
	cases := []struct {
		from    ConsentStatus
		to      ConsentStatus
		allowed bool
	}{
		{ConsentStatusPending, ConsentStatusApproved, true},
		{ConsentStatusPending, ConsentStatusDenied, true},
		{ConsentStatusPending, ConsentStatusRevoked, false},
		{ConsentStatusApproved, ConsentStatusRevoked, true},
		{ConsentStatusApproved, ConsentStatusDenied, false},
		{ConsentStatusApproved, ConsentStatusPending, false},
		{ConsentStatusDenied, ConsentStatusApproved, false},
		{ConsentStatusDenied, ConsentStatusRevoked, false},
		{ConsentStatusRevoked, ConsentStatusApproved, false},
		{ConsentStatusRevoked, ConsentStatusPending, false},
	}

	for _, tc := range cases {
		c := &Consent{Status: tc.from}
		assert.Equal(t, tc.allowed, c.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}
