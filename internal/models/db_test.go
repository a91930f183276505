package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWellFormedDismissed(t *testing.T) {
	valid := &DismissedJob{JobID: "123", Title: "Job 1"}
	valid2 := &DismissedJob{JobID: "456", Title: "Job 2"}

	out := WellFormedDismissed([]*DismissedJob{valid, nil, valid2, {}})

	assert.Len(t, out, 2)
	assert.Equal(t, "123", out[0].JobID)
	assert.Equal(t, "456", out[1].JobID)
}

func TestWellFormedDismissed_BlankID(t *testing.T) {
	out := WellFormedDismissed([]*DismissedJob{{JobID: "   "}, nil})
	assert.Empty(t, out)
}

func TestJobListingValid(t *testing.T) {
	assert.True(t, JobListing{JobID: "1"}.Valid())
	assert.False(t, JobListing{Title: "Senior Engineer"}.Valid())
	assert.False(t, JobListing{JobID: " "}.Valid())
}
