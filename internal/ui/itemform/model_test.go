package itemform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/production-calendar/internal/model"
)

func TestParseQuantity(t *testing.T) {
	n, err := parseQuantity(" ")
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = parseQuantity("40")
	require.NoError(t, err)
	assert.Equal(t, 40, n)

	for _, bad := range []string{"-1", "4.5", "ten"} {
		assert.Error(t, validateQuantity(bad), bad)
	}
}

func TestValidators(t *testing.T) {
	assert.NoError(t, validateDate("2024-03-13"))
	assert.Error(t, validateDate("13/03/2024"))
	assert.Error(t, validateDate("2024-02-30"))

	assert.NoError(t, validateRequired("Code")("A-1"))
	assert.EqualError(t, validateRequired("Code")("  "), "Code is required")
}

func TestSetDepartments(t *testing.T) {
	m := New(80, 24)
	m.SetDepartments([]model.WorkItem{
		{Department: "Welding"},
		{Department: " Assembly "},
		{Department: ""},
		{Department: "Welding"},
	})
	assert.Equal(t, []string{"Assembly", "Welding"}, m.departments)
}
