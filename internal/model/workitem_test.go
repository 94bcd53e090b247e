package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusInProduction, true},
		{StatusInProduction, StatusCompleted, true},
		{StatusPending, StatusCompleted, false},
		{StatusInProduction, StatusPending, false},
		{StatusCompleted, StatusInProduction, false},
		{StatusCompleted, StatusCompleted, false},
		{StatusPending, StatusPending, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus(" in_production ")
	require.NoError(t, err)
	assert.Equal(t, StatusInProduction, s)
	assert.Equal(t, "In production", s.Label())

	_, err = ParseStatus("DONE")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := WorkItem{
		ID:     "w1",
		DayID:  "d1",
		Day:    time.Date(2024, time.March, 13, 0, 0, 0, 0, time.UTC),
		Status: StatusPending,
	}
	require.NoError(t, valid.Validate())

	broken := map[string]func(w *WorkItem){
		"missing id":     func(w *WorkItem) { w.ID = " " },
		"missing day id": func(w *WorkItem) { w.DayID = "" },
		"zero day":       func(w *WorkItem) { w.Day = time.Time{} },
		"bad status":     func(w *WorkItem) { w.Status = "DONE" },
		"negative qty":   func(w *WorkItem) { w.Quantity = -1 },
		"negative index": func(w *WorkItem) { *w = w.WithOrderIndex(-1) },
	}
	for name, mutate := range broken {
		t.Run(name, func(t *testing.T) {
			w := valid
			mutate(&w)
			assert.Error(t, w.Validate())
		})
	}
}

func TestWithOrderIndex_Copies(t *testing.T) {
	base := WorkItem{ID: "w1"}
	ordered := base.WithOrderIndex(2)

	assert.False(t, base.IsOrdered())
	require.True(t, ordered.IsOrdered())
	assert.Equal(t, 2, *ordered.OrderIndex)
}
