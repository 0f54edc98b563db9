package server_test

import (
	"testing"

	"github.com/jrsteele09/office-roster/server"
	"github.com/stretchr/testify/require"
)

func TestDayLabel(t *testing.T) {
	tests := []struct {
		date     string
		dayName  string
		monthDay string
	}{
		{"2025-06-09", "Mon", "Jun 9"},
		{"2025-06-13", "Fri", "Jun 13"},
		{"2024-02-29", "Thu", "Feb 29"},
		{"not-a-date", "not-a-date", ""},
	}
	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			dayName, monthDay := server.DayLabel(tt.date)
			require.Equal(t, tt.dayName, dayName)
			require.Equal(t, tt.monthDay, monthDay)
		})
	}
}

func TestNameColour(t *testing.T) {
	tests := []struct {
		name string
		hue  string
	}{
		{"Alice", "88"},
		{"Bob", "5"},
		{"Unknown", "74"},
		{"Jane Doe", "192"},
		{"Zoë Ångström", "68"},
		{"a very long name that overflows the hash", "305"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			background, foreground := server.NameColour(tt.name)
			require.Equal(t, "hsl("+tt.hue+", 70%, 90%)", background)
			require.Equal(t, "hsl("+tt.hue+", 30%, 30%)", foreground)
		})
	}

	t.Run("stable", func(t *testing.T) {
		first, _ := server.NameColour("Person One")
		second, _ := server.NameColour("Person One")
		require.Equal(t, first, second)
	})

	t.Run("empty name", func(t *testing.T) {
		background, _ := server.NameColour("")
		require.Equal(t, "hsl(0, 70%, 90%)", background)
	})
}
