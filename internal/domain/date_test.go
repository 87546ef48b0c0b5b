package domain

import "testing"

func TestIsValidDate(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"2024-06-13", true},
		{"2024-01-01", true},
		{"2024-02-29", true}, // leap day
		{"2023-02-29", false},
		{"2024-13-01", false},
		{"2024-06-32", false},
		{"2024-6-13", false},  // missing zero padding
		{"24-06-13", false},   // short year
		{"2024/06/13", false}, // wrong separator
		{"", false},
		{"not-a-date", false},
	}

	for _, tt := range tests {
		if got := IsValidDate(tt.in); got != tt.want {
			t.Errorf("IsValidDate(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestWeekBounds(t *testing.T) {
	tests := []struct {
		ref       string
		wantStart string
		wantEnd   string
	}{
		{"2024-06-13", "2024-06-10", "2024-06-16"}, // Thursday
		{"2024-06-10", "2024-06-10", "2024-06-16"}, // Monday maps to itself
		{"2024-06-16", "2024-06-10", "2024-06-16"}, // Sunday belongs to the preceding Monday
		{"2024-01-01", "2024-01-01", "2024-01-07"}, // year boundary, Monday
		{"2024-03-03", "2024-02-26", "2024-03-03"}, // month boundary crossing
	}

	for _, tt := range tests {
		start, end, err := WeekBounds(tt.ref)
		if err != nil {
			t.Fatalf("WeekBounds(%q) unexpected error: %v", tt.ref, err)
		}
		if start != tt.wantStart || end != tt.wantEnd {
			t.Errorf("WeekBounds(%q) = (%s, %s), want (%s, %s)", tt.ref, start, end, tt.wantStart, tt.wantEnd)
		}
	}
}

func TestWeekBoundsInvalid(t *testing.T) {
	if _, _, err := WeekBounds("garbage"); err != ErrInvalidDate {
		t.Errorf("WeekBounds(garbage) error = %v, want ErrInvalidDate", err)
	}
}

func TestNextDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2024-06-13", "2024-06-14"},
		{"2024-06-30", "2024-07-01"},
		{"2024-12-31", "2025-01-01"},
		{"2024-02-28", "2024-02-29"},
	}

	for _, tt := range tests {
		if got := NextDate(tt.in); got != tt.want {
			t.Errorf("NextDate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
