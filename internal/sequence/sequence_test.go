package sequence

import (
	"testing"
	"time"
)

func TestPrefix(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"escola-central", "ESC"},
		{"sé", "SÉ"},
		{"ab", "AB"},
		{"", "GER"},
		{"  ", "GER"},
		{"école", "ÉCO"},
	}
	for _, tt := range tests {
		if got := Prefix(tt.in); got != tt.want {
			t.Errorf("Prefix(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestProtocolNumber_Format(t *testing.T) {
	if got := ProtocolNumber("escola-central", 2026, 7); got != "ESC-2026-0007" {
		t.Fatalf("ProtocolNumber = %q", got)
	}
	if got := ProtocolNumber("escola-central", 2026, 12345); got != "ESC-2026-12345" {
		t.Fatalf("ordinal wider than the pad must not truncate: %q", got)
	}
}

func TestProtocolNumber_StrictlyIncreasingOrdinals(t *testing.T) {
	prev := ""
	for i := 1; i <= 200; i++ {
		n := ProtocolNumber("esc", 2026, i)
		if n <= prev {
			t.Fatalf("ordinal %d produced %q, not greater than %q", i, n, prev)
		}
		prev = n
	}
}

func TestTicketNumber_PriorityClasses(t *testing.T) {
	tests := []struct {
		priority string
		ordinal  int
		want     string
	}{
		{"urgent", 3, "U-003"},
		{"preferential", 14, "P-014"},
		{"normal", 102, "N-102"},
		{"anything-else", 1, "N-001"},
	}
	for _, tt := range tests {
		if got := TicketNumber(tt.priority, tt.ordinal); got != tt.want {
			t.Errorf("TicketNumber(%q, %d) = %q, want %q", tt.priority, tt.ordinal, got, tt.want)
		}
	}
}

func TestYearAndDay(t *testing.T) {
	ts := time.Date(2026, 8, 31, 23, 59, 0, 0, time.UTC)
	if Year(ts) != 2026 {
		t.Fatalf("Year = %d", Year(ts))
	}
	if Day(ts) != "2026-08-31" {
		t.Fatalf("Day = %q", Day(ts))
	}
}
