package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
)

func TestRenderOverlay(t *testing.T) {
	base := strings.Repeat("x", 20) + "\n" + strings.Repeat("y", 20)
	got := strings.Split(renderOverlay(base, "HELP", 20, 6), "\n")
	if len(got) != 6 {
		t.Fatalf("rendered %d rows, want base padded to 6", len(got))
	}
	row := ansi.Strip(got[centerOffset(6, 1)])
	if want := strings.Repeat(" ", 8) + "HELP"; row != want {
		t.Errorf("overlay row = %q, want %q", row, want)
	}
	if first := ansi.Strip(got[0]); first != strings.Repeat("x", 20) {
		t.Errorf("background row = %q", first)
	}
}

func TestSpliceRowKeepsBackground(t *testing.T) {
	got := ansi.Strip(spliceRow("abcdefghij", "XY", 3))
	if got != "abcXYfghij" {
		t.Errorf("spliceRow = %q, want abcXYfghij", got)
	}
}

func TestCenterOffset(t *testing.T) {
	tests := []struct {
		total, size, want int
	}{
		{total: 80, size: 20, want: 30},
		{total: 10, size: 10, want: 1},
		{total: 10, size: 30, want: 1},
	}
	for _, tt := range tests {
		if got := centerOffset(tt.total, tt.size); got != tt.want {
			t.Errorf("centerOffset(%d, %d) = %d, want %d", tt.total, tt.size, got, tt.want)
		}
	}
}
