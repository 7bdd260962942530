package bootlog

import (
	"math"
	"testing"
)

func TestToVoltage(t *testing.T) {
	tests := []struct {
		raw  int
		want float64
	}{
		{0, 0},
		{4095, 6.6},
		{2048, 3.30080586080586},
		{3000, 4.835164835164835},
		{100, 0.16117216117216118},
		{-4095, -6.6},
		{8190, 13.2},
	}
	for _, tt := range tests {
		got := ToVoltage(tt.raw)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("ToVoltage(%d) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestToVoltageMatchesFormulaOverRange(t *testing.T) {
	for r := 0; r <= 4095; r++ {
		want := (float64(r) / 4095) * 3.3 * 2
		if got := ToVoltage(r); got != want {
			t.Fatalf("ToVoltage(%d) = %v, want %v", r, got, want)
		}
	}
}

func TestBatteryPresent(t *testing.T) {
	if BatteryPresent(ToVoltage(100)) {
		t.Error("raw 100 should read as no battery")
	}
	if !BatteryPresent(1.0) {
		t.Error("1.0V is at threshold and should count as present")
	}
	if !BatteryPresent(ToVoltage(3000)) {
		t.Error("raw 3000 should read as battery present")
	}
}
