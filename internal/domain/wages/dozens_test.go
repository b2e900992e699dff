package wages

import (
	"math"
	"testing"

	"capworks/internal/domain/validation"
)

func TestDozenConversions(t *testing.T) {
	tests := []struct {
		units  int
		dozens int
		loose  int
	}{
		{units: 0, dozens: 0, loose: 0},
		{units: 11, dozens: 0, loose: 11},
		{units: 12, dozens: 1, loose: 0},
		{units: 30, dozens: 2, loose: 6},
		{units: -4, dozens: 0, loose: 0},
	}
	for _, tc := range tests {
		if got := DozensFromUnits(tc.units); got != tc.dozens {
			t.Fatalf("DozensFromUnits(%d): expected %d, got %d", tc.units, tc.dozens, got)
		}
		if got := LooseUnits(tc.units); got != tc.loose {
			t.Fatalf("LooseUnits(%d): expected %d, got %d", tc.units, tc.loose, got)
		}
	}

	if got := UnitsFromDozens(3); got != 36 {
		t.Fatalf("expected 36 units, got %d", got)
	}
	if got := UnitsFromDozens(-2); got != 0 {
		t.Fatalf("expected 0 units, got %d", got)
	}
	if got := UnitsFromDozens(MaxDozens); got != MaxDozens*UnitsPerDozen {
		t.Fatalf("expected %d units, got %d", MaxDozens*UnitsPerDozen, got)
	}
	for _, d := range []int{MaxDozens + 1, math.MaxInt} {
		if got := UnitsFromDozens(d); got != 0 {
			t.Fatalf("%d dozens: expected 0 units, got %d", d, got)
		}
	}
	for d := 0; d < 50; d++ {
		if got := DozensFromUnits(UnitsFromDozens(d)); got != d {
			t.Fatalf("round trip of %d dozens gave %d", d, got)
		}
	}
}

func TestRecordDozens(t *testing.T) {
	l, plane, _ := seededLedger(t)
	if err := l.RecordDozens("W", plane.ID, 4); err != nil {
		t.Fatalf("record dozens: %v", err)
	}
	if got := l.Units("W", plane.ID); got != 48 {
		t.Fatalf("expected 48 units, got %d", got)
	}
}

func TestParseRate(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "integer", raw: "60", want: "60"},
		{name: "fraction", raw: " 72.5 ", want: "72.5"},
		{name: "zero", raw: "0", want: "0"},
		{name: "empty", raw: "", wantErr: true},
		{name: "negative", raw: "-1", wantErr: true},
		{name: "not a number", raw: "sixty", wantErr: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseRate(tc.raw)
			if tc.wantErr {
				if !validation.Is(err) {
					t.Fatalf("expected validation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.String() != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}
