package gamestats

import "testing"

func TestParseTOI(t *testing.T) {
	cases := map[string]int{"18:45": 1125, "0:00": 0, "60:00": 3600, "abc": 0, "12": 0, "12:75": 0, "": 0, " 5:07 ": 307}
	for in, want := range cases {
		if got := ParseTOI(in); got != want {
			t.Fatalf("ParseTOI(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestDerivedRates(t *testing.T) {
	if got := TOIMinutes(1125); got != 18.75 {
		t.Fatalf("unexpected toi minutes: %v", got)
	}
	if got := PointsPer60(2, 0); got != 0 {
		t.Fatalf("points per 60 with zero toi must be 0, got %v", got)
	}
	if got := PointsPer60(2, 1200); got != 6 {
		t.Fatalf("unexpected points per 60: %v", got)
	}
	if SavePct(0, 0) != nil {
		t.Fatalf("save pct must be NULL with no shots against")
	}
	if got := SavePct(28, 30); got == nil || *got != 0.9333 {
		t.Fatalf("unexpected save pct: %v", got)
	}
}

func TestFaceoffPct(t *testing.T) {
	zero, half, pct := 0.0, 0.5, 55.0
	if FaceoffPct(nil) != nil || FaceoffPct(&zero) != nil {
		t.Fatalf("missing or zero faceoff pct is NULL")
	}
	if got := FaceoffPct(&half); got == nil || *got != 0.5 {
		t.Fatalf("unexpected faceoff pct: %v", got)
	}
	if got := FaceoffPct(&pct); got == nil || *got != 0.55 {
		t.Fatalf("percent scale should be normalized: %v", got)
	}
}
