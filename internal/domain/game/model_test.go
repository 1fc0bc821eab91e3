package game

import "testing"

func TestNormalizeState(t *testing.T) {
	cases := map[string]State{"PRE": StateFuture, "crit": StateLive, "OFF": StateOff, "FINAL": StateFinal, "FUT": StateFuture}
	for in, want := range cases {
		if got, ok := NormalizeState(in); !ok || got != want {
			t.Fatalf("NormalizeState(%q) = %q, %v; want %q", in, got, ok, want)
		}
	}
	if _, ok := NormalizeState("POSTPONED"); ok {
		t.Fatalf("unknown state must not resolve")
	}
}

func TestCompletedAndTrackedType(t *testing.T) {
	if !StateOff.Completed() || !StateFinal.Completed() || StateLive.Completed() {
		t.Fatalf("only OFF and FINAL games are completed")
	}
	if TrackedType(1) || !TrackedType(2) || !TrackedType(3) {
		t.Fatalf("only regular season and playoff games are tracked")
	}
}
