package profile

import (
	"slices"
	"testing"
)

func TestProfiler_Start_Disabled(t *testing.T) {
	for _, p := range []Profiler{{}, {Mode: "nonsense", Path: t.TempDir()}} {
		s := p.Start()
		if _, ok := s.(ignore); !ok {
			t.Errorf("Start(%+v) = %T, want no-op", p, s)
		}

		s.Stop()
	}
}

func TestModes(t *testing.T) {
	got := slices.Collect(Modes())

	if Enabled() != (len(got) > 0) {
		t.Errorf("Enabled() = %v with %d modes", Enabled(), len(got))
	}

	if !slices.IsSorted(got) {
		t.Errorf("modes not sorted: %v", got)
	}

	if Enabled() && !slices.Contains(got, "cpu") {
		t.Errorf("cpu missing from %v", got)
	}
}
