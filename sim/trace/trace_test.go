package trace

import (
	"testing"
)

func TestSimulationTrace_RecordPlacement_AppendsRecord(t *testing.T) {
	// GIVEN a trace configured for decisions
	st := NewSimulationTrace(TraceLevelDecisions)

	// WHEN a placement record is recorded
	st.RecordPlacement(PlacementRecord{
		JobID:  1,
		Clock:  10,
		NodeID: 3,
		Placed: true,
		Reason: "first-fit",
	})

	// THEN the trace contains one placement record with correct data
	if len(st.Placements) != 1 {
		t.Fatalf("expected 1 placement, got %d", len(st.Placements))
	}
	if st.Placements[0].NodeID != 3 {
		t.Errorf("expected node 3, got %d", st.Placements[0].NodeID)
	}
	if !st.Placements[0].Placed {
		t.Error("expected placed=true")
	}
}

func TestSimulationTrace_MultipleRecords_PreservesOrder(t *testing.T) {
	// GIVEN a trace
	st := NewSimulationTrace(TraceLevelDecisions)

	// WHEN multiple records are added
	st.RecordPlacement(PlacementRecord{JobID: 1, Clock: 0, NodeID: 1, Placed: true})
	st.RecordPlacement(PlacementRecord{JobID: 2, Clock: 0, Placed: false, Reason: "no fit"})
	st.RecordRelease(ReleaseRecord{JobID: 1, NodeID: 1, Clock: 4})

	// THEN order is preserved
	if len(st.Placements) != 2 {
		t.Fatalf("expected 2 placements, got %d", len(st.Placements))
	}
	if st.Placements[0].JobID != 1 || st.Placements[1].JobID != 2 {
		t.Error("placement order not preserved")
	}
	if len(st.Releases) != 1 || st.Releases[0].Clock != 4 {
		t.Error("release not recorded")
	}
}

func TestSimulationTrace_Enabled(t *testing.T) {
	var nilTrace *SimulationTrace
	if nilTrace.Enabled() {
		t.Error("nil trace must not be enabled")
	}
	if NewSimulationTrace(TraceLevelNone).Enabled() {
		t.Error("level none must not be enabled")
	}
	if !NewSimulationTrace(TraceLevelDecisions).Enabled() {
		t.Error("level decisions must be enabled")
	}
}

func TestIsValidTraceLevel(t *testing.T) {
	for _, level := range []string{"", "none", "decisions"} {
		if !IsValidTraceLevel(level) {
			t.Errorf("expected %q to be valid", level)
		}
	}
	if IsValidTraceLevel("verbose") {
		t.Error("expected \"verbose\" to be invalid")
	}
}
