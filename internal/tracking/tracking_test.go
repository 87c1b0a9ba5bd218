package tracking

import (
	"testing"

	ord "github.com/elonmasai7/bistro-backend/internal/order"
)

func TestStageIndex_StrictlyIncreasing(t *testing.T) {
	prev := -1
	for _, s := range Stages() {
		idx := StageIndex(s)
		if idx <= prev {
			t.Fatalf("stageIndex(%s)=%d not increasing (prev=%d)", s, idx, prev)
		}
		prev = idx
	}
}

func TestEstimates_NonIncreasing(t *testing.T) {
	want := map[ord.Status]int{
		ord.StatusReceived:  15,
		ord.StatusPreparing: 10,
		ord.StatusReady:     5,
		ord.StatusDelivered: 0,
	}
	prev := -1
	for i, s := range Stages() {
		got := EstimatedMinutesRemaining(s)
		if got != want[s] {
			t.Fatalf("eta(%s)=%d, esperaba %d", s, got, want[s])
		}
		if i > 0 && got > prev {
			t.Fatalf("eta(%s)=%d increased past %d", s, got, prev)
		}
		prev = got
	}
}

func TestStageIndex_UnknownStatus(t *testing.T) {
	if idx := StageIndex("refunded"); idx != -1 {
		t.Fatalf("unknown status idx=%d, esperaba -1", idx)
	}
	if eta := EstimatedMinutesRemaining("refunded"); eta != 0 {
		t.Fatalf("unknown status eta=%d, esperaba 0", eta)
	}
}

func TestTimeline_Preparing(t *testing.T) {
	v := Timeline(ord.StatusPreparing)
	if v.StageIndex != 1 || v.EstimatedMinutes != 10 {
		t.Fatalf("view=%+v", v)
	}
	if len(v.Stages) != 4 {
		t.Fatalf("stages=%d", len(v.Stages))
	}
	if !v.Stages[0].Completed || v.Stages[0].Current {
		t.Fatalf("received should render completed: %+v", v.Stages[0])
	}
	if !v.Stages[1].Current || v.Stages[1].Completed {
		t.Fatalf("preparing should render current: %+v", v.Stages[1])
	}
	for _, st := range v.Stages[2:] {
		if st.Completed || st.Current {
			t.Fatalf("pending stage rendered active: %+v", st)
		}
	}
}

// A stale client may read a status it does not recognize; the timeline must
// degrade to "position unknown" instead of failing.
func TestTimeline_UnknownStatusAllPending(t *testing.T) {
	v := Timeline("boxed")
	if v.StageIndex != -1 {
		t.Fatalf("stageIndex=%d, esperaba -1", v.StageIndex)
	}
	for _, st := range v.Stages {
		if st.Completed || st.Current {
			t.Fatalf("unknown status rendered stage active: %+v", st)
		}
	}
}

func TestStages_ReturnsCopy(t *testing.T) {
	s := Stages()
	s[0] = "mutated"
	if Stages()[0] != ord.StatusReceived {
		t.Fatalf("Stages leaked internal slice")
	}
}
