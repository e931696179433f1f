package kernel

import (
	"testing"
	"time"
)

func TestSwitchRoundTrip(t *testing.T) {
	idle := NewContext()

	// order is only ever appended to by the single running flow.
	var order []string
	var taskCx *Context
	taskCx = NewEntryContext(func() {
		order = append(order, "task-first")
		Switch(taskCx, idle)
		order = append(order, "task-second")
		ExitTo(idle)
	})

	order = append(order, "idle-first")
	Switch(idle, taskCx)
	order = append(order, "idle-second")
	Switch(idle, taskCx)
	order = append(order, "idle-third")

	want := []string{"idle-first", "task-first", "idle-second", "task-second", "idle-third"}
	if len(order) != len(want) {
		t.Fatalf("expected %d entries, got %v", len(want), order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("entry %d: expected %q, got %v", i, want[i], order)
		}
	}
}

func TestExitToTerminatesFlow(t *testing.T) {
	idle := NewContext()
	ended := make(chan struct{})

	taskCx := NewEntryContext(func() {
		defer close(ended)
		ExitTo(idle)
		t.Error("unreachable: ExitTo returned")
	})

	Switch(idle, taskCx)

	select {
	case <-ended:
	case <-time.After(time.Second):
		t.Fatal("flow did not terminate after ExitTo")
	}
}
