package kernel

import "testing"

func TestCellAcquireRelease(t *testing.T) {
	var c Cell
	c.Acquire()
	c.Release()
	c.Acquire()
	c.Release()
}

func TestCellReborrowPanics(t *testing.T) {
	var c Cell
	c.Acquire()
	defer c.Release()

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on re-borrow")
		}
	}()
	c.Acquire()
}
