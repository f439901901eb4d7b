package timeutil

import (
	"testing"
	"time"
)

var epoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func TestRealClock_Now(t *testing.T) {
	before := time.Now()
	got := RealClock{}.Now()
	if got.Before(before) {
		t.Errorf("RealClock.Now() = %v, before %v", got, before)
	}
}

func TestManualClock_After(t *testing.T) {
	c := NewManualClock(epoch)
	ch := c.After(100 * time.Millisecond)

	if c.Waiters() != 1 {
		t.Fatalf("Waiters() = %d, want 1", c.Waiters())
	}

	c.Advance(50 * time.Millisecond)
	select {
	case <-ch:
		t.Fatal("After fired early")
	default:
	}

	c.Advance(50 * time.Millisecond)
	select {
	case got := <-ch:
		if !got.Equal(epoch.Add(100 * time.Millisecond)) {
			t.Errorf("After delivered %v", got)
		}
	default:
		t.Fatal("After did not fire")
	}
	if c.Waiters() != 0 {
		t.Errorf("Waiters() = %d after firing, want 0", c.Waiters())
	}
}

func TestManualClock_AfterNonPositive(t *testing.T) {
	c := NewManualClock(epoch)
	select {
	case <-c.After(0):
	default:
		t.Fatal("After(0) should fire immediately")
	}
}

func TestManualClock_Ticker(t *testing.T) {
	c := NewManualClock(epoch)
	tk := c.NewTicker(time.Second)
	if c.Tickers() != 1 {
		t.Fatalf("Tickers() = %d, want 1", c.Tickers())
	}

	c.Advance(500 * time.Millisecond)
	select {
	case <-tk.C():
		t.Fatal("ticker fired early")
	default:
	}

	c.Advance(500 * time.Millisecond)
	select {
	case <-tk.C():
	default:
		t.Fatal("ticker did not fire after one period")
	}

	tk.Stop()
	if c.Tickers() != 0 {
		t.Errorf("Tickers() = %d after Stop, want 0", c.Tickers())
	}
	c.Advance(5 * time.Second)
	select {
	case <-tk.C():
		t.Fatal("stopped ticker fired")
	default:
	}
}

func TestManualClock_Set(t *testing.T) {
	c := NewManualClock(epoch)
	later := epoch.Add(time.Hour)
	c.Set(later)
	if !c.Now().Equal(later) {
		t.Errorf("Now() = %v, want %v", c.Now(), later)
	}
}
