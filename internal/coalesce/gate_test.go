package coalesce

import "testing"

func TestGateCollapsesBurstIntoOneFollowUp(t *testing.T) {
	var g Gate

	if !g.Enter(true) {
		t.Fatalf("first Enter = false, want true")
	}
	for i := 0; i < 5; i++ {
		if g.Enter(true) {
			t.Fatalf("Enter while in flight = true, want false")
		}
	}
	if !g.Queued() {
		t.Fatalf("Queued = false after burst, want true")
	}

	if !g.Release(true) {
		t.Fatalf("Release = false, want follow-up")
	}
	if !g.Busy() {
		t.Fatalf("gate freed during follow-up")
	}
	if g.Queued() {
		t.Fatalf("queued flag not cleared for follow-up")
	}
	if g.Release(true) {
		t.Fatalf("second Release = true, want no further follow-up")
	}
	if g.Busy() {
		t.Fatalf("Busy = true after final release")
	}
}

func TestGateReleaseWithoutFollowUpDropsQueue(t *testing.T) {
	var g Gate
	g.Enter(true)
	g.Enter(true)

	if g.Release(false) {
		t.Fatalf("Release(false) = true, want false")
	}
	if g.Busy() || g.Queued() {
		t.Fatalf("gate state busy=%v queued=%v, want both false", g.Busy(), g.Queued())
	}
}

func TestGateEnterWithoutQueue(t *testing.T) {
	var g Gate
	g.Enter(false)
	if g.Enter(false) {
		t.Fatalf("second Enter = true, want false")
	}
	if g.Queued() {
		t.Fatalf("Enter(false) queued a request")
	}
}

func TestGateDoReleasesOnPanic(t *testing.T) {
	var g Gate
	func() {
		defer func() { _ = recover() }()
		g.Do(func() { panic("boom") })
	}()
	if g.Busy() {
		t.Fatalf("gate still busy after panic")
	}

	ran := false
	if !g.Do(func() { ran = true }) || !ran {
		t.Fatalf("Do did not run on a free gate")
	}
}
