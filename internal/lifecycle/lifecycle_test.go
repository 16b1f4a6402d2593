package lifecycle

import "testing"

func TestCanTransition(t *testing.T) {
	if !CanTransition(StatusPending, StatusAccepted) {
		t.Fatal("expected pending -> accepted to be allowed")
	}
	if !CanTransition(StatusPending, StatusRejected) {
		t.Fatal("expected pending -> rejected to be allowed")
	}
	if !CanTransition(StatusPending, StatusCancelled) {
		t.Fatal("expected pending -> cancelled to be allowed")
	}
	if !CanTransition(StatusAccepted, StatusCompleted) {
		t.Fatal("expected accepted -> completed to be allowed")
	}
	if !CanTransition(StatusAccepted, StatusCancelled) {
		t.Fatal("expected accepted -> cancelled to be allowed")
	}
	if CanTransition(StatusPending, StatusCompleted) {
		t.Fatal("unexpected pending -> completed allowed")
	}
	if CanTransition(StatusAccepted, StatusRejected) {
		t.Fatal("unexpected accepted -> rejected allowed")
	}
	if CanTransition(StatusCompleted, StatusCancelled) {
		t.Fatal("unexpected transition out of completed")
	}
	if CanTransition(StatusCancelled, StatusAccepted) {
		t.Fatal("unexpected transition out of cancelled")
	}
	if CanTransition(StatusRejected, StatusPending) {
		t.Fatal("unexpected transition out of rejected")
	}
}

func TestSameStatusIsNotATransition(t *testing.T) {
	for _, s := range []string{StatusPending, StatusAccepted, StatusCompleted, StatusCancelled, StatusRejected} {
		if CanTransition(s, s) {
			t.Fatalf("unexpected %s -> %s allowed", s, s)
		}
	}
}

func TestTerminalStates(t *testing.T) {
	for _, s := range []string{StatusCompleted, StatusCancelled, StatusRejected} {
		if !IsTerminal(s) {
			t.Fatalf("expected %s to be terminal", s)
		}
	}
	for _, s := range []string{StatusPending, StatusAccepted} {
		if IsTerminal(s) {
			t.Fatalf("expected %s to be non-terminal", s)
		}
	}
}

func TestDeletable(t *testing.T) {
	if !Deletable(StatusRejected) || !Deletable(StatusCancelled) {
		t.Fatal("expected rejected and cancelled to be deletable")
	}
	for _, s := range []string{StatusPending, StatusAccepted, StatusCompleted} {
		if Deletable(s) {
			t.Fatalf("expected %s to be non-deletable", s)
		}
	}
}

func TestAnnotatableMatchesAcceptedOnly(t *testing.T) {
	// Pins the accepted-not-completed gate; changing it silently would break
	// the rating window clients rely on.
	if !Annotatable(StatusAccepted) {
		t.Fatal("expected accepted to allow rating/complaint")
	}
	if Annotatable(StatusCompleted) {
		t.Fatal("completed unexpectedly allows rating/complaint; gate is accepted-only")
	}
	if Annotatable(StatusPending) {
		t.Fatal("pending unexpectedly allows rating/complaint")
	}
}

func TestValid(t *testing.T) {
	for _, s := range []string{StatusPending, StatusAccepted, StatusCompleted, StatusCancelled, StatusRejected} {
		if !Valid(s) {
			t.Fatalf("expected %s to be valid", s)
		}
	}
	if Valid("in_progress") {
		t.Fatal("in_progress is not part of the state machine")
	}
}
