package core

import "testing"

func assertEqual(t *testing.T, a, b string) {
	t.Helper()
	if a != b {
		t.Fatalf("assertEqual: expected %q == %q", a, b)
	}
}

func assertTrue(t *testing.T, see bool) {
	t.Helper()
	if !see {
		t.Errorf("assertTrue: expected true, saw false")
	}
}

func TestCroakRecordsMessage(t *testing.T) {
	s := NewSession("default", true)
	s.Croak("disk %s", "full")
	msgs := s.PendingMessages("error")
	if len(msgs) != 1 {
		t.Fatalf("expected 1 pending message, got %d", len(msgs))
	}
	assertEqual(t, msgs[0], "disk full")
	if more := s.PendingMessages("error"); len(more) != 0 {
		t.Fatalf("expected drain to clear the message list, got %v", more)
	}
}

func TestAbortFlag(t *testing.T) {
	s := NewSession("default", true)
	assertTrue(t, !s.GetAbort())
	s.SetAbort(true)
	assertTrue(t, s.GetAbort())
	s.SetAbort(false)
	assertTrue(t, !s.GetAbort())
}

func TestCatchSwallowsMatchingClass(t *testing.T) {
	caught := func() (e *Exception) {
		defer func() { e = Catch(ClassCommand, recover()) }()
		panic(Throw(ClassCommand, "bad token %q", "$x"))
	}()
	if caught == nil {
		t.Fatal("expected a caught exception")
	}
	assertEqual(t, caught.Class, ClassCommand)
	assertEqual(t, caught.Error(), `bad token "$x"`)
}

func TestCatchRepanicsOtherClass(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected re-panic for mismatched class")
		}
	}()
	defer func() {
		_ = Catch(ClassCommand, recover())
	}()
	panic("not an Exception at all")
}
