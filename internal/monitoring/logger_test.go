package monitoring

import "testing"

func TestSetLogger(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	called := false
	SetLogger(func(format string, v ...interface{}) {
		called = true
	})
	Logf("phase %s done", "searching")
	if !called {
		t.Error("custom logger was not called")
	}

	// nil installs a no-op; the previous logger must no longer fire
	called = false
	SetLogger(nil)
	Logf("should go nowhere")
	if called {
		t.Error("no-op logger triggered the previous callback")
	}
}

func TestLogfDefault(t *testing.T) {
	if Logf == nil {
		t.Fatal("Logf should not be nil by default")
	}
}
