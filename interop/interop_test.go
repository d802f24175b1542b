package interop

import "testing"

func TestInvokeWithoutCapabilityFails(t *testing.T) {
	result := Invoke(map[string]bool{}, "do_thing")
	if result.Err != "python capability required" {
		t.Fatalf("Err = %q", result.Err)
	}
}

func TestInvokeWithCapabilityReportsStub(t *testing.T) {
	result := Invoke(map[string]bool{CapabilityPythonFFI: true}, "do_thing")
	if result.Err != "python interop not implemented" {
		t.Fatalf("Err = %q", result.Err)
	}
}
