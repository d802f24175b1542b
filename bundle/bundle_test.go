package bundle

import (
	"strings"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	proof := "z3-unsat-core-ref"
	b := New(
		[]byte{0xCA, 0xFE, 0xBA, 0xBE},
		[]string{"python.ffi"},
		[]ImportPin{{Path: "std/math", Hash: HashBytes([]byte("std/math"))}},
		&proof,
	)

	encoded, err := Encode(b)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	decoded, err := Decode(encoded)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if decoded.Manifest.FormatVersion != FormatVersion {
		t.Fatalf("format_version = %d", decoded.Manifest.FormatVersion)
	}
	if decoded.Manifest.BytecodeHash != b.Manifest.BytecodeHash {
		t.Fatalf("bytecode_hash mismatch")
	}
	if len(decoded.Manifest.Capabilities) != 1 || decoded.Manifest.Capabilities[0] != "python.ffi" {
		t.Fatalf("capabilities = %v", decoded.Manifest.Capabilities)
	}
	if len(decoded.Manifest.Imports) != 1 || decoded.Manifest.Imports[0].Path != "std/math" {
		t.Fatalf("imports = %v", decoded.Manifest.Imports)
	}
	if decoded.Manifest.Proof == nil || *decoded.Manifest.Proof != proof {
		t.Fatalf("proof = %v", decoded.Manifest.Proof)
	}
	if string(decoded.Bytecode) != string(b.Bytecode) {
		t.Fatalf("bytecode mismatch")
	}

	if err := Verify(decoded); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestVerifyDetectsTamperedBytecode(t *testing.T) {
	b := New([]byte{1, 2, 3}, nil, nil, nil)
	b.Bytecode[0] = 0xFF

	if err := Verify(b); err == nil {
		t.Fatalf("expected hash mismatch error")
	}
}

func TestDecodeNewerKnownFormatVersionSucceeds(t *testing.T) {
	// format_version 2 is within MaxKnownFormatVersion: bundle info
	// must still be able to read it, per the bundle codec round-trip
	// scenario's "format_version = 2 at bundle info succeeds" case.
	doc := `{"manifest": {"format_version": 2, "bytecode_hash": "x", "capabilities": [], "imports": []}, "bytecode": ""}`

	b, err := Decode([]byte(doc))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if b.Manifest.FormatVersion != 2 {
		t.Fatalf("format_version = %d", b.Manifest.FormatVersion)
	}
}

func TestDecodeUnsupportedFormatVersionIsDiagnosticNotCrash(t *testing.T) {
	future := `{"manifest": {"format_version": 99, "bytecode_hash": "x", "capabilities": [], "imports": []}, "bytecode": ""}`

	_, err := Decode([]byte(future))
	if err == nil {
		t.Fatalf("expected error for unsupported format_version")
	}
	if !strings.Contains(err.Error(), "format_version 99") {
		t.Fatalf("err = %v", err)
	}
	if _, ok := err.(*DecodeError); !ok {
		t.Fatalf("err type = %T, want *DecodeError", err)
	}
}

func TestDecodeMalformedJSON(t *testing.T) {
	_, err := Decode([]byte("not json"))
	if err == nil {
		t.Fatalf("expected error for malformed bundle")
	}
}

func TestProofOmittedWhenNil(t *testing.T) {
	b := New([]byte{1}, nil, nil, nil)
	encoded, err := Encode(b)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if strings.Contains(string(encoded), "\"proof\":null") {
		t.Fatalf("proof should be omitted, got %s", encoded)
	}
}
