// Package bundle implements the thin envelope spec.md §6 wraps around a
// bytecode chunk: a JSON manifest (format version, bytecode hash,
// granted capabilities, pinned import hashes, optional proof blob)
// together with the chunk's encoded bytes. Grounded on
// original_source/include/curlee/bundle/bundle.h.
package bundle

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// FormatVersion is the manifest format version New always writes.
const FormatVersion = 1

// MaxKnownFormatVersion is the highest manifest format_version Decode
// accepts. A manifest field added in version 2 and read by an older
// build is simply ignored by encoding/json, so versions up to this one
// decode without error; anything higher is surfaced as a diagnostic.
const MaxKnownFormatVersion = 2

// ImportPin pins a single import to the hash of the bytecode it
// resolved to, so a bundle can be verified without re-resolving
// imports from source.
type ImportPin struct {
	Path string `json:"path"`
	Hash string `json:"hash"`
}

// Manifest is the bundle's metadata record.
type Manifest struct {
	FormatVersion int         `json:"format_version"`
	BytecodeHash  string      `json:"bytecode_hash"`
	Capabilities  []string    `json:"capabilities"`
	Imports       []ImportPin `json:"imports"`
	Proof         *string     `json:"proof,omitempty"`
}

// Bundle pairs a manifest with the bytecode it describes.
type Bundle struct {
	Manifest Manifest
	Bytecode []byte
}

// HashBytes returns the hex-encoded SHA-256 digest of b, the same
// digest New and Verify use for bytecode_hash.
func HashBytes(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// New builds a Bundle whose manifest's bytecode_hash matches bytecode,
// at the current FormatVersion.
func New(bytecode []byte, capabilities []string, imports []ImportPin, proof *string) *Bundle {
	return &Bundle{
		Manifest: Manifest{
			FormatVersion: FormatVersion,
			BytecodeHash:  HashBytes(bytecode),
			Capabilities:  capabilities,
			Imports:       imports,
			Proof:         proof,
		},
		Bytecode: bytecode,
	}
}

// wireFormat is the on-disk envelope: one JSON document holding the
// manifest and the bytecode as two fields, the bytecode base64-encoded
// by encoding/json, so no delimiter or length prefix is needed.
type wireFormat struct {
	Manifest json.RawMessage `json:"manifest"`
	Bytecode []byte          `json:"bytecode"`
}

// Encode serializes b as a single JSON document: {"manifest": ...,
// "bytecode": base64 bytes}. encoding/json's []byte support already
// base64-encodes the bytecode field, so the envelope needs no manual
// framing.
func Encode(b *Bundle) ([]byte, error) {
	manifestJSON, err := json.Marshal(b.Manifest)
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	return json.Marshal(wireFormat{Manifest: manifestJSON, Bytecode: b.Bytecode})
}

// DecodeError reports a bundle that could not be parsed or whose
// manifest format is not one this build understands. Per spec.md §6,
// a future manifest version must surface as a diagnostic, not a
// crash — so every failure is a plain error value a caller is free to
// report and keep going, never a panic.
type DecodeError struct {
	Message string
}

func (e *DecodeError) Error() string {
	return e.Message
}

// Decode parses a bundle previously produced by Encode. It does not
// verify bytecode_hash against the carried bytecode — call Verify for
// that.
func Decode(data []byte) (*Bundle, error) {
	var wire wireFormat
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, &DecodeError{Message: fmt.Sprintf("malformed bundle: %s", err)}
	}

	var manifest Manifest
	if err := json.Unmarshal(wire.Manifest, &manifest); err != nil {
		return nil, &DecodeError{Message: fmt.Sprintf("malformed manifest: %s", err)}
	}

	if manifest.FormatVersion < 1 || manifest.FormatVersion > MaxKnownFormatVersion {
		return nil, &DecodeError{
			Message: fmt.Sprintf("unsupported bundle format_version %d (max known is %d)", manifest.FormatVersion, MaxKnownFormatVersion),
		}
	}

	return &Bundle{Manifest: manifest, Bytecode: wire.Bytecode}, nil
}

// Verify checks that b's recorded bytecode_hash matches its carried
// bytecode bytes, catching a bundle whose payload was truncated or
// tampered with after it was written.
func Verify(b *Bundle) error {
	want := b.Manifest.BytecodeHash
	got := HashBytes(b.Bytecode)
	if want != got {
		return fmt.Errorf("bytecode_hash mismatch: manifest says %s, computed %s", want, got)
	}
	return nil
}
