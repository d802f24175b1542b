package source

import "testing"

func TestFormatReindentsNestedBlock(t *testing.T) {
	input := "fn f() {\nreturn 1;\n}\n"
	want := "fn f() {\n  return 1;\n}\n"

	got, err := Format([]byte(input))
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if string(got) != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestFormatIsIdempotent(t *testing.T) {
	input := "fn f() {\n  if x {\n    return 1;\n  }\n}"

	once, err := Format([]byte(input))
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	twice, err := Format(once)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if string(once) != string(twice) {
		t.Fatalf("not idempotent:\nonce: %q\ntwice: %q", once, twice)
	}
}

func TestFormatIgnoresBracesInsideStringLiterals(t *testing.T) {
	input := "fn f() {\nlet s: String = \"{not a brace}\";\n}"

	got, err := Format([]byte(input))
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	want := "fn f() {\n  let s: String = \"{not a brace}\";\n}"
	if string(got) != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
