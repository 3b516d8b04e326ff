package token

import "testing"

func TestKeyWordsLookup(t *testing.T) {
	cases := map[string]TokenType{
		"fn":     FUNC,
		"struct": STRUCT,
		"import": IMPORT,
		"for":    FOR,
		"step":   STEP,
	}
	for word, want := range cases {
		got, ok := KeyWords[word]
		if !ok {
			t.Fatalf("expected %q to be a keyword", word)
		}
		if got != want {
			t.Errorf("KeyWords[%q] = %v, want %v", word, got, want)
		}
	}
}

func TestNewLiteralCarriesPayload(t *testing.T) {
	tok := NewLiteral(INT, "42", int64(42), "in.mayo", 3, 7)
	if tok.Literal != int64(42) {
		t.Errorf("Literal = %v, want 42", tok.Literal)
	}
	if tok.Length != 2 {
		t.Errorf("Length = %d, want 2", tok.Length)
	}
}

func TestStringFormatsPosition(t *testing.T) {
	tok := New(PLUS, "+", "in.mayo", 1, 2)
	got := tok.String()
	want := `Token{+ "+" @1:2}`
	if got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
