package symbol

import "testing"

func TestInternStability(t *testing.T) {
	tbl := NewTable()
	a := tbl.Intern("foo")
	b := tbl.Intern("foo")
	if a != b {
		t.Fatalf("expected repeated intern of same name to return same id, got %v and %v", a, b)
	}
	c := tbl.Intern("bar")
	if c == a {
		t.Fatalf("expected distinct names to get distinct ids")
	}
}

func TestInternNormalizesCanonicalEquivalents(t *testing.T) {
	tbl := NewTable()
	// "é" as a single precomposed codepoint vs "e" + combining acute accent.
	precomposed := tbl.Intern("café")
	decomposed := tbl.Intern("café")
	if precomposed != decomposed {
		t.Fatalf("expected canonically equivalent names to intern to the same id")
	}
}

func TestSentinelsReserved(t *testing.T) {
	tbl := NewTable()
	first := tbl.Intern("x")
	if first.IsEmpty() || first.IsDeleted() {
		t.Fatalf("expected first real interned id to avoid sentinel values, got %v", first)
	}
	if !Empty.IsEmpty() || Empty.IsValid() {
		t.Fatalf("Empty sentinel misbehaves")
	}
	if !Deleted.IsDeleted() || Deleted.IsValid() {
		t.Fatalf("Deleted sentinel misbehaves")
	}
}

func TestLookupMissing(t *testing.T) {
	tbl := NewTable()
	if _, ok := tbl.Lookup("never-interned"); ok {
		t.Fatalf("expected lookup of never-interned name to fail")
	}
}

func TestIsIndexLike(t *testing.T) {
	cases := map[string]bool{
		"0":   true,
		"1":   true,
		"42":  true,
		"01":  false,
		"":    false,
		"abc": false,
		"-1":  false,
	}
	for name, want := range cases {
		if got := IsIndexLike(name); got != want {
			t.Errorf("IsIndexLike(%q) = %v, want %v", name, got, want)
		}
	}
}
