package diag

import "testing"

func TestFormatGolden(t *testing.T) {
	diags := []Diagnostic{
		Warningf(DeclBadScope, "b/solo.toml", "global[0].scope", "unknown scope %q", "fiber"),
		Errorf(DeclDuplicateName, "a/solo.toml", "global[1].name", "duplicate declaration MOKIO_PL1").
			WithNote("global[0].name", "first declared here"),
		Errorf(ManMissingSection, "a/solo.toml", "", "missing [module]"),
	}

	expected := "error MAN1003 a/solo.toml missing [module]\n" +
		"error DEC2003 a/solo.toml global[1].name duplicate declaration MOKIO_PL1\n" +
		"note DEC2003 a/solo.toml global[0].name first declared here\n" +
		"warning DEC2004 b/solo.toml global[0].scope unknown scope \"fiber\""

	if got := FormatGolden(diags, true); got != expected {
		t.Fatalf("unexpected golden rendering:\nwant:\n%s\n\ngot:\n%s", expected, got)
	}
}

func TestFormatGoldenEmpty(t *testing.T) {
	if got := FormatGolden(nil, true); got != "" {
		t.Fatalf("empty input rendered %q", got)
	}
}

func TestBagLimitAndErrors(t *testing.T) {
	bag := NewBag(2)
	if !bag.Add(Infof(ManInfo, "m.toml", "", "one")) {
		t.Fatalf("first Add rejected")
	}
	if !bag.Add(Errorf(ManBadTOML, "m.toml", "", "two")) {
		t.Fatalf("second Add rejected")
	}
	if bag.Add(Errorf(ManBadTOML, "m.toml", "", "three")) {
		t.Fatalf("Add exceeded the limit")
	}
	if !bag.HasErrors() {
		t.Fatalf("bag with an error reports none")
	}
	if bag.Len() != 2 {
		t.Fatalf("Len = %d, want 2", bag.Len())
	}
}

func TestBagDedup(t *testing.T) {
	bag := NewBag(10)
	for i := 0; i < 3; i++ {
		bag.Add(Errorf(DeclBadName, "m.toml", "global[0].name", "bad name"))
	}
	bag.Dedup()
	if bag.Len() != 1 {
		t.Fatalf("Dedup kept %d items, want 1", bag.Len())
	}
}

func TestBagMergeGrows(t *testing.T) {
	a := NewBag(1)
	a.Add(Errorf(ManBadTOML, "a.toml", "", "x"))
	b := NewBag(1)
	b.Add(Errorf(ManBadTOML, "b.toml", "", "y"))

	a.Merge(b)
	if a.Len() != 2 {
		t.Fatalf("merged Len = %d, want 2", a.Len())
	}
	a.Sort()
	if a.Items()[0].Path != "a.toml" {
		t.Fatalf("sort order wrong: %q first", a.Items()[0].Path)
	}
}

func TestCodeID(t *testing.T) {
	tests := []struct {
		code Code
		want string
	}{
		{ManMissingSection, "MAN1003"},
		{DeclDuplicateName, "DEC2003"},
		{RoleConflict, "ROL3001"},
		{GenFormatFailed, "GEN4001"},
		{UnknownCode, "UNK0000"},
	}
	for _, tt := range tests {
		if got := tt.code.ID(); got != tt.want {
			t.Errorf("Code(%d).ID() = %q, want %q", tt.code, got, tt.want)
		}
	}
}
