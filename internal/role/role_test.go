package role

import (
	"errors"
	"testing"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		signals Signals
		want    Role
		wantErr bool
	}{
		{"default is local", Signals{}, Local, false},
		{"manifest local", Signals{Manifest: "local"}, Local, false},
		{"manifest export", Signals{Manifest: "export"}, Exporting, false},
		{"manifest import", Signals{Manifest: "import"}, Importing, false},
		{"export flag", Signals{ExportFlag: true}, Exporting, false},
		{"import flag", Signals{ImportFlag: true}, Importing, false},
		{"flag repeats manifest", Signals{ExportFlag: true, Manifest: "export"}, Exporting, false},
		{"both flags", Signals{ExportFlag: true, ImportFlag: true}, Local, true},
		{"export flag vs import manifest", Signals{ExportFlag: true, Manifest: "import"}, Local, true},
		{"import flag vs export manifest", Signals{ImportFlag: true, Manifest: "export"}, Local, true},
		{"unknown manifest role", Signals{Manifest: "sideways"}, Local, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.signals)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Resolve(%+v) succeeded, want error", tt.signals)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve(%+v) failed: %v", tt.signals, err)
			}
			if got != tt.want {
				t.Fatalf("Resolve(%+v) = %v, want %v", tt.signals, got, tt.want)
			}
		})
	}
}

func TestConflictIsErrConflict(t *testing.T) {
	_, err := Resolve(Signals{ExportFlag: true, ImportFlag: true})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("both-flags error is not ErrConflict: %v", err)
	}
}

func TestTags(t *testing.T) {
	if Local.Tag() != "N" || Exporting.Tag() != "E" || Importing.Tag() != "I" {
		t.Fatalf("unexpected role tags: %s %s %s", Local.Tag(), Exporting.Tag(), Importing.Tag())
	}
}
