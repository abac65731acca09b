package gen

import (
	"go/parser"
	"go/token"
	"regexp"
	"strings"
	"testing"

	"solo/internal/decl"
	"solo/internal/manifest"
	"solo/internal/role"
)

func testManifest(decls ...decl.Decl) *manifest.Manifest {
	return &manifest.Manifest{
		Path: "solo.toml",
		Module: manifest.ModuleConfig{
			Name:    "mokio",
			Package: "mokio",
			Runtime: "solo/rt",
		},
		Decls: decls,
	}
}

var (
	pl1 = decl.Decl{
		Name:    "MOKIO_PL1",
		Type:    "atomic.Uint64",
		Scope:   decl.ScopeProcess,
		Imports: []string{"sync/atomic"},
	}
	tl1 = decl.Decl{
		Name:  "MOKIO_TL1",
		Type:  "uint64",
		Scope: decl.ScopeThread,
		Init:  "0",
	}
	dangerous = decl.Decl{
		Name:    "DANGEROUS",
		Type:    "int",
		Scope:   decl.ScopeProcess,
		Mutable: true,
	}
)

func emit(t *testing.T, m *manifest.Manifest, r role.Role) string {
	t.Helper()
	out, err := EmitFile(m, r, Options{})
	if err != nil {
		t.Fatalf("EmitFile(%s): %v\n%s", r, err, out)
	}
	return string(out)
}

func mustContain(t *testing.T, src string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(src, want) {
			t.Errorf("generated code lacks %q:\n%s", want, src)
		}
	}
}

func TestEmitLocalProcess(t *testing.T) {
	src := emit(t, testManifest(pl1), role.Local)
	mustContain(t, src,
		"var soloStorage_MOKIO_PL1 atomic.Uint64",
		"var MOKIO_PL1 = &soloStorage_MOKIO_PL1",
	)
	if strings.Contains(src, "__SoloExport") {
		t.Fatalf("local role leaked a stable symbol:\n%s", src)
	}
	if strings.Contains(src, "solo/rt") {
		t.Fatalf("plain local process state should not need the runtime:\n%s", src)
	}
}

func TestEmitExportProcess(t *testing.T) {
	src := emit(t, testManifest(pl1), role.Exporting)
	mustContain(t, src,
		"var MOKIO_PL1__SoloExport atomic.Uint64",
		"var MOKIO_PL1 = &MOKIO_PL1__SoloExport",
		`rt.SetRoleTag("E")`,
	)
}

func TestEmitImportProcess(t *testing.T) {
	src := emit(t, testManifest(pl1), role.Importing)
	mustContain(t, src,
		`var MOKIO_PL1 = rt.MustImportVar[atomic.Uint64]("MOKIO_PL1__SoloExport").Deref()`,
		`rt.SetRoleTag("I")`,
	)
	if strings.Contains(src, "soloStorage_") {
		t.Fatalf("importing role declared storage:\n%s", src)
	}
}

func TestEmitImportMutableSkipsWrapper(t *testing.T) {
	src := emit(t, testManifest(dangerous), role.Importing)
	mustContain(t, src,
		`var DANGEROUS = rt.MustResolveVar[int]("DANGEROUS__SoloExport")`,
	)
	if strings.Contains(src, "MustImportVar") {
		t.Fatalf("mutable import went through the immutable wrapper:\n%s", src)
	}
}

func TestEmitThreadForms(t *testing.T) {
	local := emit(t, testManifest(tl1), role.Local)
	mustContain(t, local,
		"var MOKIO_TL1 rt.Key[uint64] = rt.NewLocalKey(func() uint64 { return 0 })",
	)

	export := emit(t, testManifest(tl1), role.Exporting)
	mustContain(t, export,
		"var soloKey_MOKIO_TL1 = rt.NewLocalKey(func() uint64 { return 0 })",
		"var MOKIO_TL1__SoloExport *rt.LocalKey[uint64] = soloKey_MOKIO_TL1",
		"var MOKIO_TL1 rt.Key[uint64] = soloKey_MOKIO_TL1",
	)

	imported := emit(t, testManifest(tl1), role.Importing)
	mustContain(t, imported,
		`var MOKIO_TL1 rt.Key[uint64] = rt.MustImportKey[uint64]("MOKIO_TL1__SoloExport")`,
	)
}

func TestEmitThreadZeroInit(t *testing.T) {
	zero := tl1
	zero.Init = ""
	src := emit(t, testManifest(zero), role.Local)
	mustContain(t, src, "rt.NewLocalKey[uint64](nil)")
}

func TestEveryFormParses(t *testing.T) {
	m := testManifest(pl1, tl1, dangerous)
	for _, r := range []role.Role{role.Local, role.Exporting, role.Importing} {
		src := emit(t, m, r)
		fset := token.NewFileSet()
		if _, err := parser.ParseFile(fset, "gen.go", src, 0); err != nil {
			t.Errorf("role %s produced unparsable code: %v\n%s", r, err, src)
		}
		if !strings.HasPrefix(src, Header) {
			t.Errorf("role %s output missing the generated-code header", r)
		}
	}
}

var stableNameRe = regexp.MustCompile(`\w+__SoloExport`)

func TestStableNamesAgreeAcrossRoles(t *testing.T) {
	m := testManifest(pl1, tl1, dangerous)
	exportNames := stableNameRe.FindAllString(emit(t, m, role.Exporting), -1)
	importNames := stableNameRe.FindAllString(emit(t, m, role.Importing), -1)

	seen := make(map[string]bool)
	for _, n := range exportNames {
		seen[n] = true
	}
	for _, n := range importNames {
		if !seen[n] {
			t.Errorf("importing build resolves %s, which the exporting build never publishes", n)
		}
	}
	for _, want := range []string{"MOKIO_PL1__SoloExport", "MOKIO_TL1__SoloExport", "DANGEROUS__SoloExport"} {
		if !seen[want] {
			t.Errorf("exporting build never publishes %s", want)
		}
	}
}

func TestEmitDocComment(t *testing.T) {
	d := pl1
	d.Doc = "request counter shared by every loaded module"
	src := emit(t, testManifest(d), role.Local)
	mustContain(t, src, "// MOKIO_PL1 request counter shared by every loaded module")
}

func TestEmitOptionsOverride(t *testing.T) {
	src, err := EmitFile(testManifest(tl1), role.Local, Options{
		PackageName: "main",
		RuntimePath: "example.com/solo/rt",
	})
	if err != nil {
		t.Fatalf("EmitFile: %v", err)
	}
	mustContain(t, string(src),
		"package main",
		`rt "example.com/solo/rt"`,
	)
}

func TestImportRoleGolden(t *testing.T) {
	src := emit(t, testManifest(pl1, tl1), role.Importing)
	expected := `// Code generated by solo. DO NOT EDIT.
//
// Module mokio, role import.

package mokio

import (
	rt "solo/rt"
	"sync/atomic"
)

func init() { rt.SetRoleTag("I") }

var MOKIO_PL1 = rt.MustImportVar[atomic.Uint64]("MOKIO_PL1__SoloExport").Deref()

var MOKIO_TL1 rt.Key[uint64] = rt.MustImportKey[uint64]("MOKIO_TL1__SoloExport")
`
	if src != expected {
		t.Fatalf("import-role output drifted:\nwant:\n%s\ngot:\n%s", expected, src)
	}
}

func TestEmitRuntimePathInDeclImports(t *testing.T) {
	d := decl.Decl{
		Name:    "MOKIO_KEYS",
		Type:    "map[string]*rt.LocalKey[int]",
		Scope:   decl.ScopeProcess,
		Imports: []string{"solo/rt"},
	}
	src := emit(t, testManifest(d), role.Exporting)
	if got := strings.Count(src, `"solo/rt"`); got != 1 {
		t.Fatalf("runtime path imported %d times, want 1:\n%s", got, src)
	}
	mustContain(t, src, `rt "solo/rt"`)
}
