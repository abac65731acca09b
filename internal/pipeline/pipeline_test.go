package pipeline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"solo/internal/events"
	"solo/internal/role"
)

const sampleManifest = `
[module]
name = "mokio"

[[global]]
name = "MOKIO_PL1"
type = "atomic.Uint64"
scope = "process"
imports = ["sync/atomic"]

[[global]]
name = "MOKIO_TL1"
type = "uint64"
scope = "thread"
init = "0"
`

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "solo.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}

func TestGenerateWritesOutput(t *testing.T) {
	path := writeManifest(t, sampleManifest)
	res, err := Generate(context.Background(), &Request{
		ManifestPaths: []string{path},
		ExportFlag:    true,
		CacheDir:      t.TempDir(),
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.Failed() {
		t.Fatalf("run failed: %+v", res.Manifests[0].Err)
	}
	mr := res.Manifests[0]
	if mr.Role != role.Exporting {
		t.Fatalf("role = %v, want export", mr.Role)
	}
	if !mr.Written || mr.Cached {
		t.Fatalf("written=%v cached=%v, want fresh write", mr.Written, mr.Cached)
	}
	wantOut := filepath.Join(filepath.Dir(path), "mokio_globals.go")
	if mr.OutPath != wantOut {
		t.Fatalf("out path = %s, want %s", mr.OutPath, wantOut)
	}
	data, err := os.ReadFile(mr.OutPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !bytes.Contains(data, []byte("MOKIO_PL1__SoloExport")) {
		t.Fatalf("export form missing stable name:\n%s", data)
	}
	if !bytes.Contains(data, []byte("// Code generated by solo. DO NOT EDIT.")) {
		t.Fatalf("generated header missing:\n%s", data)
	}
}

func TestGenerateFlagConflict(t *testing.T) {
	path := writeManifest(t, sampleManifest)
	_, err := Generate(context.Background(), &Request{
		ManifestPaths: []string{path},
		ExportFlag:    true,
		ImportFlag:    true,
		CacheDir:      t.TempDir(),
	})
	if !errors.Is(err, role.ErrConflict) {
		t.Fatalf("Generate err = %v, want ErrConflict", err)
	}
	// Conflicts abort before any output is produced.
	if _, statErr := os.Stat(filepath.Join(filepath.Dir(path), "mokio_globals.go")); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatalf("output written despite flag conflict")
	}
}

func TestGenerateManifestRoleConflict(t *testing.T) {
	path := writeManifest(t, sampleManifest+"\n[build]\nrole = \"export\"\n")
	res, err := Generate(context.Background(), &Request{
		ManifestPaths: []string{path},
		ImportFlag:    true,
		CacheDir:      t.TempDir(),
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !res.Failed() {
		t.Fatalf("conflicting role accepted")
	}
	if !errors.Is(res.Manifests[0].Err, role.ErrConflict) {
		t.Fatalf("manifest err = %v, want ErrConflict", res.Manifests[0].Err)
	}
	if res.Manifests[0].Written {
		t.Fatalf("output written despite role conflict")
	}
}

func TestGenerateUsesCache(t *testing.T) {
	path := writeManifest(t, sampleManifest)
	cacheDir := t.TempDir()
	req := &Request{ManifestPaths: []string{path}, CacheDir: cacheDir}

	first, err := Generate(context.Background(), req)
	if err != nil || first.Failed() {
		t.Fatalf("first run: %v / %+v", err, first.Manifests[0].Err)
	}
	if !first.Manifests[0].Written {
		t.Fatalf("first run did not write")
	}

	second, err := Generate(context.Background(), req)
	if err != nil || second.Failed() {
		t.Fatalf("second run: %v / %+v", err, second.Manifests[0].Err)
	}
	if !second.Manifests[0].Cached || second.Manifests[0].Written {
		t.Fatalf("second run cached=%v written=%v, want cache hit",
			second.Manifests[0].Cached, second.Manifests[0].Written)
	}

	// Editing the output invalidates the entry.
	if err := os.WriteFile(first.Manifests[0].OutPath, []byte("package mokio\n"), 0o644); err != nil {
		t.Fatalf("clobber output: %v", err)
	}
	third, err := Generate(context.Background(), req)
	if err != nil || third.Failed() {
		t.Fatalf("third run: %v", err)
	}
	if !third.Manifests[0].Written {
		t.Fatalf("edited output not regenerated")
	}
}

func TestGenerateNoCache(t *testing.T) {
	path := writeManifest(t, sampleManifest)
	req := &Request{ManifestPaths: []string{path}, NoCache: true}
	for i := 0; i < 2; i++ {
		res, err := Generate(context.Background(), req)
		if err != nil || res.Failed() {
			t.Fatalf("run %d: %v", i, err)
		}
		if !res.Manifests[0].Written {
			t.Fatalf("run %d skipped the write with the cache disabled", i)
		}
	}
}

func TestGenerateRoleSeparatesCacheEntries(t *testing.T) {
	path := writeManifest(t, sampleManifest)
	cacheDir := t.TempDir()

	exp, err := Generate(context.Background(), &Request{
		ManifestPaths: []string{path}, ExportFlag: true, CacheDir: cacheDir,
	})
	if err != nil || exp.Failed() {
		t.Fatalf("export run: %v", err)
	}
	imp, err := Generate(context.Background(), &Request{
		ManifestPaths: []string{path}, ImportFlag: true, CacheDir: cacheDir,
	})
	if err != nil || imp.Failed() {
		t.Fatalf("import run: %v", err)
	}
	if imp.Manifests[0].Cached {
		t.Fatalf("import run hit the export run's cache entry")
	}
	data, err := os.ReadFile(imp.Manifests[0].OutPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !bytes.Contains(data, []byte("rt.MustImportVar")) {
		t.Fatalf("import form not generated:\n%s", data)
	}
}

func TestGenerateEmitsEvents(t *testing.T) {
	path := writeManifest(t, sampleManifest)
	ch := make(chan events.Event, 64)
	res, err := Generate(context.Background(), &Request{
		ManifestPaths: []string{path},
		CacheDir:      t.TempDir(),
		Progress:      events.ChannelSink{Ch: ch},
	})
	if err != nil || res.Failed() {
		t.Fatalf("Generate: %v", err)
	}
	close(ch)

	done := make(map[events.Stage]bool)
	for evt := range ch {
		if evt.Manifest != path {
			t.Fatalf("event for unexpected manifest %q", evt.Manifest)
		}
		if evt.Status == events.StatusDone {
			done[evt.Stage] = true
		}
	}
	for _, stage := range []events.Stage{events.StageLoad, events.StageValidate, events.StageGenerate, events.StageWrite} {
		if !done[stage] {
			t.Fatalf("no done event for stage %s", stage)
		}
	}
}

func TestGenerateIsolatesBrokenManifest(t *testing.T) {
	good := writeManifest(t, sampleManifest)
	missing := filepath.Join(t.TempDir(), "solo.toml")
	res, err := Generate(context.Background(), &Request{
		ManifestPaths: []string{missing, good},
		CacheDir:      t.TempDir(),
		Jobs:          2,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.Manifests[0].Err == nil {
		t.Fatalf("missing manifest did not fail")
	}
	if res.Manifests[1].Err != nil || !res.Manifests[1].Written {
		t.Fatalf("good manifest dragged down by the broken one: %+v", res.Manifests[1])
	}
	if !res.Failed() {
		t.Fatalf("Failed() = false with a broken manifest")
	}
}

func TestGenerateOutOverride(t *testing.T) {
	path := writeManifest(t, sampleManifest)
	out := filepath.Join(t.TempDir(), "custom.go")
	res, err := Generate(context.Background(), &Request{
		ManifestPaths: []string{path},
		OutOverride:   out,
		NoCache:       true,
	})
	if err != nil || res.Failed() {
		t.Fatalf("Generate: %v", err)
	}
	if res.Manifests[0].OutPath != out {
		t.Fatalf("out path = %s, want %s", res.Manifests[0].OutPath, out)
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("override target not written: %v", err)
	}
}
