// Package pipeline orchestrates manifest loading, role resolution, code
// generation and output writing for one or more manifests.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"

	"solo/internal/diag"
	"solo/internal/events"
	"solo/internal/gen"
	"solo/internal/gencache"
	"solo/internal/manifest"
	"solo/internal/role"
)

// Request describes one generation run.
type Request struct {
	ManifestPaths []string

	// Role flags, resolved against each manifest's [build].role. A conflict
	// between the two flags aborts the run before any manifest is touched.
	ExportFlag bool
	ImportFlag bool

	// Optional overrides applied to every manifest.
	PackageOverride string
	RuntimeOverride string
	OutOverride     string

	// Jobs bounds parallel generation; 0 means one worker per CPU.
	Jobs int

	// NoCache forces regeneration even when the cache says the output is
	// current. CacheDir overrides the default cache location (tests).
	NoCache  bool
	CacheDir string

	MaxDiagnostics int
	Progress       events.Sink
}

// ManifestResult is the outcome for a single manifest.
type ManifestResult struct {
	Path    string
	OutPath string
	Role    role.Role
	Bag     *diag.Bag
	Output  []byte
	Written bool
	Cached  bool
	Err     error
}

// Result aggregates a whole run.
type Result struct {
	Manifests []ManifestResult
}

// Failed reports whether any manifest failed.
func (r Result) Failed() bool {
	for i := range r.Manifests {
		if r.Manifests[i].Err != nil {
			return true
		}
	}
	return false
}

// Generate runs the pipeline. The returned error covers run-level failures
// only; per-manifest failures land in the result so one broken manifest
// does not hide the others.
func Generate(ctx context.Context, req *Request) (Result, error) {
	if req == nil || len(req.ManifestPaths) == 0 {
		return Result{}, fmt.Errorf("no manifests to generate")
	}
	// Role exclusivity is checked before anything else: a build that asks
	// for both directions must fail even with an empty declaration set.
	if _, err := role.Resolve(role.Signals{ExportFlag: req.ExportFlag, ImportFlag: req.ImportFlag}); err != nil {
		return Result{}, err
	}

	sink := req.Progress
	if sink == nil {
		sink = events.NopSink{}
	}

	cache, err := openCache(req)
	if err != nil {
		return Result{}, err
	}

	jobs := req.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}

	results := make([]ManifestResult, len(req.ManifestPaths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, path := range req.ManifestPaths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = ManifestResult{Path: path, Err: err}
				return nil
			}
			results[i] = generateOne(req, cache, sink, path)
			return nil
		})
	}
	_ = g.Wait()
	return Result{Manifests: results}, nil
}

func openCache(req *Request) (*gencache.Cache, error) {
	if req.NoCache {
		return nil, nil
	}
	if req.CacheDir != "" {
		return gencache.OpenAt(req.CacheDir)
	}
	return gencache.Open("solo")
}

func generateOne(req *Request, cache *gencache.Cache, sink events.Sink, path string) ManifestResult {
	res := ManifestResult{Path: path}
	res.Bag = diag.NewBag(req.MaxDiagnostics)

	emit := func(stage events.Stage, status events.Status, note string) {
		sink.OnEvent(events.Event{Manifest: path, Stage: stage, Status: status, Note: note})
	}

	emit(events.StageLoad, events.StatusWorking, "")
	m, err := manifest.Load(path, res.Bag)
	if err != nil {
		emit(events.StageLoad, events.StatusError, err.Error())
		res.Err = err
		return res
	}
	emit(events.StageLoad, events.StatusDone, "")

	emit(events.StageValidate, events.StatusWorking, "")
	if res.Bag.HasErrors() {
		emit(events.StageValidate, events.StatusError, "")
		res.Err = fmt.Errorf("%s: manifest has errors", path)
		return res
	}
	r, err := role.Resolve(role.Signals{
		ExportFlag: req.ExportFlag,
		ImportFlag: req.ImportFlag,
		Manifest:   m.Build.Role,
	})
	if err != nil {
		// Halt this manifest before any declaration is transformed.
		res.Bag.Add(diag.Errorf(diag.RoleConflict, path, "build.role", "%v", err))
		emit(events.StageValidate, events.StatusError, err.Error())
		res.Err = err
		return res
	}
	res.Role = r
	res.OutPath = outPath(req, m)
	emit(events.StageValidate, events.StatusDone, "")

	cacheKey := cacheKeyFor(req, m, r, res.OutPath)
	if cache != nil {
		var entry gencache.Entry
		if ok, _ := cache.Get(cacheKey, &entry); ok && entry.OutPath == res.OutPath && entry.Fresh() {
			emit(events.StageGenerate, events.StatusDone, "cached")
			emit(events.StageWrite, events.StatusDone, "cached")
			res.Cached = true
			return res
		}
	}

	emit(events.StageGenerate, events.StatusWorking, "")
	out, err := gen.EmitFile(m, r, gen.Options{
		PackageName: req.PackageOverride,
		RuntimePath: req.RuntimeOverride,
	})
	if err != nil {
		res.Bag.Add(diag.Errorf(diag.GenFormatFailed, path, "", "%v", err))
		emit(events.StageGenerate, events.StatusError, err.Error())
		res.Err = err
		return res
	}
	res.Output = out
	emit(events.StageGenerate, events.StatusDone, "")

	emit(events.StageWrite, events.StatusWorking, "")
	if err := os.WriteFile(res.OutPath, out, 0o644); err != nil {
		res.Bag.Add(diag.Errorf(diag.GenWriteFailed, path, "", "%v", err))
		emit(events.StageWrite, events.StatusError, err.Error())
		res.Err = err
		return res
	}
	res.Written = true
	emit(events.StageWrite, events.StatusDone, "")

	if cache != nil {
		if entry, err := gencache.NewEntry(m.Digest, r.String(), res.OutPath, out); err == nil {
			_ = cache.Put(cacheKey, entry)
		}
	}
	return res
}

// outPath resolves where generated code lands: the explicit override, or
// the manifest's [build].out relative to the manifest directory.
func outPath(req *Request, m *manifest.Manifest) string {
	if req.OutOverride != "" {
		return req.OutOverride
	}
	out := m.Build.Out
	if out == "" {
		out = "solo_globals.go"
	}
	if filepath.IsAbs(out) {
		return out
	}
	return filepath.Join(m.Root, out)
}

// cacheKeyFor folds every input that shapes the output into the cache key:
// manifest content, role, overrides and destination.
func cacheKeyFor(req *Request, m *manifest.Manifest, r role.Role, out string) manifest.Digest {
	content := manifest.Combine(m.Digest,
		[]byte(req.PackageOverride),
		[]byte(req.RuntimeOverride),
		[]byte(out),
	)
	return gencache.Key(content, r.String())
}
