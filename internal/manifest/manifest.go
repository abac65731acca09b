// Package manifest loads and validates solo.toml, the declarative list of
// global-state declarations a module shares across dynamic loading.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"golang.org/x/text/unicode/norm"

	"solo/internal/decl"
	"solo/internal/diag"
)

// FileName is the manifest file the CLI discovers by upward search.
const FileName = "solo.toml"

const defaultRuntimePath = "solo/rt"

// Manifest is a loaded, validated solo.toml.
type Manifest struct {
	Path   string
	Root   string
	Module ModuleConfig
	Build  BuildConfig
	Decls  []decl.Decl
	// Digest hashes the raw manifest bytes; the generation cache keys on it.
	Digest Digest
}

type ModuleConfig struct {
	// Name identifies the module in diagnostics and default output names.
	Name string
	// Package is the Go package generated code belongs to. Exporting
	// modules built as plugins need "main": plugin.Lookup only sees the
	// main package. Defaults to Name.
	Package string
	// Runtime is the import path of the solo runtime package.
	Runtime string
}

type BuildConfig struct {
	// Role is the optional default role: "local", "export" or "import".
	// CLI flags may restate it but never contradict it.
	Role string
	// Out is the output file name, relative to the manifest directory.
	Out string
}

type tomlConfig struct {
	Module tomlModule   `toml:"module"`
	Build  tomlBuild    `toml:"build"`
	Global []tomlGlobal `toml:"global"`
}

type tomlModule struct {
	Name    string `toml:"name"`
	Package string `toml:"package"`
	Runtime string `toml:"runtime"`
}

type tomlBuild struct {
	Role string `toml:"role"`
	Out  string `toml:"out"`
}

type tomlGlobal struct {
	Name    string   `toml:"name"`
	Type    string   `toml:"type"`
	Scope   string   `toml:"scope"`
	Mutable bool     `toml:"mutable"`
	Init    string   `toml:"init"`
	Imports []string `toml:"imports"`
	Doc     string   `toml:"doc"`
}

// Find walks upward from startDir looking for solo.toml, like the build tool
// looks for its project file.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load reads and validates a manifest. IO and TOML failures come back as the
// error; validation findings land in bag, and the caller must treat
// bag.HasErrors() as a failed load.
func Load(path string, bag *diag.Bag) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		bag.Add(diag.Errorf(diag.ManNotFound, path, "", "cannot read manifest: %v", err))
		return nil, fmt.Errorf("%s: cannot read manifest: %w", path, err)
	}

	var cfg tomlConfig
	meta, err := toml.Decode(string(data), &cfg)
	if err != nil {
		bag.Add(diag.Errorf(diag.ManBadTOML, path, "", "failed to parse TOML: %v", err))
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}

	m := &Manifest{
		Path:   path,
		Root:   filepath.Dir(path),
		Digest: DigestBytes(data),
	}
	validateModule(m, &cfg, meta, path, bag)
	validateBuild(m, &cfg, path, bag)
	validateGlobals(m, &cfg, path, bag)
	return m, nil
}

func validateModule(m *Manifest, cfg *tomlConfig, meta toml.MetaData, path string, bag *diag.Bag) {
	if !meta.IsDefined("module") {
		bag.Add(diag.Errorf(diag.ManMissingSection, path, "", "missing [module]"))
		return
	}
	name := strings.TrimSpace(cfg.Module.Name)
	if !meta.IsDefined("module", "name") || name == "" {
		bag.Add(diag.Errorf(diag.ManMissingKey, path, "module.name", "missing [module].name"))
	} else if !decl.IsValidName(name) {
		bag.Add(diag.Errorf(diag.ManBadIdent, path, "module.name", "%q is not a valid identifier", name))
	}
	m.Module.Name = name

	pkg := strings.TrimSpace(cfg.Module.Package)
	if pkg == "" {
		pkg = name
	}
	if pkg != "" && !decl.IsValidName(pkg) {
		bag.Add(diag.Errorf(diag.ManBadIdent, path, "module.package", "%q is not a valid package name", pkg))
	}
	m.Module.Package = pkg

	rt := strings.TrimSpace(cfg.Module.Runtime)
	if rt == "" {
		rt = defaultRuntimePath
	}
	if !isValidImportPath(rt) {
		bag.Add(diag.Errorf(diag.ManBadIdent, path, "module.runtime", "%q is not a valid import path", rt))
	}
	m.Module.Runtime = rt
}

func validateBuild(m *Manifest, cfg *tomlConfig, path string, bag *diag.Bag) {
	role := strings.TrimSpace(cfg.Build.Role)
	switch role {
	case "", "local", "export", "import":
	default:
		bag.Add(diag.Errorf(diag.RoleUnknown, path, "build.role",
			"unknown role %q (must be local, export or import)", role))
	}
	m.Build.Role = role

	out := strings.TrimSpace(cfg.Build.Out)
	if out == "" && m.Module.Name != "" {
		out = strings.ToLower(m.Module.Name) + "_globals.go"
	}
	m.Build.Out = out
}

func validateGlobals(m *Manifest, cfg *tomlConfig, path string, bag *diag.Bag) {
	if len(cfg.Global) == 0 {
		// An empty declaration set is legal; role checks still apply.
		bag.Add(diag.Warningf(diag.ManNoGlobals, path, "", "manifest declares no globals"))
		return
	}

	firstAt := make(map[string]int, len(cfg.Global))
	for i, g := range cfg.Global {
		key := func(field string) string { return fmt.Sprintf("global[%d].%s", i, field) }

		// Visually identical names must produce byte-identical stable
		// symbol names, so normalize before validating.
		name := norm.NFC.String(strings.TrimSpace(g.Name))
		switch {
		case name == "":
			bag.Add(diag.Errorf(diag.DeclBadName, path, key("name"), "declaration has no name"))
			continue
		case !decl.IsValidName(name):
			bag.Add(diag.Errorf(diag.DeclBadName, path, key("name"), "%q is not a valid Go identifier", name))
			continue
		case !decl.IsExportedName(name):
			bag.Add(diag.Errorf(diag.DeclNameNotExported, path, key("name"),
				"%q must be exported: the loader only resolves exported symbols", name))
			continue
		}
		if prev, dup := firstAt[name]; dup {
			bag.Add(diag.Errorf(diag.DeclDuplicateName, path, key("name"), "duplicate declaration %s", name).
				WithNote(fmt.Sprintf("global[%d].name", prev), "first declared here"))
			continue
		}
		firstAt[name] = i

		typ := strings.TrimSpace(g.Type)
		if typ == "" {
			bag.Add(diag.Errorf(diag.DeclMissingType, path, key("type"), "declaration %s has no type", name))
			continue
		}

		scope, ok := decl.ParseScope(strings.TrimSpace(g.Scope))
		if !ok {
			bag.Add(diag.Errorf(diag.DeclBadScope, path, key("scope"),
				"unknown scope %q (must be process or thread)", g.Scope))
			continue
		}

		imports := make([]string, 0, len(g.Imports))
		badImport := false
		for j, imp := range g.Imports {
			imp = strings.TrimSpace(imp)
			if !isValidImportPath(imp) {
				bag.Add(diag.Errorf(diag.DeclBadImportPath, path, fmt.Sprintf("global[%d].imports[%d]", i, j),
					"%q is not a valid import path", imp))
				badImport = true
				continue
			}
			imports = append(imports, imp)
		}
		if badImport {
			continue
		}

		m.Decls = append(m.Decls, decl.Decl{
			Name:    name,
			Type:    typ,
			Scope:   scope,
			Mutable: g.Mutable,
			Init:    strings.TrimSpace(g.Init),
			Imports: imports,
			Doc:     strings.TrimSpace(g.Doc),
		})
	}
}

func isValidImportPath(path string) bool {
	if path == "" {
		return false
	}
	for _, r := range path {
		switch {
		case r == ' ' || r == '"' || r == '\\' || r == '\n' || r == '\t':
			return false
		}
	}
	return !strings.HasPrefix(path, "/") && !strings.HasSuffix(path, "/")
}
