package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"solo/internal/diag"
	"solo/internal/gen"
	"solo/internal/manifest"
	"solo/internal/observ"
	"solo/internal/pipeline"
	"solo/internal/role"
)

const noManifestMessage = "no solo.toml found here or in any parent directory (run `solo init` to create one)"

var generateCmd = &cobra.Command{
	Use:   "generate [flags] [manifest...]",
	Short: "Generate declaration code from manifests",
	Long: `Generate the Go source for every declaration in the given manifests.
Without arguments the nearest solo.toml is discovered by upward search.

The role defaults to local: each module owns private storage. --export emits
the publishing form, --import the resolving form. The two flags contradict
each other and a manifest's [build].role may restate but never oppose them.`,
	RunE: generateExecution,
}

func init() {
	generateCmd.Flags().Bool("export", false, "emit the exporting form (module owns and publishes storage)")
	generateCmd.Flags().Bool("import", false, "emit the importing form (module resolves storage from the exporter)")
	generateCmd.Flags().String("out", "", "output file (overrides [build].out; single manifest only)")
	generateCmd.Flags().String("package", "", "generated package name (overrides [module].package)")
	generateCmd.Flags().String("runtime", "", "runtime import path (overrides [module].runtime)")
	generateCmd.Flags().Int("jobs", 0, "parallel generation jobs (0 = one per CPU)")
	generateCmd.Flags().String("ui", "auto", "progress interface (auto|on|off)")
	generateCmd.Flags().Bool("no-cache", false, "regenerate even when the cache is current")
	generateCmd.Flags().Bool("stdout", false, "print generated code instead of writing it (single manifest only)")
}

func generateExecution(cmd *cobra.Command, args []string) error {
	exportFlag, err := cmd.Flags().GetBool("export")
	if err != nil {
		return err
	}
	importFlag, err := cmd.Flags().GetBool("import")
	if err != nil {
		return err
	}
	outValue, err := cmd.Flags().GetString("out")
	if err != nil {
		return err
	}
	pkgValue, err := cmd.Flags().GetString("package")
	if err != nil {
		return err
	}
	runtimeValue, err := cmd.Flags().GetString("runtime")
	if err != nil {
		return err
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return err
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return err
	}
	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return err
	}
	toStdout, err := cmd.Flags().GetBool("stdout")
	if err != nil {
		return err
	}

	// The role conflict is fatal before any manifest is read.
	if exportFlag && importFlag {
		return fmt.Errorf("--export and --import are mutually exclusive: %w", role.ErrConflict)
	}

	uiModeValue, err := readUIMode(uiValue)
	if err != nil {
		return err
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return err
	}
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return err
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return err
	}

	manifests := args
	if len(manifests) == 0 {
		path, found, findErr := manifest.Find(".")
		if findErr != nil {
			return findErr
		}
		if !found {
			return errors.New(noManifestMessage)
		}
		manifests = []string{path}
	}
	if len(manifests) > 1 {
		if outValue != "" {
			return fmt.Errorf("--out only applies to a single manifest")
		}
		if toStdout {
			return fmt.Errorf("--stdout only applies to a single manifest")
		}
	}

	if toStdout {
		return generateToStdout(cmd, manifests[0], exportFlag, importFlag, pkgValue, runtimeValue, maxDiagnostics)
	}

	req := &pipeline.Request{
		ManifestPaths:   manifests,
		ExportFlag:      exportFlag,
		ImportFlag:      importFlag,
		PackageOverride: pkgValue,
		RuntimeOverride: runtimeValue,
		OutOverride:     outValue,
		Jobs:            jobs,
		NoCache:         noCache,
		MaxDiagnostics:  maxDiagnostics,
	}

	tm := observ.NewTimer()
	phase := tm.Begin("generate")

	var res pipeline.Result
	if shouldUseTUI(uiModeValue) && !quiet {
		res, err = runGenerateWithUI(cmd.Context(), "solo generate", manifests, req)
	} else {
		res, err = pipeline.Generate(cmd.Context(), req)
	}
	tm.End(phase, fmt.Sprintf("%d manifest(s)", len(manifests)))

	printManifestDiagnostics(res)
	if showTimings {
		fmt.Fprint(os.Stdout, tm.Summary())
	}
	if err != nil {
		return err
	}
	if !quiet {
		printGenerateSummary(res)
	}
	if res.Failed() {
		return fmt.Errorf("generation failed")
	}
	return nil
}

// generateToStdout is the single-manifest preview path: same load, role
// resolution and emission as the pipeline, minus cache and file writes.
func generateToStdout(cmd *cobra.Command, path string, exportFlag, importFlag bool, pkg, rtPath string, maxDiagnostics int) error {
	bag := diag.NewBag(maxDiagnostics)
	m, err := manifest.Load(path, bag)
	if err != nil {
		printBag(bag)
		return err
	}
	if bag.HasErrors() {
		printBag(bag)
		return fmt.Errorf("%s: manifest has errors", path)
	}
	r, err := role.Resolve(role.Signals{ExportFlag: exportFlag, ImportFlag: importFlag, Manifest: m.Build.Role})
	if err != nil {
		return err
	}
	out, err := gen.EmitFile(m, r, gen.Options{PackageName: pkg, RuntimePath: rtPath})
	if err != nil {
		return err
	}
	printBag(bag)
	_, err = cmd.OutOrStdout().Write(out)
	return err
}

func printManifestDiagnostics(res pipeline.Result) {
	for _, mr := range res.Manifests {
		if mr.Bag == nil || mr.Bag.Len() == 0 {
			continue
		}
		fmt.Fprint(os.Stderr, diag.FormatGolden(mr.Bag.Items(), true))
	}
}

func printBag(bag *diag.Bag) {
	if bag == nil || bag.Len() == 0 {
		return
	}
	fmt.Fprint(os.Stderr, diag.FormatGolden(bag.Items(), true))
}

func printGenerateSummary(res pipeline.Result) {
	for _, mr := range res.Manifests {
		switch {
		case mr.Err != nil:
			fmt.Fprintf(os.Stdout, "failed    %s\n", mr.Path)
		case mr.Cached:
			fmt.Fprintf(os.Stdout, "cached    %s\n", mr.OutPath)
		default:
			fmt.Fprintf(os.Stdout, "generated %s\n", mr.OutPath)
		}
	}
}
