package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"solo/internal/decl"
	"solo/internal/diag"
	"solo/internal/manifest"
	"solo/internal/role"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [manifest]",
	Short: "Show a manifest's declarations and their stable symbol names",
	Args:  cobra.MaximumNArgs(1),
	RunE:  inspectExecution,
}

func init() {
	inspectCmd.Flags().Bool("forms", false, "show the generated form of each declaration per role")
}

var (
	inspectHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	inspectNameStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	inspectDimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func inspectExecution(cmd *cobra.Command, args []string) error {
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return err
	}

	var path string
	if len(args) == 1 {
		path = args[0]
	} else {
		found := false
		path, found, err = manifest.Find(".")
		if err != nil {
			return err
		}
		if !found {
			return errors.New(noManifestMessage)
		}
	}

	bag := diag.NewBag(maxDiagnostics)
	m, err := manifest.Load(path, bag)
	if err != nil {
		printBag(bag)
		return err
	}
	printBag(bag)
	if bag.HasErrors() {
		return fmt.Errorf("%s: manifest has errors", path)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, inspectHeaderStyle.Render(fmt.Sprintf("module %s", m.Module.Name)))
	fmt.Fprintf(out, "  manifest: %s\n", m.Path)
	fmt.Fprintf(out, "  package:  %s\n", m.Module.Package)
	fmt.Fprintf(out, "  runtime:  %s\n", m.Module.Runtime)
	defaultRole := m.Build.Role
	if defaultRole == "" {
		defaultRole = role.Local.String()
	}
	fmt.Fprintf(out, "  role:     %s\n", defaultRole)
	fmt.Fprintf(out, "  out:      %s\n\n", m.Build.Out)

	if len(m.Decls) == 0 {
		fmt.Fprintln(out, inspectDimStyle.Render("  (no declarations)"))
		return nil
	}

	fmt.Fprintf(out, "  %-20s %-8s %-8s %-24s %s\n", "NAME", "SCOPE", "MUT", "TYPE", "SYMBOL")
	for _, d := range m.Decls {
		mut := ""
		if d.Mutable {
			mut = "mut"
		}
		fmt.Fprintf(out, "  %-20s %-8s %-8s %-24s %s\n",
			inspectNameStyle.Render(fmt.Sprintf("%-20s", d.Name)),
			d.Scope, mut, d.Type,
			inspectDimStyle.Render(decl.StableName(d.Name)))
	}

	showForms, err := cmd.Flags().GetBool("forms")
	if err != nil {
		return err
	}
	if showForms {
		fmt.Fprintln(out)
		for _, d := range m.Decls {
			printDeclForms(out, d)
		}
	}
	return nil
}

// printDeclForms sketches the reference each role generates for a
// declaration. The real output comes from `solo generate`; this is the
// at-a-glance version.
func printDeclForms(out io.Writer, d decl.Decl) {
	sym := decl.StableName(d.Name)
	fmt.Fprintf(out, "  %s\n", inspectNameStyle.Render(d.Name))
	if d.Scope == decl.ScopeThread {
		fmt.Fprintf(out, "    local:  var %s rt.Key[%s]\n", d.Name, d.Type)
		fmt.Fprintf(out, "    export: var %s *rt.LocalKey[%s] (published)\n", sym, d.Type)
		fmt.Fprintf(out, "    import: rt.MustImportKey[%s](%q)\n", d.Type, sym)
		return
	}
	fmt.Fprintf(out, "    local:  var %s = &<owned %s storage>\n", d.Name, d.Type)
	fmt.Fprintf(out, "    export: var %s %s (published); %s points at it\n", sym, d.Type, d.Name)
	if d.Mutable {
		fmt.Fprintf(out, "    import: rt.MustResolveVar[%s](%q)\n", d.Type, sym)
		return
	}
	fmt.Fprintf(out, "    import: rt.MustImportVar[%s](%q).Deref()\n", d.Type, sym)
}
