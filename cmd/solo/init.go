package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"solo/internal/scaffold"
)

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Initialize a solo manifest",
	Long: `Initialize a module by creating a starter solo.toml. If [path] is omitted,
the current directory is used; a non-existing path is created. The module
name defaults to the directory basename.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	initCmd.Flags().String("name", "", "module name (defaults to the directory basename)")
}

func runInit(cmd *cobra.Command, args []string) error {
	name, err := cmd.Flags().GetString("name")
	if err != nil {
		return err
	}

	target := "."
	if len(args) == 1 {
		target = args[0]
	}
	if !filepath.IsAbs(target) {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		target = filepath.Join(wd, target)
	}

	path, err := scaffold.Init(target, name)
	if err != nil {
		return err
	}

	rel := path
	if wd, err := os.Getwd(); err == nil {
		if r, relErr := filepath.Rel(wd, path); relErr == nil {
			rel = r
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Initialized solo module\n  - %s\n", rel)
	return nil
}
