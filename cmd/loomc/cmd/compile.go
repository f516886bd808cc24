package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/loomlang/loomc/internal/diag"
	"github.com/loomlang/loomc/pkg/loomc"
)

var outDir string

var compileCmd = &cobra.Command{
	Use:   "compile [file]",
	Short: "Compile a .loom file to client.js, server.js, styles.css and index.html",
	Long: `Compile reads a single .loom source file, runs it through the
lexer, parser, semantic analyzer, type checker, reactive analyzer and
client/server splitter, and writes the resulting bundle to the output
directory.

If loom.config.yaml is present next to the source file, its outDir
(unless overridden by --out) and forceWebSocket settings are used. Its
minify and persistBackend settings are parsed but have no effect on
the output.`,
	Args: cobra.ExactArgs(1),
	RunE: runCompile,
}

func init() {
	rootCmd.AddCommand(compileCmd)
	compileCmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory (default: from loom.config.yaml, else dist)")
}

func runCompile(_ *cobra.Command, args []string) error {
	path := args[0]

	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", path, err)
	}

	compiler, err := loomc.Open(filepath.Dir(path))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	artifacts, diags, err := compiler.CompileSource(string(source), path)
	if err != nil {
		return fmt.Errorf("compile failed: %w", err)
	}

	printDiagnostics(diags, string(source), path)

	if hasErrors(diags) {
		return fmt.Errorf("compilation failed with %d error(s)", countErrors(diags))
	}

	dir := outDir
	if dir == "" {
		dir = compiler.OutDir()
	}
	if err := loomc.WriteArtifacts(dir, artifacts); err != nil {
		return fmt.Errorf("failed to write artifacts to %s: %w", dir, err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Build %s -> %s\n", artifacts.BuildID, dir)
	} else {
		fmt.Printf("Compiled %s -> %s\n", path, dir)
	}
	return nil
}

func printDiagnostics(diags []loomc.Diagnostic, source, file string) {
	for _, d := range diags {
		fmt.Fprint(os.Stderr, diag.Format(d, source, file))
	}
}

func hasErrors(diags []loomc.Diagnostic) bool {
	return countErrors(diags) > 0
}

func countErrors(diags []loomc.Diagnostic) int {
	n := 0
	for _, d := range diags {
		if d.Severity == diag.SeverityError {
			n++
		}
	}
	return n
}
