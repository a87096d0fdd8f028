// Command manifests scans file trees for package-manager manifests and
// prints the extracted package metadata as JSON.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/git-pkgs/manifests"
	_ "github.com/git-pkgs/manifests/all"
	"github.com/git-pkgs/manifests/scan"
)

var (
	verbose     bool
	concurrency int

	log zerolog.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "manifests",
	Short: "Extract package metadata from package-manager manifest files",
	Long: `manifests walks a file tree, recognizes package-manager manifest files
(currently OCaml opam files), and prints the normalized package metadata
as JSON: name, version, URLs, checksums, license, description, authors,
maintainers, and dependencies with package URLs.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := zerolog.InfoLevel
		if verbose {
			level = zerolog.DebugLevel
		}
		log = zerolog.New(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		}).Level(level).With().Timestamp().Logger()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(ecosystemsCmd)
}

var scanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "Scan a directory tree for manifests",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := "."
		if len(args) == 1 {
			root = args[0]
		}

		scanner := scan.New(scan.WithConcurrency(concurrency))

		started := time.Now()
		results, err := scanner.Scan(cmd.Context(), root)
		if err != nil {
			return fmt.Errorf("scanning %s: %w", root, err)
		}

		report := make([]scan.Result, 0, len(results))
		for _, res := range results {
			if res.Err != nil {
				log.Warn().Str("path", res.Path).Err(res.Err).Msg("manifest skipped")
				continue
			}
			log.Debug().Str("path", res.Path).Str("ecosystem", res.Ecosystem).Msg("manifest parsed")
			report = append(report, res)
		}

		log.Info().
			Int("manifests", len(report)).
			Dur("elapsed", time.Since(started)).
			Msg("scan complete")

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	},
}

var parseCmd = &cobra.Command{
	Use:   "parse FILE",
	Short: "Parse a single manifest file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pkg, err := manifests.ParseFile(args[0])
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(pkg)
	},
}

var ecosystemsCmd = &cobra.Command{
	Use:   "ecosystems",
	Short: "List supported ecosystems",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(strings.Join(manifests.SupportedEcosystems(), "\n"))
	},
}

func init() {
	scanCmd.Flags().IntVarP(&concurrency, "concurrency", "j", 0, "Number of manifests parsed in parallel (0 = default)")
}
