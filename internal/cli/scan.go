package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/OlderMutt/Surface-Minder/internal/adapters/scanner"
)

var (
	scanKind    string
	scanTargets []string
	scanIPsFile string
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run an nmap scan against one or more targets",
	RunE: func(cmd *cobra.Command, args []string) error {
		targets := append([]string{}, scanTargets...)
		if scanIPsFile != "" {
			fromFile, err := readTargetsFile(scanIPsFile)
			if err != nil {
				return err
			}
			targets = append(targets, fromFile...)
		}
		if len(targets) == 0 {
			return fmt.Errorf("no targets given: use --target or --ips-file")
		}

		runner := scanner.NewNmapRunner(cfg.Nmap, cfg.ScansDir)
		var failed int
		for _, target := range targets {
			path, err := runner.Run(cmd.Context(), scanKind, target)
			if err != nil {
				failed++
				fmt.Fprintf(os.Stderr, "scan of %s failed: %v\n", target, err)
				continue
			}
			fmt.Printf("Artifact written: %s\n", path)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d scan(s) failed", failed, len(targets))
		}
		return nil
	},
}

// readTargetsFile reads one target per line, skipping blanks and comments.
func readTargetsFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open targets file: %w", err)
	}
	defer f.Close()

	var targets []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		targets = append(targets, line)
	}
	return targets, sc.Err()
}

func init() {
	scanCmd.Flags().StringVar(&scanKind, "kind", "tcp", "Scan kind (tcp or udp)")
	scanCmd.Flags().StringSliceVarP(&scanTargets, "target", "t", nil, "Target IP or hostname (repeatable)")
	scanCmd.Flags().StringVar(&scanIPsFile, "ips-file", "", "File with one target per line")
	rootCmd.AddCommand(scanCmd)
}
