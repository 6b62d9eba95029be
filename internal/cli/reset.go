package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/OlderMutt/Surface-Minder/internal/housekeeping"
)

var resetYes bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Back up the database, baselines and scan artifacts, then start clean",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !resetYes && !confirm("This archives the database and all scan artifacts and resets the workspace. Continue? [y/N] ") {
			fmt.Println("Aborted")
			return nil
		}

		archiver := housekeeping.NewArchiver(cfg)
		backupDir, err := archiver.Reset(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Workspace reset, backup stored in %s\n", backupDir)
		return nil
	},
}

func confirm(prompt string) bool {
	fmt.Print(prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func init() {
	resetCmd.Flags().BoolVar(&resetYes, "yes", false, "Skip the confirmation prompt")
	rootCmd.AddCommand(resetCmd)
}
