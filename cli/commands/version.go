package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/magicorm/cli/internal/ui"
	"github.com/satishbabariya/magicorm/cli/internal/update"
	"github.com/satishbabariya/magicorm/cli/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	RunE:  runVersion,
}

var versionCheck bool

func init() {
	versionCmd.Flags().BoolVar(&versionCheck, "check", false, "Check for a newer release")

	rootCmd.AddCommand(versionCmd)
}

func runVersion(cmd *cobra.Command, args []string) error {
	info := version.Get()
	fmt.Fprintln(cmd.OutOrStdout(), info.FullString())
	if !versionCheck {
		return nil
	}

	res, err := update.Check(cmd.Context(), info.Version, update.GitHub(update.ReleaseURL))
	if err != nil {
		return err
	}
	if res.Available() {
		ui.PrintWarning("A new version is available: %s (current %s)", res.Latest, res.Current)
		ui.PrintInfo("Update with: go install github.com/satishbabariya/magicorm/cli@latest")
		return nil
	}
	ui.PrintSuccess("You are running the latest version")
	return nil
}
