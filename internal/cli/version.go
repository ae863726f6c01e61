package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/nsynca/nsynca/internal/buildinfo"
	"github.com/nsynca/nsynca/internal/release"
)

var flagVersionCheck bool

var versionCmd = &cobra.Command{
	Use:     "version",
	Aliases: []string{"v"},
	Short:   "Show version information",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("%s %s\n", styleBrand.Render("Nsynca"), styleVersion.Render(buildinfo.Version))
		fmt.Printf("  %s %s\n", styleLabel.Render("Commit: "), buildinfo.CommitHash)
		fmt.Printf("  %s %s\n", styleLabel.Render("Built:  "), buildinfo.BuildDate)
		fmt.Printf("  %s %s/%s\n", styleLabel.Render("OS/Arch:"), runtime.GOOS, runtime.GOARCH)
		fmt.Printf("  %s %s\n", styleLabel.Render("Go:     "), runtime.Version())

		if !flagVersionCheck {
			return nil
		}
		return checkRelease(cmd)
	},
}

func init() {
	versionCmd.Flags().BoolVar(&flagVersionCheck, "check", false, "check GitHub for a newer release")
}

func checkRelease(cmd *cobra.Command) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	checker := &release.Checker{
		Repository: cfg.Settings.Release.Repository,
		Token:      cfg.GitHubToken,
	}
	result, err := checker.Check(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to check for updates: %w", err)
	}

	fmt.Println()
	if !result.Available {
		fmt.Println(styleSuccess.Render("Up to date."))
		return nil
	}
	fmt.Printf("%s v%s → v%s\n", styleUpdate.Render("Update available:"), result.CurrentVersion, result.LatestVersion)
	if result.ReleaseURL != "" {
		fmt.Printf("  %s\n", styleHint.Render(result.ReleaseURL))
	}
	return nil
}
