package cli

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/nsynca/nsynca/internal/config"
	"github.com/nsynca/nsynca/internal/models"
)

var configureCmd = &cobra.Command{
	Use:     "configure",
	Aliases: []string{"config"},
	Short:   "Configure Nsynca interactively",
	Long: `Configure Nsynca interactively.

This allows you to set:
  - The Notion integration token (stored in the .env file)
  - Fallback database IDs
  - Request rate and log directory
  - Anonymous usage telemetry

Press Enter to keep the current value for any setting.`,
	Args: cobra.NoArgs,
	RunE: runConfigure,
}

func runConfigure(cmd *cobra.Command, args []string) error {
	settings, err := config.LoadSettings()
	if err != nil {
		return err
	}
	if err := config.LoadDotEnv(flagEnvFile); err != nil {
		return err
	}

	reader := bufio.NewReader(os.Stdin)
	changed := false

	// Token
	current := "not set"
	if os.Getenv(config.EnvNotionAPIKey) != "" {
		current = "set"
	}
	token, err := promptSecret(reader, fmt.Sprintf("Notion integration token [%s]: ", current))
	if err != nil {
		return err
	}
	if token != "" {
		if err := config.SetDotEnvValue(flagEnvFile, config.EnvNotionAPIKey, token); err != nil {
			return fmt.Errorf("failed to save token: %w", err)
		}
		fmt.Printf("  %s %s\n", styleSuccess.Render("Token saved to"), flagEnvFile)
	}

	// Databases
	fmt.Println("\nFallback database IDs (environment variables take precedence):")
	changed = promptString(reader, "  Deployments", &settings.Databases.Deployments) || changed
	changed = promptString(reader, "  Tasks", &settings.Databases.Tasks) || changed
	changed = promptString(reader, "  Services", &settings.Databases.Services) || changed

	// Notion
	fmt.Println("\nNotion API:")
	rps := strconv.FormatFloat(settings.Notion.RequestsPerSecond, 'f', -1, 64)
	if promptString(reader, "  Requests per second", &rps) {
		v, err := strconv.ParseFloat(rps, 64)
		if err != nil || v <= 0 {
			return fmt.Errorf("invalid requests per second: %s", rps)
		}
		settings.Notion.RequestsPerSecond = v
		changed = true
	}

	// Logs
	fmt.Println("\nRun history:")
	changed = promptString(reader, "  Log directory (empty for default)", &settings.Logs.Dir) || changed

	// Telemetry
	fmt.Println("\nTelemetry:")
	enabled := promptYesNoWithCurrent(reader, "  Send anonymous run statistics?", settings.Telemetry.Enabled)
	if enabled != settings.Telemetry.Enabled {
		settings.Telemetry.Enabled = enabled
		changed = true
	}
	if enabled {
		changed = promptString(reader, "  PostHog project API key", &settings.Telemetry.APIKey) || changed
	}

	if !changed {
		fmt.Println("\nNo settings changed.")
		return nil
	}
	if err := config.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	path, _ := config.GlobalSettingsFile()
	fmt.Printf("\n%s %s\n", styleSuccess.Render("Settings saved to"), path)
	printMissing(settings)
	return nil
}

// printMissing warns about configuration an `nsynca` run would reject.
func printMissing(settings *models.Settings) {
	cfg := config.Resolve(settings)
	if err := cfg.Validate(models.AllSelection()); err != nil {
		fmt.Printf("%s %v\n", styleWarning.Render("Warning:"), err)
	}
}

// promptString prompts for a value showing the current one. It reports
// whether the value changed.
func promptString(reader *bufio.Reader, prompt string, value *string) bool {
	fmt.Printf("%s [%s]: ", prompt, *value)
	response, _ := reader.ReadString('\n')
	response = strings.TrimSpace(response)
	if response == "" || response == *value {
		return false
	}
	*value = response
	return true
}

// promptSecret reads a value without echo when stdin is a terminal.
func promptSecret(reader *bufio.Reader, prompt string) (string, error) {
	fmt.Print(prompt)
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		response, _ := reader.ReadString('\n')
		return strings.TrimSpace(response), nil
	}
	b, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}

// promptYesNoWithCurrent prompts for a yes/no value showing the current value.
func promptYesNoWithCurrent(reader *bufio.Reader, prompt string, current bool) bool {
	currentStr := "no"
	if current {
		currentStr = "yes"
	}

	fmt.Printf("%s [%s]: ", prompt, currentStr)
	response, _ := reader.ReadString('\n')
	response = strings.TrimSpace(strings.ToLower(response))

	if response == "" {
		return current
	}
	return response == "y" || response == "yes"
}
