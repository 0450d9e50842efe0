package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// Build information (injected at compile time via ldflags)
var (
	Version = "dev"
)

const defaultAgentURL = "http://127.0.0.1:8113"

var (
	agentURL   string
	jsonOutput bool
)

// Custom help template with styled output
var helpTemplate = `{{with .Long}}{{. | trim}}

{{end}}{{if .HasAvailableSubCommands}}` + `{{.CommandPath}}` + ` ` + `<command>` + `

{{end}}{{if .HasAvailableSubCommands}}Commands:
{{range .Commands}}{{if .IsAvailableCommand}}  {{rpad .Name .NamePadding }}  {{.Short}}
{{end}}{{end}}{{end}}{{if .HasAvailableLocalFlags}}
Flags:
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasAvailableInheritedFlags}}

Global Flags:
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasExample}}

Examples:
{{.Example}}{{end}}
`

var rootCmd = &cobra.Command{
	Use:   "involex",
	Short: "Email analysis agent for legal billing",
	Long: lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true).Render("involex") + ` - Email analysis agent for legal billing

Watches webmail compose surfaces, summarizes outgoing emails through the
configured summarization API, and tags them with practice-management
matters for billing.`,
	Version: Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		SetJSONOutput(jsonOutput)
	},
}

func init() {
	rootCmd.SetHelpTemplate(helpTemplate)
	rootCmd.SetVersionTemplate(fmt.Sprintf("  %s version %s\n", BrandStyle.Render("involex"), Version))

	rootCmd.PersistentFlags().StringVar(&agentURL, "agent", getEnv("INVOLEX_AGENT", defaultAgentURL), "Agent HTTP address")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getClient() *Client {
	return NewClient(agentURL)
}

func exitError(err error) {
	PrintError(err)
	os.Exit(1)
}
