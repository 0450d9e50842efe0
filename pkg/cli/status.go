package cli

import (
	"strconv"

	"github.com/spf13/cobra"
)

type StatusInfo struct {
	StorageMode    string `json:"storage_mode"`
	GmailEnabled   bool   `json:"gmail_enabled"`
	OutlookEnabled bool   `json:"outlook_enabled"`
	SessionState   string `json:"session_state"`
	UserIdentity   string `json:"user_identity,omitempty"`
	StoredAnalyses int    `json:"stored_analyses"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show agent status",
	Long:  `Show the current status of the involex agent.`,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	var status StatusInfo
	if err := getClient().Get("/status", &status); err != nil {
		exitError(err)
	}

	if PrintJSON(status) {
		return nil
	}

	PrintNewline()
	PrintKeyValue("Storage", status.StorageMode)
	PrintKeyValue("Gmail", enabledString(status.GmailEnabled))
	PrintKeyValue("Outlook", enabledString(status.OutlookEnabled))
	PrintKeyValueStyled("Session", status.SessionState, SessionStateStyle(status.SessionState))
	if status.UserIdentity != "" {
		PrintKeyValue("Identity", status.UserIdentity)
	}
	PrintKeyValue("Analyses", BoldStyle.Render(strconv.Itoa(status.StoredAnalyses)))
	PrintNewline()
	return nil
}

func enabledString(on bool) string {
	if on {
		return SuccessStyle.Render("enabled")
	}
	return DimStyle.Render("disabled")
}
