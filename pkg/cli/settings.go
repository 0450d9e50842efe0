package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/involex/involex/pkg/types"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "View and change agent settings",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective settings",
	RunE:  runSettingsShow,
}

var settingsTestCmd = &cobra.Command{
	Use:   "test [url]",
	Short: "Test connectivity to the summarization endpoint",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSettingsTest,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsTestCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, args []string) error {
	var settings types.Settings
	if err := getClient().Get("/settings", &settings); err != nil {
		exitError(err)
	}

	if PrintJSON(settings) {
		return nil
	}

	PrintNewline()
	PrintKeyValue("API URL", settings.APIURL)
	PrintKeyValue("Gmail", enabledString(settings.EnableGmail))
	PrintKeyValue("Outlook", enabledString(settings.EnableOutlook))
	PrintKeyValue("Min length", strconv.Itoa(settings.MinEmailLength))
	PrintKeyValue("Notify", enabledString(settings.ShowNotifications))
	PrintKeyValue("Notify secs", strconv.Itoa(settings.NotificationDuration))
	PrintKeyValue("Max stored", strconv.Itoa(settings.MaxStoredAnalyses))
	PrintNewline()
	return nil
}

func runSettingsTest(cmd *cobra.Command, args []string) error {
	body := map[string]string{}
	if len(args) > 0 {
		body["api_url"] = args[0]
	}

	var resp struct {
		Reachable bool   `json:"reachable"`
		Status    int    `json:"status"`
		LatencyMS int64  `json:"latency_ms"`
		Error     string `json:"error"`
	}
	if err := getClient().Post("/settings/test-connection", body, &resp); err != nil {
		exitError(err)
	}

	if PrintJSON(resp) {
		return nil
	}

	if resp.Reachable {
		PrintSuccess(fmt.Sprintf("endpoint reachable (HTTP %d, %dms)", resp.Status, resp.LatencyMS))
	} else {
		PrintError(fmt.Errorf("endpoint unreachable: %s", resp.Error))
	}
	return nil
}
