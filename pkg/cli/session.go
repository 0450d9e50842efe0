package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/involex/involex/pkg/types"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage the practice-management session",
}

var sessionShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current session",
	RunE:  runSessionShow,
}

var sessionLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Start the OAuth login flow",
	RunE:  runSessionLogin,
}

var sessionLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the session",
	RunE:  runSessionLogout,
}

var sessionMattersCmd = &cobra.Command{
	Use:   "matters",
	Short: "List available billing matters",
	RunE:  runSessionMatters,
}

var sessionMatterCmd = &cobra.Command{
	Use:   "matter [id]",
	Short: "Select the matter attached to submissions (empty id clears)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSessionMatter,
}

func init() {
	sessionCmd.AddCommand(sessionShowCmd)
	sessionCmd.AddCommand(sessionLoginCmd)
	sessionCmd.AddCommand(sessionLogoutCmd)
	sessionCmd.AddCommand(sessionMattersCmd)
	sessionCmd.AddCommand(sessionMatterCmd)
	rootCmd.AddCommand(sessionCmd)
}

type sessionShowResponse struct {
	Authenticated bool           `json:"authenticated"`
	State         string         `json:"state"`
	Session       *types.Session `json:"session,omitempty"`
}

func runSessionShow(cmd *cobra.Command, args []string) error {
	var resp sessionShowResponse
	if err := getClient().Get("/session", &resp); err != nil {
		exitError(err)
	}

	if PrintJSON(resp) {
		return nil
	}

	PrintNewline()
	if !resp.Authenticated {
		PrintKeyValueStyled("Session", resp.State, SessionStateStyle(resp.State))
		PrintHint("run 'involex session login' to authenticate")
		return nil
	}

	PrintKeyValueStyled("Session", "authenticated", SessionStateStyle("authenticated"))
	PrintKeyValue("Identity", resp.Session.UserIdentity)
	PrintKeyValue("Since", FormatRelativeTime(resp.Session.EstablishedAt))
	if resp.Session.SelectedMatterID != "" {
		PrintKeyValue("Matter", resp.Session.SelectedMatterID)
	}
	PrintNewline()
	return nil
}

func runSessionLogin(cmd *cobra.Command, args []string) error {
	var resp struct {
		State string `json:"state"`
	}
	if err := getClient().Post("/session/login", nil, &resp); err != nil {
		exitError(err)
	}

	if PrintJSON(resp) {
		return nil
	}
	PrintSuccess("auth flow started")
	PrintHint("complete the login in the opened browser tab")
	return nil
}

func runSessionLogout(cmd *cobra.Command, args []string) error {
	if err := getClient().Post("/session/logout", nil, nil); err != nil {
		exitError(err)
	}

	if outputJSON {
		PrintJSON(map[string]string{"state": string(types.SessionLoggedOut)})
		return nil
	}
	PrintSuccess("logged out")
	return nil
}

func runSessionMatters(cmd *cobra.Command, args []string) error {
	var resp struct {
		Matters []types.Matter `json:"matters"`
	}
	if err := getClient().Get("/session/matters", &resp); err != nil {
		exitError(err)
	}

	if PrintJSON(resp) {
		return nil
	}

	if len(resp.Matters) == 0 {
		PrintNewline()
		PrintInfo("no matters available")
		return nil
	}

	table := NewTable("ID", "NUMBER", "DESCRIPTION")
	for _, matter := range resp.Matters {
		table.AddRow(matter.ID, matter.DisplayNumber, Truncate(matter.Description, 60))
	}
	PrintNewline()
	table.Print()
	return nil
}

func runSessionMatter(cmd *cobra.Command, args []string) error {
	matterID := ""
	if len(args) > 0 {
		matterID = args[0]
	}

	body := map[string]string{"matter_id": matterID}
	if err := getClient().Put("/session/matter", body, nil); err != nil {
		exitError(err)
	}

	if outputJSON {
		PrintJSON(map[string]string{"selected_matter_id": matterID})
		return nil
	}
	if matterID == "" {
		PrintSuccess("matter selection cleared")
	} else {
		PrintSuccess(fmt.Sprintf("matter %s selected", matterID))
	}
	return nil
}
