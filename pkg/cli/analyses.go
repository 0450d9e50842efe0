package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/involex/involex/pkg/types"
)

var analysesCmd = &cobra.Command{
	Use:   "analyses",
	Short: "Manage analyzed emails",
}

var analysesLimit int

var analysesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent analyses",
	RunE:  runAnalysesList,
}

var analysesClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the analysis history",
	RunE:  runAnalysesClear,
}

func init() {
	analysesListCmd.Flags().IntVar(&analysesLimit, "limit", 20, "Maximum entries to show")
	analysesCmd.AddCommand(analysesListCmd)
	analysesCmd.AddCommand(analysesClearCmd)
	rootCmd.AddCommand(analysesCmd)
}

type analysesListResponse struct {
	Analyses []types.AnalysisRecord `json:"analyses"`
	Total    int                    `json:"total"`
}

func runAnalysesList(cmd *cobra.Command, args []string) error {
	var resp analysesListResponse
	if err := getClient().Get("/analyses?limit="+strconv.Itoa(analysesLimit), &resp); err != nil {
		exitError(err)
	}

	if PrintJSON(resp) {
		return nil
	}

	if len(resp.Analyses) == 0 {
		PrintNewline()
		PrintInfo("no analyses recorded yet")
		return nil
	}

	table := NewTable("WHEN", "RECIPIENT", "SUBJECT", "SUMMARY")
	for _, record := range resp.Analyses {
		table.AddRow(
			FormatRelativeTime(record.Timestamp),
			record.Draft.RecipientAddress,
			Truncate(record.Draft.Subject, 30),
			Truncate(record.Result.Summary, 50),
		)
	}

	PrintNewline()
	table.Print()
	PrintHint(fmt.Sprintf("%d of %d stored analyses", len(resp.Analyses), resp.Total))
	return nil
}

func runAnalysesClear(cmd *cobra.Command, args []string) error {
	var resp struct {
		Removed int `json:"removed"`
	}
	if err := getClient().Delete("/analyses", &resp); err != nil {
		exitError(err)
	}

	if PrintJSON(resp) {
		return nil
	}
	PrintSuccess(fmt.Sprintf("removed %d analyses", resp.Removed))
	return nil
}
