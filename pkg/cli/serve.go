package cli

import (
	"github.com/spf13/cobra"

	"github.com/involex/involex/pkg/agent"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the agent in the foreground",
	Long:  `Run the involex agent until interrupted.`,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := agent.NewAgent()
	if err != nil {
		return err
	}
	return a.Start()
}
