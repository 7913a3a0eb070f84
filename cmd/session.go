package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"resumectl/internal/app"
)

// sessionCmd represents the session command
var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Open an interactive upload session",
	Long: `Start an interactive session that behaves like the upload modal: open it,
drop or pick a resume, submit it and watch the progress. Closing the modal
during an upload aborts it.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := createContext()
		defer cancel()

		services, err := createServices(ctx, app.ServiceOptions{
			OnVisibilityChange: func(open bool) {
				logger.Debug().Bool("open", open).Msg("modal visibility changed")
			},
		})
		if err != nil {
			return err
		}
		defer services.Close()

		return app.NewSessionApp(services).Run(ctx, os.Stdin)
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
}
