package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"resumectl/internal/app"
)

type SubmitFlags struct {
	FilePath string
	Drop     bool
}

var submitFlags SubmitFlags

// submitCmd represents the submit command
var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Upload a resume and wait for the analysis result",
	Long: `Upload a single resume to the submission service. This will:

1. Validate the file type (PDF, DOC, DOCX, TXT) and size (5 MB at most)
2. Upload it with a progress bar
3. Print the stored resume id, or the reason the upload failed

Use --file to specify the resume. With --drop the value is treated as text
dragged into the terminal (quoted or escaped paths and file:// URLs).`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return validateSubmitFlags(&submitFlags)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.Debug().Str("file", submitFlags.FilePath).Msg("starting submit")
		return runSubmitApp(&submitFlags)
	},
}

func init() {
	rootCmd.AddCommand(submitCmd)

	// Define flags with struct binding
	submitCmd.Flags().StringVarP(&submitFlags.FilePath, "file", "f", "", "Path to the resume to submit (required)")
	submitCmd.Flags().BoolVar(&submitFlags.Drop, "drop", false, "Treat --file as dropped terminal text")

	// Mark required flags
	submitCmd.MarkFlagRequired("file")

	// Bind flags to viper for environment variable support
	viper.BindPFlag("submit.file", submitCmd.Flags().Lookup("file"))
}

// validateSubmitFlags validates the submit command flags
func validateSubmitFlags(flags *SubmitFlags) error {
	if flags.FilePath == "" {
		return fmt.Errorf("file path is required")
	}
	return nil
}

// runSubmitApp creates and runs the submit application
func runSubmitApp(flags *SubmitFlags) error {
	ctx, cancel := createContext()
	defer cancel()

	services, err := createServices(ctx, app.ServiceOptions{})
	if err != nil {
		return err
	}
	defer services.Close()

	opts := &app.SubmitOptions{
		FilePath: flags.FilePath,
		Drop:     flags.Drop,
	}
	return app.NewSubmitApp(services).Run(ctx, opts)
}
