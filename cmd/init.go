package cmd

import (
	"fmt"

	"github.com/nikogura/portfolio-assistant/pkg/config"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default settings file",
	Long: `Create a settings file with defaults at the --config path
(default $HOME/.portfolio-assistant/settings.json).

Edit it to set the provider, API key, portfolio location and resume store.
Every setting can also come from the environment or a .env file.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) (err error) {
	err = config.InitConfig(getConfigFile())
	if err != nil {
		return err
	}

	path := getConfigFile()
	if path == "" {
		path, _ = config.DefaultPath()
	}

	fmt.Printf("Settings written to %s\n", path)
	return err
}
