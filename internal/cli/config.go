package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/object-cueing/internal/config"
	"github.com/rcliao/object-cueing/internal/model"
)

func init() {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML",
		Run:   runConfigShow,
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the defaults",
		Run:   runConfigInit,
	}
	initCmd.Flags().String("path", config.FileName+".yaml", "File to write")
	initCmd.Flags().StringP("mode", "m", string(model.ModeSaccade), "Response mode: saccade or keypress")
	initCmd.Flags().Bool("force", false, "Overwrite an existing file")

	configCmd.AddCommand(showCmd, initCmd)
	RootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig()
	if err != nil {
		exitErr("load config", err)
	}
	if err := cfg.Write(os.Stdout); err != nil {
		exitErr("config show", err)
	}
}

func runConfigInit(cmd *cobra.Command, args []string) {
	path, _ := cmd.Flags().GetString("path")
	m, _ := cmd.Flags().GetString("mode")
	force, _ := cmd.Flags().GetBool("force")

	mode, err := model.ParseResponseMode(m)
	if err != nil {
		exitErr("config init", err)
	}
	cfg, err := config.Default(mode)
	if err != nil {
		exitErr("config init", err)
	}
	if err := cfg.WriteFile(path, force); err != nil {
		exitErr("config init", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"file":%q}`+"\n", path)
}
