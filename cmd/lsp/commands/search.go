package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"lspcli/internal/config"
	"lspcli/internal/render"
)

var searchWorkspace string

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search workspace symbols by name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		ctx := cmd.Context()

		workspace := searchWorkspace
		if workspace == "" {
			workspace = "."
		}

		data, err := callCapability(ctx, cfg, workspace, "search", map[string]string{"query": args[0]})
		if err != nil {
			return err
		}
		fmt.Print(render.Search(json.RawMessage(data), markdownFlag))
		return nil
	},
}

func init() {
	searchCmd.Flags().StringVar(&searchWorkspace, "workspace", "", "project path to search (defaults to the current directory)")
}
