package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"lspcli/internal/config"
	"lspcli/internal/render"
)

var outlineAll bool

var outlineCmd = &cobra.Command{
	Use:   "outline <file>",
	Short: "Show a file's symbol tree",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		ctx := cmd.Context()

		data, err := callCapability(ctx, cfg, args[0], "outline", map[string]string{"file": args[0]})
		if err != nil {
			return err
		}
		fmt.Print(render.Outline(json.RawMessage(data), outlineAll, markdownFlag))
		return nil
	},
}

func init() {
	outlineCmd.Flags().BoolVar(&outlineAll, "all", false, "include every symbol kind, not just structural ones")
}
