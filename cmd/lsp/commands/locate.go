package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"lspcli/internal/config"
	"lspcli/internal/render"
)

var locateMarker string

var locateCmd = &cobra.Command{
	Use:   "locate <locate-string>",
	Short: "Resolve a locate-string to a concrete file+position",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		ctx := cmd.Context()

		path, err := locateFile(args[0])
		if err != nil {
			return err
		}

		body := map[string]string{"locate": args[0]}
		if locateMarker != "" {
			body["marker"] = locateMarker
		}

		data, err := callCapability(ctx, cfg, path, "locate", body)
		if err != nil {
			return err
		}
		fmt.Print(render.Locate(json.RawMessage(data), markdownFlag))
		return nil
	},
}

func init() {
	locateCmd.Flags().StringVar(&locateMarker, "marker", "", "position marker used inside @find segments (default <|>)")
}
