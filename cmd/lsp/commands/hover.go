package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"lspcli/internal/config"
	"lspcli/internal/render"
)

var hoverMarker string

var hoverCmd = &cobra.Command{
	Use:   "hover <locate-string>",
	Short: "Show hover information for a symbol",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		ctx := cmd.Context()

		path, err := locateFile(args[0])
		if err != nil {
			return err
		}

		body := map[string]string{"locate": args[0]}
		if hoverMarker != "" {
			body["marker"] = hoverMarker
		}

		data, err := callCapability(ctx, cfg, path, "hover", body)
		if err != nil {
			return err
		}
		fmt.Print(render.Hover(json.RawMessage(data), markdownFlag))
		return nil
	},
}

func init() {
	hoverCmd.Flags().StringVar(&hoverMarker, "marker", "", "position marker used inside @find segments (default <|>)")
}
