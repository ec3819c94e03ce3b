package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"lspcli/internal/config"
	"lspcli/internal/render"
)

var symbolMarker string

var symbolCmd = &cobra.Command{
	Use:     "symbol <locate-string>",
	Aliases: []string{"sym"},
	Short:   "Show the symbol at a location",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		ctx := cmd.Context()

		path, err := locateFile(args[0])
		if err != nil {
			return err
		}

		body := map[string]string{"locate": args[0]}
		if symbolMarker != "" {
			body["marker"] = symbolMarker
		}

		data, err := callCapability(ctx, cfg, path, "symbol", body)
		if err != nil {
			return err
		}
		fmt.Print(render.Symbol(json.RawMessage(data), markdownFlag))
		return nil
	},
}

func init() {
	symbolCmd.Flags().StringVar(&symbolMarker, "marker", "", "position marker used inside @find segments (default <|>)")
}
