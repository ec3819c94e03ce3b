package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"lspcli/internal/config"
	"lspcli/internal/render"
)

var definitionMarker string

var definitionCmd = &cobra.Command{
	Use:     "definition <locate-string>",
	Aliases: []string{"def"},
	Short:   "Jump to a symbol's definition",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		ctx := cmd.Context()

		path, err := locateFile(args[0])
		if err != nil {
			return err
		}

		body := map[string]string{"locate": args[0]}
		if definitionMarker != "" {
			body["marker"] = definitionMarker
		}

		data, err := callCapability(ctx, cfg, path, "definition", body)
		if err != nil {
			return err
		}
		fmt.Print(render.Locations(json.RawMessage(data), markdownFlag))
		return nil
	},
}

func init() {
	definitionCmd.Flags().StringVar(&definitionMarker, "marker", "", "position marker used inside @find segments (default <|>)")
}
