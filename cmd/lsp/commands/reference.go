package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"lspcli/internal/config"
	"lspcli/internal/render"
)

var (
	referenceMarker             string
	referenceImplementation     bool
	referenceIncludeDeclaration bool
)

var referenceCmd = &cobra.Command{
	Use:     "reference <locate-string>",
	Aliases: []string{"ref"},
	Short:   "List references to a symbol (or its implementations with --impl)",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		ctx := cmd.Context()

		path, err := locateFile(args[0])
		if err != nil {
			return err
		}

		body := map[string]any{
			"locate":              args[0],
			"implementation":      referenceImplementation,
			"include_declaration": referenceIncludeDeclaration,
		}
		if referenceMarker != "" {
			body["marker"] = referenceMarker
		}

		data, err := callCapability(ctx, cfg, path, "reference", body)
		if err != nil {
			return err
		}
		fmt.Print(render.Locations(json.RawMessage(data), markdownFlag))
		return nil
	},
}

func init() {
	referenceCmd.Flags().StringVar(&referenceMarker, "marker", "", "position marker used inside @find segments (default <|>)")
	referenceCmd.Flags().BoolVar(&referenceImplementation, "impl", false, "list implementations instead of references")
	referenceCmd.Flags().BoolVar(&referenceIncludeDeclaration, "include-declaration", false, "include the declaration site itself")
}
