package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"lspcli/internal/config"
	"lspcli/internal/lsperr"
	"lspcli/internal/render"
)

var (
	renameMarker  string
	renameExecute bool
	renameID      string
)

// renameCmd implements spec §6/§8's preview-then-execute rename flow: a bare
// `lsp rename <new-name> <locate>` previews and prints an id; `--execute
// --id <id>` against the same locate-string applies that preview's edits.
var renameCmd = &cobra.Command{
	Use:   "rename <new-name> <locate-string>",
	Short: "Preview or apply a symbol rename",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		ctx := cmd.Context()
		newName, locateStr := args[0], args[1]

		path, err := locateFile(locateStr)
		if err != nil {
			return err
		}

		if renameExecute {
			if renameID == "" {
				return lsperr.New(lsperr.KindParseError, "--execute requires --id <preview-id>")
			}
			data, err := callCapability(ctx, cfg, path, "rename/execute", map[string]string{"id": renameID})
			if err != nil {
				return err
			}
			var result struct {
				FilesChanged int `json:"files_changed"`
			}
			if err := json.Unmarshal(data, &result); err != nil {
				return lsperr.Wrap(lsperr.KindProtocolError, "decoding rename execute response", err)
			}
			fmt.Print(render.RenameExecute(result.FilesChanged))
			return nil
		}

		body := map[string]string{"locate": locateStr, "new_name": newName}
		if renameMarker != "" {
			body["marker"] = renameMarker
		}
		data, err := callCapability(ctx, cfg, path, "rename/preview", body)
		if err != nil {
			return err
		}

		var preview struct {
			ID   string          `json:"id"`
			Edit json.RawMessage `json:"edit"`
		}
		if err := json.Unmarshal(data, &preview); err != nil {
			return lsperr.Wrap(lsperr.KindProtocolError, "decoding rename preview response", err)
		}
		fmt.Print(render.RenamePreview(preview.ID, preview.Edit, markdownFlag))
		return nil
	},
}

func init() {
	renameCmd.Flags().StringVar(&renameMarker, "marker", "", "position marker used inside @find segments (default <|>)")
	renameCmd.Flags().BoolVar(&renameExecute, "execute", false, "apply a previously previewed rename")
	renameCmd.Flags().StringVar(&renameID, "id", "", "preview id to apply (required with --execute)")
}
