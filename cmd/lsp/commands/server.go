package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"lspcli/internal/config"
	"lspcli/internal/lsperr"
	"lspcli/internal/render"
	"lspcli/internal/session"
)

// serverCmd groups the broker-lifecycle subcommands (spec §6: `lsp server
// list|start <path>|stop <path>`).
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Inspect and control language server sessions",
}

var serverListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		ctx := cmd.Context()

		if err := ensureBroker(ctx, cfg); err != nil {
			return err
		}
		client := unixHTTPClient(cfg.Paths.BrokerSocketPath())
		data, err := getJSON(client, "/list")
		if err != nil {
			return err
		}

		var infos []session.Info
		if err := json.Unmarshal(data, &infos); err != nil {
			return lsperr.Wrap(lsperr.KindProtocolError, "decoding session list", err)
		}
		fmt.Print(render.Sessions(infos, markdownFlag))
		return nil
	},
}

var serverStartCmd = &cobra.Command{
	Use:   "start <path>",
	Short: "Start (or reuse) a session for path, printing its socket path",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		ctx := cmd.Context()

		sessionSocket, err := createSession(ctx, cfg, args[0])
		if err != nil {
			return err
		}
		fmt.Println(sessionSocket)
		return nil
	},
}

var serverStopCmd = &cobra.Command{
	Use:   "stop <path>",
	Short: "Stop the session resolved for path",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		ctx := cmd.Context()

		if err := ensureBroker(ctx, cfg); err != nil {
			return err
		}
		client := unixHTTPClient(cfg.Paths.BrokerSocketPath())
		if _, err := deleteJSON(client, "/delete", map[string]string{"path": args[0]}); err != nil {
			return err
		}
		fmt.Println("stopped")
		return nil
	},
}

func init() {
	serverCmd.AddCommand(serverListCmd)
	serverCmd.AddCommand(serverStartCmd)
	serverCmd.AddCommand(serverStopCmd)
}
