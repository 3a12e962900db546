package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/aosgate/internal/config"
	"github.com/nextlevelbuilder/aosgate/internal/inventory"
	"github.com/nextlevelbuilder/aosgate/internal/policy"
	"github.com/nextlevelbuilder/aosgate/internal/sshx"
	"github.com/nextlevelbuilder/aosgate/internal/tools"
	"github.com/nextlevelbuilder/aosgate/internal/zonecreds"
	"github.com/nextlevelbuilder/aosgate/pkg/protocol"
)

func toolsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List or invoke catalog tools from the command line",
	}
	cmd.AddCommand(toolsListCmd())
	cmd.AddCommand(toolsCallCmd())
	return cmd
}

func toolsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the tool catalog",
		Run: func(cmd *cobra.Command, args []string) {
			for _, t := range tools.NewCatalog().List() {
				desc := t.Description
				if idx := strings.Index(desc, ". "); idx > 0 {
					desc = desc[:idx+1]
				}
				fmt.Printf("  %-28s %s\n", t.Name, desc)
			}
		},
	}
}

func toolsCallCmd() *cobra.Command {
	var argsJSON string
	cmd := &cobra.Command{
		Use:   "call <tool>",
		Short: "Invoke a tool against a device and print the result",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			if err := runToolCall(args[0], argsJSON); err != nil {
				fmt.Fprintln(os.Stderr, "error:", err)
				os.Exit(1)
			}
		},
	}
	cmd.Flags().StringVar(&argsJSON, "args", "{}", `tool arguments as JSON, e.g. '{"host":"10.9.19.10"}'`)
	return cmd
}

func runToolCall(tool, argsJSON string) error {
	setupLogging()

	var toolArgs map[string]any
	if err := json.Unmarshal([]byte(argsJSON), &toolArgs); err != nil {
		return fmt.Errorf("parse --args: %w", err)
	}

	cfg, err := config.Load(resolveConfigPath())
	if err != nil {
		return err
	}
	compiled, err := policy.Compile(cfg.Policy)
	if err != nil {
		return err
	}
	resolver := zonecreds.NewResolver(cfg.ZoneAuth)
	runner, err := sshx.NewExecutor(cfg.SSH, cfg.Inventory, resolver)
	if err != nil {
		return err
	}

	svc := &tools.Service{
		Config:    cfg,
		Policy:    policy.NewStore(compiled),
		Resolver:  resolver,
		Runner:    runner,
		Inventory: inventory.Build(cfg.Inventory),
		Registry:  tools.NewCatalog(),
		Logger:    slog.Default(),
	}

	result := svc.Dispatch(context.Background(), &protocol.ToolCallRequest{
		Context: &protocol.RequestContext{
			Subject:       "cli",
			CorrelationID: uuid.NewString(),
			Client:        "aosgate-cli/" + Version,
		},
		Tool: tool,
		Args: toolArgs,
	})

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))

	if result.Status != "ok" {
		os.Exit(1)
	}
	return nil
}
