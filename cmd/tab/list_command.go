package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"tab/internal/client"
	"tab/internal/protocol"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tabs known to the daemon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tabs, err := ctx.listTabs(cmd)
			if err != nil {
				return err
			}
			sort.Slice(tabs, func(i, j int) bool { return tabs[i].ID < tabs[j].ID })

			if jsonOutput {
				return writeJSON(cmd, tabsJSON(tabs))
			}
			out := cmd.OutOrStdout()
			if len(tabs) == 0 {
				fmt.Fprintln(out, "No tabs")
				return nil
			}
			rows := make([][]string, 0, len(tabs))
			for _, tab := range tabs {
				rows = append(rows, []string{
					strconv.FormatUint(uint64(tab.ID), 10),
					tab.Name,
					formatDimensions(tab.Dimensions),
				})
			}
			fmt.Fprintln(out, renderTable([]string{"ID", "Name", "Size"}, rows, []columnAlignment{alignRight, alignLeft, alignRight}))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

// newAutocompleteTabCommand prints one tab name per line for shell completion
// scripts.
func newAutocompleteTabCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:    "_autocomplete-tab",
		Short:  "Print tab names for shell completion",
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := ctx.tabNames(cmd)
			if err != nil {
				return err
			}
			sort.Strings(names)
			out := cmd.OutOrStdout()
			for _, name := range names {
				fmt.Fprintln(out, name)
			}
			return nil
		},
	}
}

func (c *commandContext) listTabs(cmd *cobra.Command) ([]protocol.TabMetadata, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	runCtx := c.commandCtx(cmd)
	conn, err := c.connect(runCtx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	return client.ListTabs(runCtx, conn, cfg.CredentialBytes(), logger)
}

func formatDimensions(dims [2]uint16) string {
	if dims[0] == 0 && dims[1] == 0 {
		return "-"
	}
	return fmt.Sprintf("%dx%d", dims[0], dims[1])
}

type tabJSON struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
	Cols uint16 `json:"cols"`
	Rows uint16 `json:"rows"`
}

func tabsJSON(tabs []protocol.TabMetadata) []tabJSON {
	out := make([]tabJSON, 0, len(tabs))
	for _, tab := range tabs {
		out = append(out, tabJSON{ID: uint64(tab.ID), Name: tab.Name, Cols: tab.Dimensions[0], Rows: tab.Dimensions[1]})
	}
	return out
}

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
