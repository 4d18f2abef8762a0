package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	bridge "github.com/stacklok/mbean-bridge/internal/app"
	"github.com/stacklok/mbean-bridge/internal/attribute"
	"github.com/stacklok/mbean-bridge/internal/service"
	"github.com/stacklok/mbean-bridge/internal/sync"
)

const formatJSON = "json"

// addInspectFlags registers the flags shared by the one-shot commands
func addInspectFlags(cmd *cobra.Command) {
	addConfigFlag(cmd, false)
	cmd.Flags().String("data-dir", "./data", "Directory for sync status and lock files")
	cmd.Flags().String("format", "table", "Output format (table or json)")
}

// withService builds the bridge from the configuration, runs fn against its
// service and releases the stores
func withService(cmd *cobra.Command, fn func(ctx context.Context, svc service.BridgeService) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	dataDir, err := cmd.Flags().GetString("data-dir")
	if err != nil {
		return fmt.Errorf("failed to get data-dir flag: %w", err)
	}

	app, err := bridge.NewBridgeApp(ctx,
		bridge.WithConfig(cfg),
		bridge.WithDataDirectory(dataDir),
		bridge.WithBackendWait(0),
	)
	if err != nil {
		return fmt.Errorf("failed to build application: %w", err)
	}
	defer app.Close()

	return fn(ctx, app.GetComponents().BridgeService)
}

func outputFormat(cmd *cobra.Command) (string, error) {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return "", fmt.Errorf("failed to get format flag: %w", err)
	}
	if format != "table" && format != formatJSON {
		return "", fmt.Errorf("unsupported output format %q", format)
	}
	return format, nil
}

func writeJSON(w io.Writer, v any) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(output))
	return err
}

func writeTable(w io.Writer, header []string, rows [][]string) error {
	table := tablewriter.NewWriter(w)
	table.Header(header)
	if err := table.Bulk(rows); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}
	return table.Render()
}

func newObjectsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "objects",
		Short: "List the objects of a backend",
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := outputFormat(cmd)
			if err != nil {
				return err
			}
			backendName, _ := cmd.Flags().GetString("backend")
			filter, _ := cmd.Flags().GetString("filter")

			return withService(cmd, func(ctx context.Context, svc service.BridgeService) error {
				objects, err := svc.QueryObjects(ctx, backendName, service.WithFilter(filter))
				if err != nil {
					return err
				}
				if format == formatJSON {
					return writeJSON(cmd.OutOrStdout(), objects)
				}
				rows := make([][]string, 0, len(objects))
				for _, o := range objects {
					rows = append(rows, []string{o.ObjectName, o.ClassName, o.Description})
				}
				return writeTable(cmd.OutOrStdout(), []string{"OBJECT NAME", "CLASS", "DESCRIPTION"}, rows)
			})
		},
	}
	addInspectFlags(cmd)
	addBackendFlags(cmd)
	return cmd
}

func newTreeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the namespace tree of a backend",
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := outputFormat(cmd)
			if err != nil {
				return err
			}
			backendName, _ := cmd.Flags().GetString("backend")
			filter, _ := cmd.Flags().GetString("filter")

			return withService(cmd, func(ctx context.Context, svc service.BridgeService) error {
				result, err := svc.QueryTree(ctx, backendName, service.WithFilter(filter))
				if err != nil {
					return err
				}
				for _, name := range result.Rejected {
					slog.Warn("Object left out of the tree", "object", name)
				}
				if format == formatJSON {
					return writeJSON(cmd.OutOrStdout(), result)
				}
				rows := make([][]string, 0, len(result.Nodes))
				for _, n := range result.Nodes {
					rows = append(rows, []string{n.NodeID, n.ParentID, n.NodeName, n.ObjectName})
				}
				return writeTable(cmd.OutOrStdout(), []string{"NODE", "PARENT", "NAME", "OBJECT NAME"}, rows)
			})
		},
	}
	addInspectFlags(cmd)
	addBackendFlags(cmd)
	return cmd
}

func newAttributesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "attributes OBJECT_NAME",
		Short: "Describe the attributes of an object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat(cmd)
			if err != nil {
				return err
			}
			backendName, _ := cmd.Flags().GetString("backend")
			writable, _ := cmd.Flags().GetBool("writable")
			preview, _ := cmd.Flags().GetBool("preview")

			return withService(cmd, func(ctx context.Context, svc service.BridgeService) error {
				infos, err := svc.GetAttributesInfo(ctx, backendName, args[0],
					service.WithNotWritableOnly(!writable),
					service.WithPreview(preview),
				)
				if err != nil {
					return err
				}
				if format == formatJSON {
					return writeJSON(cmd.OutOrStdout(), infos)
				}
				rows := make([][]string, 0, len(infos))
				for _, info := range infos {
					value := ""
					if info.Preview != nil {
						value = *info.Preview
					}
					rows = append(rows, []string{info.Name, info.Type, strconv.FormatBool(info.IsWritable), value})
				}
				return writeTable(cmd.OutOrStdout(), []string{"NAME", "TYPE", "WRITABLE", "PREVIEW"}, rows)
			})
		},
	}
	addInspectFlags(cmd)
	cmd.Flags().String("backend", "", "Backend name (required)")
	cmd.Flags().Bool("writable", false, "Include writable attributes")
	cmd.Flags().Bool("preview", false, "Read and show the current value of each attribute")
	if err := cmd.MarkFlagRequired("backend"); err != nil {
		panic(err)
	}
	return cmd
}

func addBackendFlags(cmd *cobra.Command) {
	cmd.Flags().String("backend", "", "Backend name (required)")
	cmd.Flags().String("filter", "", "Object name pattern, e.g. 'java.lang:*'")
	if err := cmd.MarkFlagRequired("backend"); err != nil {
		panic(err)
	}
}

// pulledRow is the printable form of one pulled property
type pulledRow struct {
	Name      string          `json:"name"`
	Type      string          `json:"type"`
	Value     json.RawMessage `json:"value"`
	Timestamp time.Time       `json:"timestamp"`
}

// pullOutput is the printable form of a batch
type pullOutput struct {
	Target    string         `json:"target"`
	Timestamp time.Time      `json:"timestamp"`
	Rows      []pulledRow    `json:"rows"`
	Warnings  []sync.Warning `json:"warnings"`
}

func newPullCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pull TARGET",
		Short: "Pull the attributes of a target once and store them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat(cmd)
			if err != nil {
				return err
			}
			ignoreCache, _ := cmd.Flags().GetBool("ignore-cache")

			return withService(cmd, func(ctx context.Context, svc service.BridgeService) error {
				result, err := svc.Refresh(ctx, args[0], ignoreCache)
				if err != nil {
					return err
				}
				out, err := newPullOutput(result)
				if err != nil {
					return err
				}
				for _, w := range out.Warnings {
					slog.Warn("Attribute skipped", "attribute", w.Attribute, "object", w.Object, "kind", w.Kind, "message", w.Message)
				}
				if format == formatJSON {
					return writeJSON(cmd.OutOrStdout(), out)
				}
				rows := make([][]string, 0, len(out.Rows))
				for _, r := range out.Rows {
					rows = append(rows, []string{r.Name, r.Type, string(r.Value), r.Timestamp.Format(time.RFC3339)})
				}
				return writeTable(cmd.OutOrStdout(), []string{"NAME", "TYPE", "VALUE", "TIMESTAMP"}, rows)
			})
		},
	}
	addInspectFlags(cmd)
	cmd.Flags().Bool("ignore-cache", false, "Read every attribute regardless of its cache time")
	return cmd
}

func newPullOutput(result *sync.BatchResult) (*pullOutput, error) {
	out := &pullOutput{
		Target:    result.Target,
		Timestamp: result.Timestamp,
		Rows:      make([]pulledRow, 0, len(result.Rows)),
		Warnings:  result.Warnings,
	}
	for _, row := range result.Rows {
		env, err := attribute.Encode(row.Value)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", row.Name, err)
		}
		out.Rows = append(out.Rows, pulledRow{
			Name:      row.Name,
			Type:      string(env.Type),
			Value:     env.Value,
			Timestamp: row.Timestamp,
		})
	}
	return out, nil
}
