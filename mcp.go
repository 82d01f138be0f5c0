package fsplit

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RegisterTools adds the plan, split and undo tools to s.
func RegisterTools(s *server.MCPServer, cfg *Config) {
	s.AddTool(planTool(), planHandler(cfg))
	s.AddTool(splitTool(), splitHandler(cfg))
	s.AddTool(undoTool(), undoHandler(cfg))
}

func planTool() mcp.Tool {
	return mcp.NewTool("plan",
		mcp.WithDescription("Show how a source file would be split into per-category files, without writing anything."),
		mcp.WithString("path",
			mcp.Description("Path of the JavaScript or TypeScript file"),
			mcp.Required(),
		),
	)
}

func planHandler(cfg *Config) server.ToolHandlerFunc {
	return func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path := req.GetString("path", "")
		out, err := renderPlan(path, cfg)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(out), nil
	}
}

func splitTool() mcp.Tool {
	return mcp.NewTool("split",
		mcp.WithDescription("Split a large source file into per-category files plus an index, replacing the original with a forwarding module. The original is backed up and restored if verification fails."),
		mcp.WithString("path",
			mcp.Description("Path of the JavaScript or TypeScript file"),
			mcp.Required(),
		),
		mcp.WithBoolean("dry_run",
			mcp.Description("Only return the plan"),
		),
	)
}

func splitHandler(cfg *Config) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path := req.GetString("path", "")
		if req.GetBool("dry_run", false) {
			out, err := renderPlan(path, cfg)
			if err != nil {
				return toolError(err)
			}
			return mcp.NewToolResultText(out), nil
		}

		res, err := Split(ctx, path, cfg)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(describeResult(path, res)), nil
	}
}

func undoTool() mcp.Tool {
	return mcp.NewTool("undo",
		mcp.WithDescription("Revert the most recent split, restoring the original file from its backup."),
	)
}

func undoHandler(cfg *Config) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		s, err := Undo(ctx, cfg)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(FormatSummary(s)), nil
	}
}

func renderPlan(path string, cfg *Config) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	plan, err := Analyze(path, string(data), cfg)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	if err := PrintPlan(&sb, plan, nil); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func describeResult(path string, res *TransactionResult) string {
	switch {
	case res.Skipped:
		return fmt.Sprintf("%s is within the line limit; nothing to do.", path)
	case res.Success && len(res.WrittenFiles) == 0:
		return fmt.Sprintf("%s has no declarations to split.", path)
	case res.Success:
		var sb strings.Builder
		fmt.Fprintf(&sb, "Split %s (backup %s):\n", path, res.Backup.BackupPath)
		for _, f := range res.WrittenFiles {
			fmt.Fprintf(&sb, "  %s\n", f)
		}
		for _, w := range res.Warnings {
			fmt.Fprintf(&sb, "warning: %s\n", w)
		}
		return sb.String()
	}
	return fmt.Sprintf("Split of %s was rolled back: %s", path, res.Error)
}

func toolError(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}
