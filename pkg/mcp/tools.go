package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sumatoshi-tech/amdshake/pkg/amd"
	"github.com/Sumatoshi-tech/amdshake/pkg/graphview"
	"github.com/Sumatoshi-tech/amdshake/pkg/mangle"
	"github.com/Sumatoshi-tech/amdshake/pkg/observability"
	"github.com/Sumatoshi-tech/amdshake/pkg/report"
	"github.com/Sumatoshi-tech/amdshake/pkg/treeshake"
)

// Tool name constants.
const (
	ToolNameShrink    = "amd_shrink"
	ToolNameTreeshake = "amd_treeshake"
	ToolNameGraph     = "amd_graph"
)

// DefaultMaxBundleBytes is the default cap on bundle inputs (8 MiB).
const DefaultMaxBundleBytes = 8 << 20

// Sentinel errors for tool input validation.
var (
	// ErrEmptyBundle indicates the bundle parameter is empty.
	ErrEmptyBundle = errors.New("bundle parameter is required and must not be empty")
	// ErrBundleTooLarge indicates a bundle input exceeds the size limit.
	ErrBundleTooLarge = errors.New("bundle input exceeds maximum size")
)

// Input types (auto-generate JSON schemas via struct tags).

// ShrinkInput is the input schema for the amd_shrink tool.
type ShrinkInput struct {
	Bundle     string `json:"bundle"               jsonschema:"AMD bundle text made of define calls"`
	Provenance bool   `json:"provenance,omitempty" jsonschema:"write a provenance comment ahead of every renamed module"`
	Strategy   string `json:"strategy,omitempty"   jsonschema:"renaming strategy: shorten (default) or obfuscate"`
}

// TreeshakeInput is the input schema for the amd_treeshake tool.
type TreeshakeInput struct {
	Bundle            string   `json:"bundle"                        jsonschema:"AMD bundle text made of define calls"`
	Compare           string   `json:"compare,omitempty"             jsonschema:"text of a bundle already shipped; its modules are dropped unless kept"`
	Keep              []string `json:"keep,omitempty"                jsonschema:"entry modules to keep together with their dependencies"`
	NoMergeDuplicates bool     `json:"no_merge_duplicates,omitempty" jsonschema:"keep modules with identical bodies separate"`
	Provenance        bool     `json:"provenance,omitempty"          jsonschema:"write provenance comments ahead of renamed modules"`
	Remove            []string `json:"remove,omitempty"              jsonschema:"modules never counted as used unless also kept"`
	StripUseStrict    bool     `json:"strip_use_strict,omitempty"    jsonschema:"remove use strict directives from the output"`
}

// GraphInput is the input schema for the amd_graph tool.
type GraphInput struct {
	Bundle string `json:"bundle" jsonschema:"AMD bundle text made of define calls"`
}

// Output types.

// ToolOutput is a generic wrapper for tool results.
type ToolOutput struct {
	Data any `json:"data"`
}

// BundleResult is the payload of the shrink and treeshake tools.
type BundleResult struct {
	Bundle  string         `json:"bundle"`
	Summary report.Summary `json:"summary"`
}

// Result helpers.

// errorResult builds a CallToolResult with isError set.
func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: err.Error()},
		},
		IsError: true,
	}, ToolOutput{}, nil
}

// jsonResult builds a CallToolResult with JSON-encoded content.
func jsonResult(value any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: string(data)},
		},
	}, ToolOutput{Data: value}, nil
}

// validateBundle checks common bundle input constraints.
func (s *Server) validateBundle(field, text string) error {
	if len(text) > int(s.maxBytes) {
		return fmt.Errorf("%w: %s is %d bytes (max %d)", ErrBundleTooLarge, field, len(text), s.maxBytes)
	}

	return nil
}

// handleShrink processes amd_shrink tool calls.
func (s *Server) handleShrink(
	ctx context.Context,
	_ *mcpsdk.CallToolRequest,
	input ShrinkInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if input.Bundle == "" {
		return errorResult(ErrEmptyBundle)
	}

	err := s.validateBundle("bundle", input.Bundle)
	if err != nil {
		return errorResult(err)
	}

	result, err := mangle.Shrink(ctx, input.Bundle, mangle.ShrinkOptions{
		StrategyName:      input.Strategy,
		IncludeProvenance: input.Provenance,
		Logger:            s.logger,
		Tracer:            s.tracer,
	})
	if err != nil {
		return errorResult(err)
	}

	summary := report.FromShrink(result)
	s.record(ctx, summary)

	return jsonResult(BundleResult{Bundle: result.Output, Summary: summary})
}

// handleTreeshake processes amd_treeshake tool calls.
func (s *Server) handleTreeshake(
	ctx context.Context,
	_ *mcpsdk.CallToolRequest,
	input TreeshakeInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if input.Bundle == "" {
		return errorResult(ErrEmptyBundle)
	}

	err := s.validateBundle("bundle", input.Bundle)
	if err != nil {
		return errorResult(err)
	}

	err = s.validateBundle("compare", input.Compare)
	if err != nil {
		return errorResult(err)
	}

	opts := treeshake.NewOptions(input.Keep...)
	opts.Remove = input.Remove
	opts.CompareAgainst = input.Compare
	opts.MergeDuplicates = !input.NoMergeDuplicates
	opts.StripUseStrict = input.StripUseStrict
	opts.IncludeProvenance = input.Provenance
	opts.Logger = s.logger
	opts.Tracer = s.tracer

	result := treeshake.Treeshake(ctx, input.Bundle, opts)

	summary := report.FromTreeshake(result)
	s.record(ctx, summary)

	return jsonResult(BundleResult{Bundle: result.Output, Summary: summary})
}

// handleGraph processes amd_graph tool calls.
func (s *Server) handleGraph(
	ctx context.Context,
	_ *mcpsdk.CallToolRequest,
	input GraphInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if input.Bundle == "" {
		return errorResult(ErrEmptyBundle)
	}

	err := s.validateBundle("bundle", input.Bundle)
	if err != nil {
		return errorResult(err)
	}

	view := graphview.Build(amd.Extract(input.Bundle))

	s.logger.DebugContext(ctx, "graph built",
		"modules", len(view.Nodes)-len(view.Externals),
		"cycles", len(view.Cycles),
	)

	return jsonResult(view)
}

func (s *Server) record(ctx context.Context, summary report.Summary) {
	s.bundles.RecordBundle(ctx, observability.BundleStats{
		Op:              summary.Operation,
		ModulesBefore:   summary.ModulesBefore,
		BytesBefore:     summary.BytesBefore,
		BytesAfter:      summary.BytesAfter,
		PrunedImports:   len(summary.Pruned),
		RemovedByReason: summary.RemovedByReason(),
	})
}
