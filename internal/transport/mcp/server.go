// Package mcp exposes the chat commands as MCP tools over stdio.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"io"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sandevgo/smartctx/internal/core"
	"github.com/sandevgo/smartctx/internal/service/command"
	"github.com/sandevgo/smartctx/pkg/log"
)

const instructions = `smartctx keeps the conversation context focused on selected topics.
Call get_topics to see what the chat is about, set_filter to focus the context
on some of those topics (an empty list clears the focus) and
set_similarity_mode to turn embedding based filtering on or off.`

// NewServer registers one tool per typed command.
func NewServer(dispatcher *command.Dispatcher) *server.MCPServer {
	s := server.NewMCPServer(
		core.AppName,
		core.AppVersion,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)

	t := &tools{dispatcher: dispatcher}
	s.AddTool(setFilterTool(), t.setFilter)
	s.AddTool(getTopicsTool(), t.getTopics)
	s.AddTool(setSimilarityModeTool(), t.setSimilarityMode)
	return s
}

func setFilterTool() mcp.Tool {
	return mcp.NewTool(command.KindSetFilter.String(),
		mcp.WithDescription("Replace the active topics of a chat. Only messages related to them stay in context. An empty list clears the filter."),
		mcp.WithString("chat_id", mcp.Required(), mcp.Description("Chat identifier")),
		mcp.WithArray("topics", mcp.Description("Topic labels as returned by get_topics"), mcp.WithStringItems()),
	)
}

func getTopicsTool() mcp.Tool {
	return mcp.NewTool(command.KindGetTopics.String(),
		mcp.WithDescription("List the extracted topics of a chat with message counts."),
		mcp.WithString("chat_id", mcp.Required(), mcp.Description("Chat identifier")),
	)
}

func setSimilarityModeTool() mcp.Tool {
	return mcp.NewTool(command.KindSetSimilarityMode.String(),
		mcp.WithDescription("Turn embedding based context filtering on or off. Turning it off clears the active topics."),
		mcp.WithString("chat_id", mcp.Required(), mcp.Description("Chat identifier")),
		mcp.WithBoolean("enabled", mcp.Required(), mcp.Description("true to enable")),
	)
}

type tools struct {
	dispatcher *command.Dispatcher
}

func (t *tools) setFilter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var r command.SetFilterRequest
	if err := req.BindArguments(&r); err != nil {
		return mcp.NewToolResultError("invalid arguments: " + err.Error()), nil
	}
	return result(t.dispatcher.SetFilter(ctx, r))
}

func (t *tools) getTopics(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var r command.GetTopicsRequest
	if err := req.BindArguments(&r); err != nil {
		return mcp.NewToolResultError("invalid arguments: " + err.Error()), nil
	}
	return result(t.dispatcher.GetTopics(ctx, r))
}

func (t *tools) setSimilarityMode(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var r command.SetSimilarityModeRequest
	if err := req.BindArguments(&r); err != nil {
		return mcp.NewToolResultError("invalid arguments: " + err.Error()), nil
	}
	return result(t.dispatcher.SetSimilarityMode(ctx, r))
}

// result reports command errors as tool errors so the model can react.
func result(resp any, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := json.Marshal(resp)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}

// Stdio serves the MCP server on the given streams as a srv.Service.
type Stdio struct {
	server *server.MCPServer
	in     io.Reader
	out    io.Writer
}

func NewStdio(s *server.MCPServer, in io.Reader, out io.Writer) *Stdio {
	return &Stdio{server: s, in: in, out: out}
}

func (s *Stdio) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Msg("mcp server listening on stdio")

	err := server.NewStdioServer(s.server).Listen(ctx, s.in, s.out)
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (s *Stdio) Shutdown(ctx context.Context) error {
	return nil
}
