package tool

import (
	"bufio"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/habiliai/agentloop/config"
	"github.com/habiliai/agentloop/errors"
	mcpclient "github.com/mark3labs/mcp-go/client"
	mcpgo "github.com/mark3labs/mcp-go/mcp"
)

// MCPSession is the slice of an MCP client the registry needs.
type MCPSession interface {
	ListTools(ctx context.Context, req mcpgo.ListToolsRequest) (*mcpgo.ListToolsResult, error)
	CallTool(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error)
	Close() error
}

// ConnectMCPServer starts a stdio MCP server and registers every tool it lists.
func (r *Registry) ConnectMCPServer(ctx context.Context, serverName string, server config.MCPServer) (int, error) {
	var envs []string
	for key, val := range server.Env {
		envs = append(envs, fmt.Sprintf("%s=%s", key, val))
	}

	c, err := mcpclient.NewStdioMCPClient(server.Command, envs, server.Args...)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to create MCP client")
	}

	if stderr, ok := mcpclient.GetStderr(c); ok {
		go r.forwardStderr(serverName, stderr)
	}

	initRequest := mcpgo.InitializeRequest{}
	initRequest.Params.ProtocolVersion = mcpgo.LATEST_PROTOCOL_VERSION
	initRequest.Params.ClientInfo = mcpgo.Implementation{Name: "agentloop", Version: "1.0.0"}
	if _, err := c.Initialize(ctx, initRequest); err != nil {
		_ = c.Close()
		return 0, errors.Wrapf(err, "failed to initialize MCP client")
	}

	return r.RegisterMCPSession(ctx, serverName, c)
}

// forwardStderr logs the server's stderr lines at debug level until the pipe closes.
func (r *Registry) forwardStderr(serverName string, stderr io.Reader) {
	rd := bufio.NewReader(stderr)
	for {
		line, err := rd.ReadString('\n')
		if err != nil {
			if err != io.EOF && !strings.Contains(err.Error(), "already closed") {
				r.logger.Error("failed to copy stderr", "error", err, "server", serverName)
			}
			return
		}
		r.logger.Debug("[MCP] "+strings.TrimSpace(line), "server", serverName)
	}
}

// RegisterMCPSession registers the tools listed by s. Tools clashing with an
// existing name are skipped. The registry closes s on Close.
func (r *Registry) RegisterMCPSession(ctx context.Context, serverName string, s MCPSession) (int, error) {
	r.addCloser(s)

	listed, err := s.ListTools(ctx, mcpgo.ListToolsRequest{})
	if err != nil {
		return 0, errors.Wrapf(err, "failed to list tools")
	}

	registered := 0
	for _, mt := range listed.Tools {
		t := Tool{
			Schema:  mcpSchema(mt),
			Handler: mcpHandler(s, mt.Name),
		}
		if err := r.Register(t); err != nil {
			r.logger.Warn("skipping MCP tool", "tool", mt.Name, "server", serverName, "error", err)
			continue
		}
		registered++
	}

	r.logger.Info("MCP server connected", "server", serverName, "tools", registered)
	return registered, nil
}

func mcpSchema(mt mcpgo.Tool) Schema {
	required := make(map[string]bool, len(mt.InputSchema.Required))
	for _, name := range mt.InputSchema.Required {
		required[name] = true
	}

	names := make([]string, 0, len(mt.InputSchema.Properties))
	for name := range mt.InputSchema.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	params := make([]Param, 0, len(names))
	for _, name := range names {
		p := Param{Name: name, Type: TypeString, Required: required[name]}
		if prop, ok := mt.InputSchema.Properties[name].(map[string]any); ok {
			if typ, ok := prop["type"].(string); ok && knownType(typ) {
				p.Type = typ
			}
			if desc, ok := prop["description"].(string); ok {
				p.Description = desc
			}
		}
		params = append(params, p)
	}

	desc := strings.TrimSpace(mt.Description)
	if desc == "" {
		desc = mt.Name
	}
	return Schema{Name: mt.Name, Description: desc, Params: params}
}

func mcpHandler(s MCPSession, name string) Handler {
	return func(ctx *Context, args map[string]any) (Result, error) {
		req := mcpgo.CallToolRequest{
			Request: mcpgo.Request{
				Method: "tools/call",
			},
		}
		req.Params.Name = name
		req.Params.Arguments = args

		out, err := s.CallTool(ctx, req)
		if err != nil {
			return Result{}, errors.Wrapf(err, "MCP call failed")
		}

		var (
			text    strings.Builder
			payload []byte
		)
		for _, c := range out.Content {
			switch c := c.(type) {
			case mcpgo.TextContent:
				text.WriteString(c.Text)
			case mcpgo.ImageContent:
				if payload != nil {
					continue
				}
				data, err := base64.StdEncoding.DecodeString(c.Data)
				if err != nil {
					ctx.Logger().Warn("bad image content", "error", err)
					continue
				}
				payload = data
				text.WriteString(fmt.Sprintf("[image %s, %d bytes]", c.MIMEType, len(data)))
			}
		}

		if out.IsError {
			return Result{}, errors.New(strings.TrimSpace(text.String()))
		}
		return Result{Text: text.String(), Payload: payload}, nil
	}
}
