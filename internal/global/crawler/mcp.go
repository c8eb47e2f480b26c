package crawler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
)

var requestID atomic.Int64

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int64  `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

type toolCallParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

type rpcResponse struct {
	Result *struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
		IsError bool `json:"isError"`
	} `json:"result"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// callTool 发送 MCP tools/call，把第一段文本内容按 JSON 解析到 out
func (c *Crawler) callTool(ctx context.Context, tool, link string, out any) error {
	var res rpcResponse
	resp, err := c.mcp.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetBody(rpcRequest{
			JSONRPC: "2.0",
			ID:      requestID.Add(1),
			Method:  "tools/call",
			Params:  toolCallParams{Name: tool, Arguments: map[string]any{"url": link}},
		}).
		SetResult(&res).
		Post(c.endpoint)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("MCP HTTP %d", resp.StatusCode())
	}
	if res.Error != nil {
		return fmt.Errorf("MCP 错误 %d: %s", res.Error.Code, res.Error.Message)
	}
	if res.Result == nil || res.Result.IsError {
		return errors.New("MCP 工具调用失败")
	}
	for _, part := range res.Result.Content {
		if part.Type == "text" && part.Text != "" {
			return json.Unmarshal([]byte(part.Text), out)
		}
	}
	return errors.New("MCP 返回内容为空")
}
