package mcpclient

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"sync"

	"github.com/kastheco/atlas/log"
)

// StdioTransport drives a local MCP server, typically
// `npx -y mcp-remote https://mcp.atlassian.com/v1/sse`, over its stdin and
// stdout, one JSON-RPC message per line. Requests are serialized. A
// cancelled context abandons the wait; the next request still reads past the
// late answer because responses are matched by id.
type StdioTransport struct {
	cmd    *exec.Cmd // nil when created from pipes
	reader *bufio.Reader
	writer io.Writer
	closer io.Closer // stdin pipe or reader closer
	mu     sync.Mutex

	closeOnce sync.Once
	closeErr  error
}

// NewStdioTransport starts command with env appended to the current
// environment.
func NewStdioTransport(command string, args []string, env []string) (*StdioTransport, error) {
	cmd := exec.Command(command, args...)
	cmd.Env = append(cmd.Environ(), env...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", command, err)
	}
	return &StdioTransport{
		cmd:    cmd,
		reader: bufio.NewReader(stdout),
		writer: stdin,
		closer: stdin,
	}, nil
}

// NewStdioTransportFromPipes wires a transport to a server already running
// behind r and w.
func NewStdioTransportFromPipes(r io.ReadCloser, w io.Writer) *StdioTransport {
	return &StdioTransport{
		reader: bufio.NewReader(r),
		writer: w,
		closer: r,
	}
}

type sendResult struct {
	resp JSONRPCResponse
	err  error
}

// Send writes req and waits for the response carrying its id.
func (t *StdioTransport) Send(ctx context.Context, req JSONRPCRequest) (JSONRPCResponse, error) {
	if err := ctx.Err(); err != nil {
		return JSONRPCResponse{}, err
	}
	done := make(chan sendResult, 1)
	go func() {
		resp, err := t.roundTrip(req)
		done <- sendResult{resp, err}
	}()
	select {
	case r := <-done:
		return r.resp, r.err
	case <-ctx.Done():
		return JSONRPCResponse{}, ctx.Err()
	}
}

func (t *StdioTransport) roundTrip(req JSONRPCRequest) (JSONRPCResponse, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	data, err := json.Marshal(req)
	if err != nil {
		return JSONRPCResponse{}, fmt.Errorf("marshal request: %w", err)
	}
	data = append(data, '\n')
	if _, err := t.writer.Write(data); err != nil {
		return JSONRPCResponse{}, fmt.Errorf("write %s: %w", req.Method, err)
	}

	for {
		line, err := t.reader.ReadBytes('\n')
		if err != nil {
			return JSONRPCResponse{}, fmt.Errorf("read response to %s: %w", req.Method, err)
		}
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		var head struct {
			ID     *int   `json:"id"`
			Method string `json:"method"`
		}
		if err := json.Unmarshal(line, &head); err != nil {
			// mcp-remote prints progress text on stdout while it authorizes.
			log.InfoLog.Printf("mcp stdio: skipping non-JSON line %q", line)
			continue
		}
		if head.Method != "" || head.ID == nil || *head.ID != req.ID {
			continue
		}
		var resp JSONRPCResponse
		if err := json.Unmarshal(line, &resp); err != nil {
			return JSONRPCResponse{}, fmt.Errorf("parse response to %s: %w", req.Method, err)
		}
		return resp, nil
	}
}

// Close closes the server's stdin and waits for it to exit. Calling it again
// returns the first result.
func (t *StdioTransport) Close() error {
	t.closeOnce.Do(func() {
		t.closer.Close()
		if t.cmd != nil {
			t.closeErr = t.cmd.Wait()
		}
	})
	return t.closeErr
}
