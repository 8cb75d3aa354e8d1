package mcpclient

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"sync"
)

// sessionHeader carries the MCP session the server assigned at initialize.
const sessionHeader = "Mcp-Session-Id"

// HTTPTransport talks to a remote MCP endpoint such as
// https://mcp.atlassian.com/v1/sse over Streamable HTTP. Every request is a
// POST; the server answers with either a JSON body or a short event stream
// whose data lines carry the response.
type HTTPTransport struct {
	url   string
	token string
	http  *http.Client

	mu      sync.Mutex
	session string
}

// NewHTTPTransport creates a transport for url. token is the Atlassian
// OAuth access token from `atlas jira login`; empty sends no Authorization.
func NewHTTPTransport(url, token string) *HTTPTransport {
	return &HTTPTransport{
		url:   url,
		token: token,
		http:  &http.Client{},
	}
}

// Session returns the session id the server assigned, empty before the
// first response that set one.
func (t *HTTPTransport) Session() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.session
}

// Send posts req and returns the response with the same id.
func (t *HTTPTransport) Send(ctx context.Context, req JSONRPCRequest) (JSONRPCResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return JSONRPCResponse{}, fmt.Errorf("marshal: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(body))
	if err != nil {
		return JSONRPCResponse{}, fmt.Errorf("new request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json, text/event-stream")
	httpReq.Header.Set("User-Agent", clientName+"/"+clientVersion)
	if t.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+t.token)
	}
	if s := t.Session(); s != "" {
		httpReq.Header.Set(sessionHeader, s)
	}

	httpResp, err := t.http.Do(httpReq)
	if err != nil {
		return JSONRPCResponse{}, fmt.Errorf("http post %s: %w", req.Method, err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		if httpResp.StatusCode == http.StatusNotFound {
			// The server dropped the session; the next initialize starts a new one.
			t.setSession("")
		}
		respBody, _ := io.ReadAll(io.LimitReader(httpResp.Body, 64<<10))
		return JSONRPCResponse{}, &StatusError{StatusCode: httpResp.StatusCode, Body: respBody}
	}
	if s := httpResp.Header.Get(sessionHeader); s != "" {
		t.setSession(s)
	}

	mediaType, _, _ := mime.ParseMediaType(httpResp.Header.Get("Content-Type"))
	if mediaType == "text/event-stream" {
		return readEventStream(httpResp.Body, req.ID)
	}
	var resp JSONRPCResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return JSONRPCResponse{}, fmt.Errorf("decode response: %w", err)
	}
	return resp, nil
}

func (t *HTTPTransport) setSession(s string) {
	t.mu.Lock()
	t.session = s
	t.mu.Unlock()
}

// readEventStream returns the first event whose payload answers id. Events
// without an id are server notifications and are skipped.
func readEventStream(r io.Reader, id int) (JSONRPCResponse, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), 4<<20)
	var data strings.Builder
	flush := func() (JSONRPCResponse, bool, error) {
		defer data.Reset()
		if data.Len() == 0 {
			return JSONRPCResponse{}, false, nil
		}
		var head struct {
			ID *int `json:"id"`
		}
		if err := json.Unmarshal([]byte(data.String()), &head); err != nil {
			return JSONRPCResponse{}, false, fmt.Errorf("decode event: %w", err)
		}
		if head.ID == nil || *head.ID != id {
			return JSONRPCResponse{}, false, nil
		}
		var resp JSONRPCResponse
		if err := json.Unmarshal([]byte(data.String()), &resp); err != nil {
			return JSONRPCResponse{}, false, fmt.Errorf("decode event: %w", err)
		}
		return resp, true, nil
	}
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			if resp, ok, err := flush(); err != nil || ok {
				return resp, err
			}
			continue
		}
		if v, ok := strings.CutPrefix(line, "data:"); ok {
			data.WriteString(strings.TrimPrefix(v, " "))
		}
	}
	if err := sc.Err(); err != nil {
		return JSONRPCResponse{}, fmt.Errorf("read event stream: %w", err)
	}
	if resp, ok, err := flush(); err != nil || ok {
		return resp, err
	}
	return JSONRPCResponse{}, fmt.Errorf("event stream ended without a response to request %d", id)
}

// Close is a no-op; each request is its own HTTP exchange.
func (t *HTTPTransport) Close() error { return nil }
