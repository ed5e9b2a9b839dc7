package database

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/automationos/automationos/internal/utils"
	"github.com/rs/zerolog"
)

// RPC functions the hosted project exposes for raw SQL
const (
	rpcExecSQL = "exec_sql"
	rpcExec    = "exec"
)

// SupabaseClient talks to the hosted project's PostgREST endpoint with the
// service role key.
type SupabaseClient struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
	logger     zerolog.Logger
}

// SupabaseOption customises a SupabaseClient
type SupabaseOption func(*SupabaseClient)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(c *http.Client) SupabaseOption {
	return func(s *SupabaseClient) {
		s.httpClient = c
	}
}

// NewSupabaseClient creates a client for the project at baseURL
func NewSupabaseClient(baseURL, serviceKey string, logger zerolog.Logger, opts ...SupabaseOption) *SupabaseClient {
	c := &SupabaseClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
		// No timeout: a hung call blocks until the caller's context ends
		httpClient: &http.Client{},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ExecuteBatch sends the whole script to the exec_sql function
func (c *SupabaseClient) ExecuteBatch(ctx context.Context, sql string) error {
	return c.rpc(ctx, rpcExecSQL, map[string]string{"sql_query": sql})
}

// ExecuteStatement sends one statement to the exec function
func (c *SupabaseClient) ExecuteStatement(ctx context.Context, sql string) error {
	return c.rpc(ctx, rpcExec, map[string]string{"sql": sql})
}

// InsertRow inserts row into table and expects exactly one row back
func (c *SupabaseClient) InsertRow(ctx context.Context, table string, row any) error {
	op := "insert " + table

	body, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("failed to encode row for %s: %w", table, err)
	}

	resp, err := c.do(ctx, op, "/rest/v1/"+url.PathEscape(table), body, map[string]string{
		"Prefer": "return=representation",
	})
	if err != nil {
		return err
	}

	var rows []json.RawMessage
	if err := json.Unmarshal(resp, &rows); err != nil {
		return &utils.RemoteError{Operation: op, Message: "unexpected response body", Cause: err}
	}
	if len(rows) != 1 {
		return &utils.RemoteError{Operation: op, Message: fmt.Sprintf("expected a single row, got %d", len(rows))}
	}
	return nil
}

func (c *SupabaseClient) rpc(ctx context.Context, fn string, args map[string]string) error {
	body, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("failed to encode rpc %s arguments: %w", fn, err)
	}
	_, err = c.do(ctx, "rpc "+fn, "/rest/v1/rpc/"+fn, body, nil)
	return err
}

// postgrestError is the error body PostgREST returns
type postgrestError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (c *SupabaseClient) do(ctx context.Context, op, path string, body []byte, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, &utils.RemoteError{Operation: op, Cause: err}
	}

	req.Header.Set("apikey", c.serviceKey)
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	c.logger.Debug().
		Str("operation", op).
		Str("path", path).
		Int("bytes", len(body)).
		Msg("Calling Supabase")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &utils.RemoteError{Operation: op, Cause: err}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &utils.RemoteError{Operation: op, Status: resp.StatusCode, Cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		remoteErr := &utils.RemoteError{Operation: op, Status: resp.StatusCode}
		var pgErr postgrestError
		if json.Unmarshal(payload, &pgErr) == nil && (pgErr.Message != "" || pgErr.Code != "") {
			remoteErr.Code = pgErr.Code
			remoteErr.Message = pgErr.Message
			remoteErr.Hint = pgErr.Hint
			if remoteErr.Message == "" {
				remoteErr.Message = pgErr.Details
			}
		} else {
			remoteErr.Message = strings.TrimSpace(string(payload))
		}
		return nil, remoteErr
	}

	return payload, nil
}
