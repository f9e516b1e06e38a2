// Package piston talks to a remote piston-compatible execution service.
package piston

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"coderoom/internal/engine"
)

// maxErrorBody caps how much of an upstream error body is carried back
// to the caller.
const maxErrorBody = 4 << 10

type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a client for the service at baseURL, e.g.
// https://emkc.org/api/v2/piston. Deadlines come from the request
// context, not from the http.Client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
	}
}

func (c *Client) Runtimes(ctx context.Context) ([]engine.Runtime, error) {
	var runtimes []engine.Runtime
	if err := c.doJSON(ctx, http.MethodGet, "/runtimes", nil, &runtimes); err != nil {
		return nil, err
	}
	return runtimes, nil
}

type sourceFile struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

type executePayload struct {
	Language string       `json:"language"`
	Version  string       `json:"version"`
	Files    []sourceFile `json:"files"`
	Stdin    string       `json:"stdin"`
}

// runReport mirrors the wire shape of the service's run block. Pointers
// keep "absent" distinguishable from zero values.
type runReport struct {
	Stdout  *string  `json:"stdout"`
	Stderr  *string  `json:"stderr"`
	Output  *string  `json:"output"`
	Code    *int     `json:"code"`
	Signal  *string  `json:"signal"`
	Time    *float64 `json:"time"`
	CPUTime *float64 `json:"cpu_time"`
	Memory  *int64   `json:"memory"`
}

type executeResponse struct {
	Run runReport `json:"run"`
}

func (c *Client) Execute(ctx context.Context, job engine.Job) (*engine.Outcome, error) {
	payload := executePayload{
		Language: job.Language,
		Version:  job.Version,
		Files:    []sourceFile{{Name: "main", Content: job.Code}},
		Stdin:    job.Stdin,
	}

	var resp executeResponse
	if err := c.doJSON(ctx, http.MethodPost, "/execute", payload, &resp); err != nil {
		return nil, err
	}

	run := resp.Run
	out := &engine.Outcome{
		Stdout:   orEmpty(run.Stdout),
		Stderr:   orEmpty(run.Stderr),
		Output:   orEmpty(run.Output),
		ExitCode: run.Code,
		Signal:   run.Signal,
		Time:     run.Time,
		Memory:   run.Memory,
	}
	if out.Time == nil {
		out.Time = run.CPUTime
	}
	return out, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s payload: %w", path, err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build %s request: %w", path, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &engine.UpstreamError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &engine.UpstreamError{
			Status: resp.StatusCode,
			Body:   strings.TrimSpace(string(text)),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &engine.UpstreamError{Err: fmt.Errorf("decode %s response: %w", path, err)}
	}
	return nil
}

func orEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
