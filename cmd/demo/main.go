// Command demo drives a full bounty campaign against a running service:
// it creates an event, files and resolves issues, settles the leaderboard
// and claims every reward, printing each step's response.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"
)

const (
	defaultTimeout = 10 * time.Second
	runTimeout     = 2 * time.Minute
)

type client struct {
	baseURL string
	http    *http.Client
}

func (c *client) do(ctx context.Context, method, path, caller string, body any) (int, json.RawMessage, error) {
	var rd *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("marshal request: %w", err)
		}
		rd = bytes.NewReader(raw)
	} else {
		rd = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if caller != "" {
		req.Header.Set("X-Caller", caller)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return resp.StatusCode, nil, fmt.Errorf("decode response: %w", err)
	}
	return resp.StatusCode, raw, nil
}

func step(name string, status int, raw json.RawMessage) {
	fmt.Printf("== %-22s status=%d\n   %s\n", name, status, string(raw))
}

func run(ctx context.Context, c *client, maintainer string) error {
	eventID := uint64(time.Now().Unix())
	name := "demo-campaign"
	q := url.Values{"maintainer": {maintainer}, "name": {name}}.Encode()
	prefix := fmt.Sprintf("/events/%d", eventID)

	// Schedule the event to have already ended so settlement can run.
	status, raw, err := c.do(ctx, http.MethodPost, "/events", maintainer, map[string]any{
		"id":            eventID,
		"name":          name,
		"start_time":    time.Now().Add(-2 * time.Hour).Format(time.RFC3339),
		"end_time":      time.Now().Add(-time.Minute).Format(time.RFC3339),
		"split":         []int{50, 30, 20},
		"reward_amount": 1_000_000,
	})
	if err != nil {
		return err
	}
	step("create event", status, raw)
	if status != http.StatusCreated {
		return fmt.Errorf("create event: unexpected status %d", status)
	}

	status, raw, err = c.do(ctx, http.MethodPost, prefix+"/issues?name="+url.QueryEscape(name), maintainer, map[string]any{
		"issues": []map[string]any{
			{"issue_id": 1, "points": 500},
			{"issue_id": 2, "points": 300},
			{"issue_id": 3, "points": 200},
			{"issue_id": 4, "points": 100},
		},
	})
	if err != nil {
		return err
	}
	step("add issues", status, raw)

	for issueID, contributor := range map[int]string{1: "alice", 2: "bob", 3: "carol", 4: "bob"} {
		status, raw, err = c.do(ctx, http.MethodPost, prefix+"/resolve?name="+url.QueryEscape(name), maintainer, map[string]any{
			"issue_id":    issueID,
			"contributor": contributor,
		})
		if err != nil {
			return err
		}
		step(fmt.Sprintf("resolve #%d -> %s", issueID, contributor), status, raw)
	}

	status, raw, err = c.do(ctx, http.MethodGet, prefix+"/leaderboard?"+q, "", nil)
	if err != nil {
		return err
	}
	step("leaderboard", status, raw)

	status, raw, err = c.do(ctx, http.MethodPost, prefix+"/finish?name="+url.QueryEscape(name), maintainer, nil)
	if err != nil {
		return err
	}
	step("finish event", status, raw)
	if status != http.StatusOK {
		return fmt.Errorf("finish event: unexpected status %d", status)
	}

	for _, winner := range []string{"alice", "bob", "carol"} {
		status, raw, err = c.do(ctx, http.MethodPost, prefix+"/claims?"+q, winner, nil)
		if err != nil {
			return err
		}
		step("claim by "+winner, status, raw)
	}

	status, raw, err = c.do(ctx, http.MethodGet, prefix+"?"+q, "", nil)
	if err != nil {
		return err
	}
	step("final event state", status, raw)
	return nil
}

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:9080", "Base URL of the service")
		maintainer = flag.String("maintainer", "octocat", "Maintainer identity used to create the event")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	c := &client{baseURL: *baseURL, http: &http.Client{Timeout: *timeout}}
	if err := run(ctx, c, *maintainer); err != nil {
		os.Stderr.WriteString("demo failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
