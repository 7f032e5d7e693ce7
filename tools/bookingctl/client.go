package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

type appointment struct {
	ID          string `json:"id"`
	ClientName  string `json:"clientName"`
	ClientPhone string `json:"clientPhone"`
	ClientEmail string `json:"clientEmail"`
	Service     struct {
		ID       string   `json:"id"`
		Name     string   `json:"name"`
		Duration int      `json:"duration"`
		Price    *float64 `json:"price"`
	} `json:"service"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Status      string `json:"status"`
	DisplayDate string `json:"displayDate"`
	Display     struct {
		Label string `json:"label"`
	} `json:"display"`
	Notes string `json:"notes"`
}

type listResult struct {
	Appointments []appointment `json:"appointments"`
	Count        int           `json:"count"`
	Ref          string        `json:"ref"`
}

type statsResult struct {
	Total          int    `json:"total"`
	Pending        int    `json:"pending"`
	Confirmed      int    `json:"confirmed"`
	Rejected       int    `json:"rejected"`
	TodayConfirmed int    `json:"todayConfirmed"`
	Ref            string `json:"ref"`
}

type message struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type actionResult struct {
	Appointment appointment `json:"appointment"`
	Message     message     `json:"message"`
}

type submission struct {
	ClientName  string `json:"clientName"`
	ClientPhone string `json:"clientPhone"`
	ClientEmail string `json:"clientEmail,omitempty"`
	ServiceID   string `json:"serviceId"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Notes       string `json:"notes,omitempty"`
}

// apiError is a non-2xx response from the booking service.
type apiError struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *apiError) Error() string {
	msg := fmt.Sprintf("booking service returned %d: %s", e.Status, e.Message)
	if len(e.Fields) == 0 {
		return msg
	}
	names := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		names = append(names, f)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, f := range names {
		parts[i] = f + " " + e.Fields[f]
	}
	return msg + " (" + strings.Join(parts, ", ") + ")"
}

type client struct {
	baseURL string
	http    *http.Client
}

func newClient(baseURL string, timeout time.Duration) *client {
	return &client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *client) list(ctx context.Context, status, date, ref string) (listResult, error) {
	q := url.Values{}
	for k, v := range map[string]string{"status": status, "date": date, "ref": ref} {
		if v != "" {
			q.Set(k, v)
		}
	}
	path := "/api/v1/appointments"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var out listResult
	err := c.do(ctx, http.MethodGet, path, nil, nil, &out)
	return out, err
}

func (c *client) stats(ctx context.Context, ref string) (statsResult, error) {
	path := "/api/v1/appointments/stats"
	if ref != "" {
		path += "?ref=" + url.QueryEscape(ref)
	}
	var out statsResult
	err := c.do(ctx, http.MethodGet, path, nil, nil, &out)
	return out, err
}

// transition posts action ("confirm" or "reject") for id.
func (c *client) transition(ctx context.Context, id, action string) (actionResult, error) {
	var out actionResult
	err := c.do(ctx, http.MethodPost, "/api/v1/appointments/"+url.PathEscape(id)+"/"+action, nil, nil, &out)
	return out, err
}

func (c *client) book(ctx context.Context, s submission, idempotencyKey string) (actionResult, error) {
	headers := map[string]string{}
	if idempotencyKey != "" {
		headers["Idempotency-Key"] = idempotencyKey
	}
	var out actionResult
	err := c.do(ctx, http.MethodPost, "/api/v1/public/book", s, headers, &out)
	return out, err
}

func (c *client) do(ctx context.Context, method, path string, body any, headers map[string]string, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var e struct {
			Error  string            `json:"error"`
			Fields map[string]string `json:"fields"`
		}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if json.Unmarshal(raw, &e) != nil || e.Error == "" {
			e.Error = strings.TrimSpace(string(raw))
		}
		return &apiError{Status: resp.StatusCode, Message: e.Error, Fields: e.Fields}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
