// Package client is a typed HTTP client for the BookMyCare API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const DefaultBaseURL = "http://localhost:4000"

type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type Provider struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Slot struct {
	ID         int64     `json:"id"`
	ProviderID int64     `json:"providerId"`
	Date       string    `json:"date"`
	TimeSlot   string    `json:"timeSlot"`
	IsBooked   bool      `json:"isBooked"`
	CreatedAt  time.Time `json:"createdAt"`
}

type Booking struct {
	ID          int64      `json:"id"`
	ProviderID  int64      `json:"providerId"`
	CustomerID  int64      `json:"customerId"`
	Date        string     `json:"date"`
	TimeSlot    string     `json:"timeSlot"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	CancelledAt *time.Time `json:"cancelledAt,omitempty"`
}

type AuthResult struct {
	Message string `json:"message,omitempty"`
	Token   string `json:"token_bookMyCare"`
	User    User   `json:"user"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// APIError carries the server's error envelope verbatim.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return http.StatusText(e.Status)
	}
	return e.Message
}

type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func New(baseURL string, opts ...Option) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{baseURL: baseURL, http: &http.Client{Timeout: 15 * time.Second}}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) SetToken(token string) { c.token = token }

func (c *Client) Register(ctx context.Context, req RegisterRequest) (AuthResult, error) {
	var out AuthResult
	err := c.do(ctx, http.MethodPost, "/auth/register", req, false, &out)
	return out, err
}

func (c *Client) Login(ctx context.Context, email, password string) (AuthResult, error) {
	var out AuthResult
	err := c.do(ctx, http.MethodPost, "/auth/login", map[string]string{"email": email, "password": password}, false, &out)
	return out, err
}

func (c *Client) Profile(ctx context.Context) (User, error) {
	var out User
	err := c.do(ctx, http.MethodGet, "/auth/profile", nil, true, &out)
	return out, err
}

func (c *Client) Providers(ctx context.Context) ([]Provider, error) {
	var out []Provider
	err := c.do(ctx, http.MethodGet, "/providers", nil, false, &out)
	return out, err
}

// Slots lists a provider's slots; date may be empty for all dates.
func (c *Client) Slots(ctx context.Context, providerID int64, date string) ([]Slot, error) {
	path := "/availability/" + strconv.FormatInt(providerID, 10)
	if date != "" {
		path += "?" + url.Values{"date": {date}}.Encode()
	}
	var out []Slot
	err := c.do(ctx, http.MethodGet, path, nil, false, &out)
	return out, err
}

func (c *Client) CreateSlot(ctx context.Context, date, timeSlot string) (Slot, error) {
	var out Slot
	err := c.do(ctx, http.MethodPost, "/availability", map[string]string{"date": date, "timeSlot": timeSlot}, true, &out)
	return out, err
}

func (c *Client) Book(ctx context.Context, providerID int64, date, timeSlot string) (Booking, error) {
	body := map[string]any{"providerId": providerID, "date": date, "timeSlot": timeSlot}
	var out Booking
	err := c.do(ctx, http.MethodPost, "/bookings", body, true, &out)
	return out, err
}

func (c *Client) Cancel(ctx context.Context, bookingID int64) (Booking, error) {
	var out Booking
	err := c.do(ctx, http.MethodPatch, "/bookings/"+strconv.FormatInt(bookingID, 10)+"/cancel", nil, true, &out)
	return out, err
}

func (c *Client) CustomerBookings(ctx context.Context, customerID int64) ([]Booking, error) {
	var out []Booking
	err := c.do(ctx, http.MethodGet, "/bookings/"+strconv.FormatInt(customerID, 10), nil, false, &out)
	return out, err
}

func (c *Client) ProviderBookings(ctx context.Context, providerID int64) ([]Booking, error) {
	var out []Booking
	err := c.do(ctx, http.MethodGet, "/bookings/provider/"+strconv.FormatInt(providerID, 10), nil, true, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, body any, authed bool, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		if c.token == "" {
			return &APIError{Status: http.StatusUnauthorized, Code: "UNAUTHORIZED", Message: "not logged in"}
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return decodeError(resp.StatusCode, raw)
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(status int, raw []byte) error {
	var env struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &env); err == nil && env.Error.Message != "" {
		return &APIError{Status: status, Code: env.Error.Code, Message: env.Error.Message}
	}
	return &APIError{Status: status, Message: strings.TrimSpace(string(raw))}
}
