// Package ticketsvc é o cliente HTTP da API de tickets usado pelo painel
// (implementa dashboard.TicketBackend).
package ticketsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"engage-api/internal/dashboard"
	"engage-api/internal/domain"
	"engage-api/internal/http/client"
	"engage-api/internal/http/httperr"
	"engage-api/internal/observability/logger"

	"go.uber.org/zap"
)

var _ dashboard.TicketBackend = &Client{}

// APIError é uma resposta não-2xx da API, decodificada do envelope de erro.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ticket api: %d %s: %s", e.Status, e.Code, e.Message)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// Client fala com /v1/companies/{companyId}/tickets e /team-members.
// X-Request-Id é propagado pelo transport.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	actorID    string
}

type Option func(*Client)

// WithTimeout overrides the default request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient = client.NewCustomHTTPClient(d) }
}

// WithHTTPClient replaces the underlying client (tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithActor envia X-Company-Id/X-Actor-Id, exigidos quando o token é s2s.
func WithActor(actorID string) Option {
	return func(c *Client) { c.actorID = actorID }
}

// NewClient creates a client. token is sent as Bearer (JWT or s2s).
func NewClient(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		httpClient: client.NewInternalHTTPClient(),
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) companyURL(companyID string, parts ...string) string {
	segments := []string{c.baseURL, "v1", "companies", url.PathEscape(companyID)}
	for _, p := range parts {
		segments = append(segments, url.PathEscape(p))
	}
	return strings.Join(segments, "/")
}

// do executa a requisição e decodifica a resposta em out (quando não nil).
func (c *Client) do(ctx context.Context, action, method, companyID, endpoint string, body, out interface{}) error {
	log := logger.GetLogger(ctx)

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal payload: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.actorID != "" {
		req.Header.Set("X-Company-Id", companyID)
		req.Header.Set("X-Actor-Id", c.actorID)
	}

	log.Debug(ctx, "calling ticket api",
		logger.Module("ticketsvc"),
		logger.Action(action),
		zap.String("method", method),
		zap.String("url", endpoint),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error(ctx, "ticket api request failed",
			logger.Module("ticketsvc"),
			logger.Action(action),
			zap.Error(err),
		)
		return fmt.Errorf("ticket api request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode, Code: httperr.ErrCodeUpstreamError, Message: http.StatusText(resp.StatusCode)}
		var envelope httperr.ErrorResponse
		if json.NewDecoder(resp.Body).Decode(&envelope) == nil && envelope.Error != nil {
			apiErr.Code = envelope.Error.Code
			apiErr.Message = envelope.Error.Message
		}
		log.Warn(ctx, "ticket api returned error",
			logger.Module("ticketsvc"),
			logger.Action(action),
			zap.Int("status", resp.StatusCode),
			zap.String("error_code", apiErr.Code),
		)
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) CreateTicket(ctx context.Context, companyID string, req *domain.CreateTicketRequest) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := c.do(ctx, "create_ticket", http.MethodPost, companyID, c.companyURL(companyID, "tickets"), req, &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (c *Client) UpdateTicket(ctx context.Context, companyID, ticketID string, req *domain.UpdateTicketRequest) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := c.do(ctx, "update_ticket", http.MethodPatch, companyID, c.companyURL(companyID, "tickets", ticketID), req, &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (c *Client) AddNote(ctx context.Context, companyID, ticketID string, req *domain.AddNoteRequest) (*domain.Note, error) {
	var note domain.Note
	if err := c.do(ctx, "add_note", http.MethodPost, companyID, c.companyURL(companyID, "tickets", ticketID, "notes"), req, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

func (c *Client) GetTicketDetails(ctx context.Context, companyID, ticketID string) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := c.do(ctx, "get_ticket", http.MethodGet, companyID, c.companyURL(companyID, "tickets", ticketID), nil, &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (c *Client) GetTeamMembers(ctx context.Context, companyID string) ([]domain.TeamMember, error) {
	var resp domain.TeamMembersResponse
	if err := c.do(ctx, "get_team_members", http.MethodGet, companyID, c.companyURL(companyID, "team-members"), nil, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		resp.Data = []domain.TeamMember{}
	}
	return resp.Data, nil
}
