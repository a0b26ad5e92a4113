// Package client is the API client wrapper for the contacts server.
//
// Every protected call attaches the stored bearer token. A 401 on a protected call clears
// the CredentialStore, fires the session-expired callback and returns an authentication
// failure; every other failure is normalized into an *apperr.Error with a one-line message.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/contactbook/contactbook-go/internal/apperr"
	"github.com/contactbook/contactbook-go/internal/model"
	"github.com/contactbook/contactbook-go/internal/validation"
)

const (
	DefaultBaseURL = "http://localhost:5000"
	DefaultTimeout = 30 * time.Second

	maxErrorBody = 64 << 10
)

// Messages surfaced to the user.
const (
	MsgSessionExpired  = "Session expired. Please log in again."
	MsgNotLoggedIn     = "Not logged in"
	MsgUnreachable     = "Unable to reach server"
	MsgInvalidResponse = "Invalid response from server"
)

// Client talks to the contacts REST API.
type Client struct {
	baseURL          string
	httpClient       *http.Client
	store            CredentialStore
	logger           *slog.Logger
	onSessionExpired func()

	creates singleflight.Group
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides DefaultBaseURL.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the logger used for failures the caller cannot see, such as a store that fails to clear.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithOnSessionExpired registers fn to run after a 401 has cleared the store.
func WithOnSessionExpired(fn func()) Option {
	return func(c *Client) {
		c.onSessionExpired = fn
	}
}

// New creates a Client backed by store.
func New(store CredentialStore, opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		store:      store,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the server address requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Session returns the stored session, or ErrNoSession.
func (c *Client) Session() (Session, error) {
	return c.store.Get()
}

// Login authenticates and stores the resulting session.
func (c *Client) Login(ctx context.Context, email, password string) (Session, error) {
	req := model.LoginRequest{Email: validation.NormalizeEmail(email), Password: password}
	if err := validation.Validate(req); err != nil {
		return Session{}, err
	}

	var resp model.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", req, &resp, false); err != nil {
		return Session{}, err
	}
	return c.saveSession(resp)
}

// Register creates an account and stores the resulting session. name may be empty.
func (c *Client) Register(ctx context.Context, email, password, name string) (Session, error) {
	req := model.RegisterRequest{Email: validation.NormalizeEmail(email), Password: password, Name: strings.TrimSpace(name)}
	if err := validation.Validate(req); err != nil {
		return Session{}, err
	}

	var resp model.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", req, &resp, false); err != nil {
		return Session{}, err
	}
	return c.saveSession(resp)
}

// Logout clears the stored session. Tokens are not revoked server-side.
func (c *Client) Logout() error {
	return c.store.Clear()
}

// Me fetches the caller's profile and refreshes the cached copy.
func (c *Client) Me(ctx context.Context) (model.UserResponse, error) {
	var user model.UserResponse
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &user, true); err != nil {
		return model.UserResponse{}, err
	}

	if sess, err := c.store.Get(); err == nil {
		sess.User = user
		if err := c.store.Set(sess); err != nil {
			c.logger.Warn("failed to refresh cached profile", "error", err)
		}
	}
	return user, nil
}

// ListContacts returns the caller's contacts.
func (c *Client) ListContacts(ctx context.Context) ([]model.Contact, error) {
	contacts := make([]model.Contact, 0)
	if err := c.do(ctx, http.MethodGet, "/contacts", nil, &contacts, true); err != nil {
		return nil, err
	}
	return contacts, nil
}

// CreateContact validates in and creates a contact. Identical submissions made while one
// is already in flight share its result instead of creating a duplicate.
func (c *Client) CreateContact(ctx context.Context, in model.ContactInput) (model.Contact, error) {
	in.Email = validation.NormalizeEmail(in.Email)
	if err := validation.Validate(in); err != nil {
		return model.Contact{}, err
	}

	sess, err := c.session()
	if err != nil {
		return model.Contact{}, err
	}

	key, err := json.Marshal(struct {
		Token string
		model.ContactInput
	}{sess.Token, in})
	if err != nil {
		return model.Contact{}, apperr.Wrap(apperr.KindServer, MsgInvalidResponse, err)
	}

	// The shared request must outlive any single caller's context; each caller
	// still stops waiting when its own context ends.
	sharedCtx := context.WithoutCancel(ctx)
	ch := c.creates.DoChan(string(key), func() (any, error) {
		var contact model.Contact
		err := c.do(sharedCtx, http.MethodPost, "/contacts", in, &contact, true)
		return contact, err
	})

	select {
	case <-ctx.Done():
		return model.Contact{}, apperr.Wrap(apperr.KindServer, MsgUnreachable, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return model.Contact{}, res.Err
		}
		return res.Val.(model.Contact), nil
	}
}

// UpdateContact validates in and replaces the contact's fields.
func (c *Client) UpdateContact(ctx context.Context, id string, in model.ContactInput) (model.Contact, error) {
	in.Email = validation.NormalizeEmail(in.Email)
	if err := validation.Validate(in); err != nil {
		return model.Contact{}, err
	}

	var contact model.Contact
	if err := c.do(ctx, http.MethodPut, "/contacts/"+url.PathEscape(id), in, &contact, true); err != nil {
		return model.Contact{}, err
	}
	return contact, nil
}

// DeleteContact removes a contact.
func (c *Client) DeleteContact(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/contacts/"+url.PathEscape(id), nil, nil, true)
}

func (c *Client) saveSession(resp model.AuthResponse) (Session, error) {
	sess := Session{Token: resp.Token, User: resp.User}
	if err := c.store.Set(sess); err != nil {
		return Session{}, apperr.Wrap(apperr.KindServer, "Unable to save session", err)
	}
	return sess, nil
}

func (c *Client) session() (Session, error) {
	sess, err := c.store.Get()
	if err != nil {
		if errors.Is(err, ErrNoSession) {
			return Session{}, apperr.New(apperr.KindAuthentication, MsgNotLoggedIn)
		}
		return Session{}, apperr.Wrap(apperr.KindServer, "Unable to read session", err)
	}
	return sess, nil
}

// do sends one request. body is JSON-encoded when non-nil; out is decoded from a 2xx body
// when non-nil.
func (c *Client) do(ctx context.Context, method, path string, body, out any, protected bool) error {
	var token string
	if protected {
		sess, err := c.session()
		if err != nil {
			return err
		}
		token = sess.Token
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return apperr.Wrap(apperr.KindServer, "Unable to encode request", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return apperr.Wrap(apperr.KindServer, MsgUnreachable, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperr.Wrap(apperr.KindServer, MsgUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized && protected {
		c.expireSession()
		return apperr.New(apperr.KindAuthentication, MsgSessionExpired)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperr.Wrap(apperr.KindServer, MsgInvalidResponse, err)
	}
	return nil
}

func (c *Client) expireSession() {
	if err := c.store.Clear(); err != nil {
		c.logger.Error("failed to clear expired session", "error", err)
	}
	if c.onSessionExpired != nil {
		c.onSessionExpired()
	}
}

type errorBody struct {
	Error  string            `json:"error"`
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields"`
}

// decodeError turns a non-2xx response into an *apperr.Error. The kind comes from the
// body's code when present and from the status otherwise.
func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var body errorBody
	if err := json.Unmarshal(raw, &body); err != nil || body.Error == "" {
		return &apperr.Error{
			Kind:    apperr.KindFromStatus(resp.StatusCode),
			Message: fmt.Sprintf("Request failed with status: %d", resp.StatusCode),
		}
	}

	kind, ok := apperr.ParseKind(body.Code)
	if !ok {
		kind = apperr.KindFromStatus(resp.StatusCode)
	}
	return &apperr.Error{Kind: kind, Message: body.Error, Fields: body.Fields}
}
