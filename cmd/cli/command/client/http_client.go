package client

// http_client.go talks to the YaMDb HTTP API on behalf of the CLI commands.

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"yamdb/internal/microservices/http-api/dto"
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	StatusCode int
	Message    string              `json:"error"`
	Fields     map[string][]string `json:"fields"`
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if len(e.Fields) == 0 {
		return fmt.Sprintf("%d: %s", e.StatusCode, msg)
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], ", "))
	}
	return fmt.Sprintf("%d: %s (%s)", e.StatusCode, msg, strings.Join(parts, "; "))
}

// IsUnauthorized reports whether err is a 401 from the server.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

// NewHTTPClient builds a client for the API rooted at apiURL, e.g.
// http://localhost:8080/api/v1
func NewHTTPClient(apiURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(apiURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *HTTPClient) SetToken(token string) {
	c.token = token
}

// do sends body as JSON and decodes a JSON answer into out when out is not nil.
func (c *HTTPClient) do(method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		_ = json.NewDecoder(resp.Body).Decode(apiErr)
		return apiErr
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Auth

func (c *HTTPClient) Signup(username, email string) (*dto.SignupResponse, error) {
	var result dto.SignupResponse
	err := c.do(http.MethodPost, "/auth/signup/", dto.SignupRequest{Username: username, Email: email}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) RequestCode(email string) error {
	return c.do(http.MethodPost, "/auth/email/", dto.EmailConfirmationRequest{Email: email}, nil)
}

func (c *HTTPClient) ExchangeCode(email, code string) (*dto.TokenResponse, error) {
	var result dto.TokenResponse
	err := c.do(http.MethodPost, "/auth/token/", dto.TokenRequest{Email: email, ConfirmationCode: code}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) Login(username, password string) (*dto.TokenResponse, error) {
	var result dto.TokenResponse
	err := c.do(http.MethodPost, "/auth/login/", dto.LoginRequest{Username: username, Password: password}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) Refresh(refreshToken string) (*dto.TokenResponse, error) {
	var result dto.TokenResponse
	if err := c.do(http.MethodPost, "/auth/refresh/", dto.RefreshRequest{Refresh: refreshToken}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) Revoke(refreshToken string) error {
	return c.do(http.MethodPost, "/auth/revoke/", dto.RefreshRequest{Refresh: refreshToken}, nil)
}

// Titles

type TitleFilter struct {
	Genre    string
	Category string
	Year     int
	Name     string
	Page     int
}

func (f TitleFilter) query() string {
	q := url.Values{}
	if f.Genre != "" {
		q.Set("genre", f.Genre)
	}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	if f.Year != 0 {
		q.Set("year", strconv.Itoa(f.Year))
	}
	if f.Name != "" {
		q.Set("name", f.Name)
	}
	if f.Page > 1 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

func (c *HTTPClient) ListTitles(filter TitleFilter) (*dto.Paginated[dto.TitleResponse], error) {
	var result dto.Paginated[dto.TitleResponse]
	if err := c.do(http.MethodGet, "/titles/"+filter.query(), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) GetTitle(id int64) (*dto.TitleResponse, error) {
	var result dto.TitleResponse
	if err := c.do(http.MethodGet, fmt.Sprintf("/titles/%d/", id), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Reviews

func (c *HTTPClient) ListReviews(titleID int64, page int) (*dto.Paginated[dto.ReviewResponse], error) {
	path := fmt.Sprintf("/titles/%d/reviews/", titleID)
	if page > 1 {
		path += "?page=" + strconv.Itoa(page)
	}
	var result dto.Paginated[dto.ReviewResponse]
	if err := c.do(http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) AddReview(titleID int64, text string, score int) (*dto.ReviewResponse, error) {
	var result dto.ReviewResponse
	err := c.do(http.MethodPost, fmt.Sprintf("/titles/%d/reviews/", titleID), dto.CreateReviewDTO{Text: text, Score: score}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) DeleteReview(titleID, reviewID int64) error {
	return c.do(http.MethodDelete, fmt.Sprintf("/titles/%d/reviews/%d/", titleID, reviewID), nil, nil)
}

// Users

func (c *HTTPClient) Me() (*dto.UserResponse, error) {
	var result dto.UserResponse
	if err := c.do(http.MethodGet, "/users/me/", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) UpdateMe(patch dto.UpdateUserDTO) (*dto.UserResponse, error) {
	var result dto.UserResponse
	if err := c.do(http.MethodPatch, "/users/me/", patch, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
