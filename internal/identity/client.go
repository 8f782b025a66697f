// Package identity talks to the organization's central user directory. This
// service never stores directory passwords; it only forwards credentials for
// verification and mirrors the returned profile attributes.
package identity

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

var (
	// ErrInvalidCredentials is returned when the directory rejects the
	// username/password pair.
	ErrInvalidCredentials = errors.New("identity: invalid credentials")

	// ErrUnavailable is returned when the directory cannot be reached.
	ErrUnavailable = errors.New("identity: directory unavailable")
)

// Profile is the directory's view of a user, refreshed on every login.
type Profile struct {
	Username   string `json:"username"`
	FullName   string `json:"full_name"`
	BranchBa   string `json:"branch_ba"`
	Department string `json:"department"`
}

// Client authenticates users against the central directory.
type Client interface {
	Authenticate(username, password string) (*Profile, error)
}

type httpClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient builds a directory client. An empty baseURL yields a client
// that reports the directory as unavailable, which leaves only local
// credentials (the bootstrap admin) usable.
func NewHTTPClient(baseURL string) Client {
	return &httpClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *httpClient) Authenticate(username, password string) (*Profile, error) {
	if c.baseURL == "" {
		return nil, ErrUnavailable
	}

	body, err := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	resp, err := c.client.Post(c.baseURL+"/auth", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var profile Profile
		if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
			return nil, fmt.Errorf("%w: malformed profile response: %v", ErrUnavailable, err)
		}
		if profile.Username == "" {
			profile.Username = username
		}
		return &profile, nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, ErrInvalidCredentials
	default:
		return nil, fmt.Errorf("%w: unexpected status %d", ErrUnavailable, resp.StatusCode)
	}
}
