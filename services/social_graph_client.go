// services/social_graph_client.go
package services

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"

	"arc-mindshare-system/utils"
)

// SocialGraphClient talks to the external social graph provider. Used only as
// the last-resort avatar source; every caller must tolerate nil results.
type SocialGraphClient struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

type SocialGraphProfile struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

func NewSocialGraphClient(baseURL, token string) *SocialGraphClient {
	return &SocialGraphClient{
		BaseURL: baseURL,
		Token:   token,
		Client:  utils.HTTPClient,
	}
}

// GetProfile fetches profile metadata for a handle. A 404 is not an error —
// it returns (nil, nil) so callers can fall through to the next variant.
func (c *SocialGraphClient) GetProfile(handle string) (*SocialGraphProfile, error) {
	endpoint := fmt.Sprintf("%s/v1/profiles/%s", c.BaseURL, url.PathEscape(handle))

	req, err := http.NewRequest("GET", endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		log.Printf("[SOCIAL_GRAPH] Provider returned %d for %q: %s", resp.StatusCode, handle, string(body))
		return nil, fmt.Errorf("social graph provider returned %d", resp.StatusCode)
	}

	var out SocialGraphProfile
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode social graph response: %w", err)
	}
	return &out, nil
}
