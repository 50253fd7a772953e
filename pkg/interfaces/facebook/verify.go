package facebook

import (
	"context"
	"encoding/json"
	"net/url"
)

// VerifyCredentials looks up the configured page with the configured token.
func (c *FacebookClient) VerifyCredentials(ctx context.Context) (*PageInfo, error) {
	data, err := c.get(ctx, "/"+c.config.PageID, url.Values{"fields": {"id,name"}})
	if err != nil {
		return nil, err
	}

	var info PageInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, malformed("failed to decode page info", err)
	}
	if info.ID == "" {
		return nil, malformed("page info without id", nil)
	}
	return &info, nil
}

// CheckPermissions lists the permissions granted to the token.
func (c *FacebookClient) CheckPermissions(ctx context.Context) ([]string, error) {
	data, err := c.get(ctx, "/me/permissions", nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Data []struct {
			Permission string `json:"permission"`
			Status     string `json:"status"`
		} `json:"data"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, malformed("failed to decode permissions", err)
	}

	granted := []string{}
	for _, p := range resp.Data {
		if p.Status == "granted" {
			granted = append(granted, p.Permission)
		}
	}
	return granted, nil
}
