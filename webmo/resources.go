package webmo

import (
	"context"
	"net/url"
)

// Users fetches the list of visible WebMO usernames. Non-administrative
// users see only themselves; group and system administrators see their
// group or the whole system.
func (c *Client) Users(ctx context.Context) ([]string, error) {
	var out struct {
		Users []string `json:"users"`
	}
	if err := c.getJSON(ctx, "/users", nil, &out); err != nil {
		return nil, err
	}
	return out.Users, nil
}

// UserInfo returns the raw information document for the given user.
func (c *Client) UserInfo(ctx context.Context, username string) (map[string]any, error) {
	var out map[string]any
	if err := c.getJSON(ctx, "/users/"+url.PathEscape(username), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Groups fetches the list of visible WebMO group names.
func (c *Client) Groups(ctx context.Context) ([]string, error) {
	var out struct {
		Groups []string `json:"groups"`
	}
	if err := c.getJSON(ctx, "/groups", nil, &out); err != nil {
		return nil, err
	}
	return out.Groups, nil
}

// GroupInfo returns the raw information document for the given group.
func (c *Client) GroupInfo(ctx context.Context, groupname string) (map[string]any, error) {
	var out map[string]any
	if err := c.getJSON(ctx, "/groups/"+url.PathEscape(groupname), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Folder is one entry of the folders resource.
type Folder struct {
	ID   int    `json:"folderID"`
	Name string `json:"folderName"`
}

// Folders lists folders owned by the current user, or by targetUser when
// set (administrative users only).
func (c *Client) Folders(ctx context.Context, targetUser string) ([]Folder, error) {
	query := url.Values{}
	query.Set("user", targetUser)
	var out struct {
		Folders []Folder `json:"folders"`
	}
	if err := c.getJSON(ctx, "/folders", query, &out); err != nil {
		return nil, err
	}
	return out.Folders, nil
}

// Engines lists the computational engines available to the current user or
// to targetUser, with their queues and node/processor limits. The document
// layout is server-defined, so entries are returned unprojected.
func (c *Client) Engines(ctx context.Context, targetUser string) ([]map[string]any, error) {
	query := url.Values{}
	query.Set("user", targetUser)
	var out struct {
		Engines []map[string]any `json:"engines"`
	}
	if err := c.getJSON(ctx, "/engines", query, &out); err != nil {
		return nil, err
	}
	return out.Engines, nil
}

// StatusInfo returns the status document of the WebMO instance, including
// its version and base URLs.
func (c *Client) StatusInfo(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	if err := c.getJSON(ctx, "/status", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
