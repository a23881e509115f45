package ghevents

import (
	"context"
	json "encoding/json/v2"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// ListCommits fetches commits on a repo's default branch since the given
// instant, newest first. Returns the page, the response ETag, and whether
// the content was unchanged (304)
func (c *Client) ListCommits(ctx context.Context, owner, repo string, since time.Time, perPage int, etag string) ([]Commit, string, bool, error) {
	if perPage <= 0 {
		perPage = 100
	}
	p := fmt.Sprintf("/repos/%s/%s/commits?per_page=%d&since=%s",
		owner, repo, perPage, url.QueryEscape(since.UTC().Format(time.RFC3339)))

	var out []Commit
	tag, unchanged, err := c.getJSONTagged(ctx, p, etag, &out)
	return out, tag, unchanged, err
}

// ListPulls fetches recently updated pull requests, most recent first
func (c *Client) ListPulls(ctx context.Context, owner, repo string, perPage int, etag string) ([]Pull, string, bool, error) {
	if perPage <= 0 {
		perPage = 50
	}
	p := fmt.Sprintf("/repos/%s/%s/pulls?state=all&sort=updated&direction=desc&per_page=%d", owner, repo, perPage)

	var out []Pull
	tag, unchanged, err := c.getJSONTagged(ctx, p, etag, &out)
	return out, tag, unchanged, err
}

// ListReleases fetches the most recent releases for a repo
func (c *Client) ListReleases(ctx context.Context, owner, repo string, perPage int, etag string) ([]Release, string, bool, error) {
	if perPage <= 0 {
		perPage = 20
	}
	p := fmt.Sprintf("/repos/%s/%s/releases?per_page=%d", owner, repo, perPage)

	var out []Release
	tag, unchanged, err := c.getJSONTagged(ctx, p, etag, &out)
	return out, tag, unchanged, err
}

func (c *Client) getJSONTagged(ctx context.Context, path, etag string, dst any) (string, bool, error) {
	resp, err := c.Do(ctx, http.MethodGet, path, etag)
	if err != nil {
		return "", false, err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.log.Error().Err(cerr).Str("path", path).Msg("github close body failed")
		}
	}()

	if resp.StatusCode == http.StatusNotModified {
		return resp.Header.Get("ETag"), true, nil
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", false, err
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return "", false, err
	}
	return resp.Header.Get("ETag"), false, nil
}
