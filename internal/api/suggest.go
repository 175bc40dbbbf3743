package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/yanizio/sitebuilder/internal/site"
)

const csrfHeader = "X-CSRFToken"

// csrfToken fetches a fresh anti-forgery token.  The API answers with
// {"csrfToken": "..."} and also sets the csrftoken cookie; either is
// accepted.
func (c *Client) csrfToken(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(nil, "csrf"), nil)
	if err != nil {
		return "", &Error{Kind: ErrSuggestion, Op: "csrf", Err: err}
	}
	c.decorate(req.Header)

	resp, err := c.rc.HTTPClient.Do(req)
	if err != nil {
		return "", &Error{Kind: ErrSuggestion, Op: "csrf", Err: err}
	}
	var body struct {
		Token string `json:"csrfToken"`
	}
	for _, ck := range resp.Cookies() {
		if ck.Name == "csrftoken" {
			body.Token = ck.Value
		}
	}
	if err := decode(resp, ErrSuggestion, "csrf", &body); err != nil {
		return "", err
	}
	if body.Token == "" {
		return "", &Error{Kind: ErrSuggestion, Op: "csrf", Detail: "empty token"}
	}
	return body.Token, nil
}

// Suggest asks the builder for suggested field values for a section.  A key
// missing from the answer means "no opinion".  An empty answer is a
// failure.
func (c *Client) Suggest(ctx context.Context, id site.ID, locale, tone string) (map[string]string, error) {
	token, err := c.csrfToken(ctx)
	if err != nil {
		return nil, err
	}

	in, err := json.Marshal(struct {
		Locale string `json:"locale"`
		Tone   string `json:"tone"`
	}{locale, tone})
	if err != nil {
		return nil, &Error{Kind: ErrSuggestion, Op: "suggest", Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.endpoint(nil, "sections", id.String(), "suggest"), bytes.NewReader(in))
	if err != nil {
		return nil, &Error{Kind: ErrSuggestion, Op: "suggest", Err: err}
	}
	c.decorate(req.Header)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(csrfHeader, token)
	req.AddCookie(&http.Cookie{Name: "csrftoken", Value: token})

	resp, err := c.rc.HTTPClient.Do(req)
	if err != nil {
		return nil, &Error{Kind: ErrSuggestion, Op: "suggest", Err: err}
	}
	var out struct {
		Suggested map[string]string `json:"suggested"`
	}
	if err := decode(resp, ErrSuggestion, "suggest", &out); err != nil {
		return nil, err
	}
	if len(out.Suggested) == 0 {
		return nil, &Error{Kind: ErrSuggestion, Op: "suggest", Status: resp.StatusCode, Detail: "no suggestions"}
	}
	return out.Suggested, nil
}
