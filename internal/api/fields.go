package api

import (
	"context"
	"net/http"

	"github.com/yanizio/sitebuilder/internal/site"
)

// UpdateSectionFields replaces a section's field content in one call.  The
// same payload sent twice leaves the same state, so the PUT is retried.
func (c *Client) UpdateSectionFields(ctx context.Context, id site.ID, fields []site.FieldValue) error {
	if fields == nil {
		fields = []site.FieldValue{}
	}
	body := struct {
		Fields []site.FieldValue `json:"fields"`
	}{fields}
	return c.doJSON(ctx, ErrPersistence, "update fields", http.MethodPut,
		c.endpoint(nil, "sections", id.String(), "fields"), body, nil)
}

// UpdateField writes one field by its backend id and returns the stored
// representation.
func (c *Client) UpdateField(ctx context.Context, id site.ID, value string) (*site.Field, error) {
	if id == "" {
		return nil, &Error{Kind: ErrPersistence, Op: "update field", Detail: "field has no backend id"}
	}
	body := struct {
		Value string `json:"value"`
	}{value}
	var f site.Field
	if err := c.doJSON(ctx, ErrPersistence, "update field", http.MethodPatch,
		c.endpoint(nil, "fields", id.String()), body, &f); err != nil {
		return nil, err
	}
	return &f, nil
}
