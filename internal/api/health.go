package api

import (
	"context"

	http "github.com/bogdanfinn/fhttp"
	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/chatwidget/internal/errors"
	"github.com/diogo/chatwidget/internal/models"
)

// Health queries /health
func (c *Client) Health(ctx context.Context) (*models.HealthResponse, error) {
	body, err := c.do(ctx, http.MethodGet, models.PathHealth, nil)
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(body) {
		return nil, apierrors.NewParseError("response is not valid JSON", models.PathHealth)
	}

	result := gjson.ParseBytes(body)
	status := result.Get(PathStatus)
	if !status.Exists() {
		return nil, apierrors.NewParseError("missing status field", models.PathHealth)
	}

	return &models.HealthResponse{
		Status:  status.String(),
		Version: result.Get(PathVersion).String(),
	}, nil
}

// Version queries /version
func (c *Client) Version(ctx context.Context) (*models.VersionResponse, error) {
	body, err := c.do(ctx, http.MethodGet, models.PathVersion, nil)
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(body) {
		return nil, apierrors.NewParseError("response is not valid JSON", models.PathVersion)
	}

	version := gjson.GetBytes(body, PathVersion)
	if !version.Exists() {
		return nil, apierrors.NewParseError("missing version field", models.PathVersion)
	}
	return &models.VersionResponse{Version: version.String()}, nil
}
