// Package uci resolves datasets from the UCI Machine Learning Repository
// catalog API.
//
// The catalog answers GET {base}/api/dataset?id=N with a JSON envelope whose
// data object carries the dataset name, the URL of its CSV file and the
// role of every variable (Feature, Target, ID, Other).
package uci

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"heartetl/internal/datasource/httpds"
)

// Variable roles used by the catalog.
const (
	RoleFeature = "Feature"
	RoleTarget  = "Target"
	RoleID      = "ID"
)

// ErrDatasetNotFound is returned (wrapped) when the catalog has no dataset
// with the requested id, or the dataset has no downloadable data file.
var ErrDatasetNotFound = errors.New("uci: dataset not found")

// Variable describes one column of a dataset.
type Variable struct {
	Name string `json:"name"`
	Role string `json:"role"`
	Type string `json:"type"`
}

// Dataset is the catalog entry of one dataset.
type Dataset struct {
	ID        int        `json:"uci_id"`
	Name      string     `json:"name"`
	DataURL   string     `json:"data_url"`
	Variables []Variable `json:"variables"`
}

// Columns returns the feature columns followed by the target columns, in
// catalog order. ID and other variables are left out.
func (d Dataset) Columns() []string {
	var features, targets []string
	for _, v := range d.Variables {
		switch v.Role {
		case RoleFeature:
			features = append(features, v.Name)
		case RoleTarget:
			targets = append(targets, v.Name)
		}
	}
	return append(features, targets...)
}

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Client queries the catalog.
type Client struct {
	http    *httpds.Client
	baseURL string
}

// NewClient returns a Client for the catalog at baseURL
// (e.g. https://archive.ics.uci.edu).
func NewClient(hc *httpds.Client, baseURL string) *Client {
	return &Client{http: hc, baseURL: strings.TrimRight(baseURL, "/")}
}

// Dataset fetches the catalog entry for id. A dataset that is unknown or
// not available for import yields an error wrapping ErrDatasetNotFound.
func (c *Client) Dataset(ctx context.Context, id int) (Dataset, error) {
	u := fmt.Sprintf("%s/api/dataset?%s", c.baseURL, url.Values{"id": {fmt.Sprint(id)}}.Encode())

	rc, err := c.http.Fetch(ctx, u)
	if err != nil {
		if httpds.IsStatus(err, http.StatusNotFound) {
			return Dataset{}, fmt.Errorf("%w: id=%d", ErrDatasetNotFound, id)
		}
		return Dataset{}, fmt.Errorf("uci: fetch metadata: %w", err)
	}
	defer rc.Close()

	var env envelope
	if err := json.NewDecoder(io.LimitReader(rc, 8<<20)).Decode(&env); err != nil {
		return Dataset{}, fmt.Errorf("uci: decode metadata: %w", err)
	}
	if env.Status != 200 {
		msg := env.Message
		if msg == "" {
			msg = fmt.Sprintf("status %d", env.Status)
		}
		return Dataset{}, fmt.Errorf("%w: id=%d: %s", ErrDatasetNotFound, id, msg)
	}

	var d Dataset
	if err := json.Unmarshal(env.Data, &d); err != nil {
		return Dataset{}, fmt.Errorf("uci: decode dataset: %w", err)
	}
	if d.DataURL == "" {
		return Dataset{}, fmt.Errorf("%w: %q (id=%d) exists but is not available for import", ErrDatasetNotFound, d.Name, id)
	}
	return d, nil
}
