package sheets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/use-agent/pricetag/config"
	"github.com/use-agent/pricetag/models"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

// valueInputOption writes cells verbatim; prices like "$19.99" must not be
// reinterpreted as numbers.
const valueInputOption = "RAW"

// Client reads and writes one spreadsheet.
type Client struct {
	svc           *gsheets.Service
	spreadsheetID string
}

// New creates a Client for cfg.SpreadsheetID. Credentials come from
// cfg.CredentialsJSON, then cfg.CredentialsFile; extra opts are appended
// last and may override them.
func New(ctx context.Context, cfg config.SheetsConfig, opts ...option.ClientOption) (*Client, error) {
	if cfg.SpreadsheetID == "" {
		return nil, errors.New("sheets: spreadsheet ID is required")
	}

	base := []option.ClientOption{option.WithScopes(gsheets.SpreadsheetsScope)}
	switch {
	case cfg.CredentialsJSON != "":
		base = append(base, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	case cfg.CredentialsFile != "":
		base = append(base, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	svc, err := gsheets.NewService(ctx, append(base, opts...)...)
	if err != nil {
		return nil, models.NewExtractionError(models.KindUpstreamAPI, "failed to create sheets client", err)
	}
	return &Client{svc: svc, spreadsheetID: cfg.SpreadsheetID}, nil
}

// ReadColumn returns the first cell of every row in rng. Rows with no value
// come back as "" so indexes line up with sheet rows.
func (c *Client) ReadColumn(ctx context.Context, rng string) ([]string, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, models.NewExtractionError(models.KindUpstreamAPI,
			fmt.Sprintf("failed to read range %s", rng), err)
	}

	out := make([]string, len(resp.Values))
	for i, row := range resp.Values {
		if len(row) > 0 {
			out[i] = strings.TrimSpace(fmt.Sprint(row[0]))
		}
	}
	return out, nil
}

// WriteRows overwrites rng with rows.
func (c *Client) WriteRows(ctx context.Context, rng string, rows [][]string) error {
	values := make([][]any, len(rows))
	for i, row := range rows {
		cells := make([]any, len(row))
		for j, v := range row {
			cells[j] = v
		}
		values[i] = cells
	}

	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, &gsheets.ValueRange{
		Range:  rng,
		Values: values,
	}).ValueInputOption(valueInputOption).Context(ctx).Do()
	if err != nil {
		return models.NewExtractionError(models.KindUpstreamAPI,
			fmt.Sprintf("failed to write range %s", rng), err)
	}
	return nil
}
