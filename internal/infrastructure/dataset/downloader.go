package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"triviahub/internal/bootstrap/logging"
	"triviahub/internal/domain/trivia"
	"triviahub/internal/errs"
)

// DefaultSourceURL is the Jeopardy dataset the reference deployment ingests.
const DefaultSourceURL = "https://raw.githubusercontent.com/russmatney/go-jeopardy/master/JEOPARDY_CSV.csv"

type Downloader struct {
	client *http.Client
}

func NewDownloader() *Downloader {
	return &Downloader{
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

// FetchCSV downloads the raw CSV text in one shot.
func (d *Downloader) FetchCSV(ctx context.Context, url string) (string, error) {
	if ctx == nil {
		return "", errors.New("context is required")
	}
	if strings.TrimSpace(url) == "" {
		url = DefaultSourceURL
	}

	logging.Info(
		logging.WithAttrs(ctx, slog.String("component", "dataset.downloader")),
		"downloading csv",
		slog.String("url", url),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", errs.Wrap(err, "build csv request")
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return "", errs.Wrap(err, "download csv")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("csv download returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errs.Wrap(err, "read csv body")
	}
	return string(body), nil
}

// ParseRows reads header plus data rows into trimmed-key rows. The source
// file carries leading spaces in its header names (" Air Date", ...).
func ParseRows(content string) ([]trivia.Row, error) {
	reader := csv.NewReader(strings.NewReader(content))
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, errs.Wrap(err, "read csv header")
	}
	for i, name := range header {
		header[i] = strings.TrimSpace(name)
	}

	var rows []trivia.Row
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errs.Wrap(err, "read csv record")
		}

		row := make(trivia.Row, len(header))
		for i, name := range header {
			if i >= len(record) {
				break
			}
			row[name] = strings.TrimSpace(record[i])
		}
		rows = append(rows, row)
	}
	return rows, nil
}
