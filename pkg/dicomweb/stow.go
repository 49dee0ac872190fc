// Package dicomweb talks to a DICOMweb archive and reads identifiers from Part 10 files.
package dicomweb

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"

	"go.uber.org/zap"
)

// StoreError reports a non-2xx answer from the archive.
type StoreError struct {
	StatusCode int
	Body       string
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("stow-rs store failed with status %d: %s", e.StatusCode, e.Body)
}

// Client posts instances to a STOW-RS endpoint.
type Client struct {
	storeURL string
	http     *http.Client
	logger   *zap.Logger
}

// NewClient builds a STOW-RS client. A nil httpClient gets one with the given timeout.
func NewClient(storeURL string, httpClient *http.Client, timeout time.Duration, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{storeURL: storeURL, http: httpClient, logger: logger}
}

// Store uploads a single DICOM Part 10 instance.
func (c *Client) Store(ctx context.Context, fileName string, data []byte) error {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := textproto.MIMEHeader{}
	header.Set("Content-Type", "application/dicom")
	part, err := writer.CreatePart(header)
	if err != nil {
		return fmt.Errorf("create dicom part: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return fmt.Errorf("write dicom part: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("close multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.storeURL, body)
	if err != nil {
		return fmt.Errorf("build stow request: %w", err)
	}
	req.Header.Set("Content-Type", fmt.Sprintf(`multipart/related; type="application/dicom"; boundary=%s`, writer.Boundary()))
	req.Header.Set("Accept", "application/dicom+json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("stow request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StoreError{StatusCode: resp.StatusCode, Body: string(snippet)}
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	c.logger.Debug("dicom instance stored", zap.String("file", fileName), zap.Int("bytes", len(data)), zap.Int("status", resp.StatusCode))
	return nil
}
