// Package remote implements a detector backed by a hosted NER inference
// service speaking a minimal JSON protocol: POST {"text": ...} to the
// endpoint, receive {"spans": [{"start", "end", "label", "text"}, ...]}.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/privmask/go-anonymizer/anonymizer"
)

// DefaultTimeout bounds a single inference request when the caller's context
// carries no deadline of its own.
const DefaultTimeout = 60 * time.Second

// Detector calls a remote inference endpoint for entity spans.
type Detector struct {
	// URL is the inference endpoint.
	URL string
	// Client is the HTTP client used for requests; http.DefaultClient when nil.
	Client *http.Client
}

// Compile time assert that Detector implements anonymizer.Detector.
var _ anonymizer.Detector = &Detector{}

// New returns a Detector for the given endpoint URL.
func New(url string) *Detector {
	return &Detector{URL: url}
}

type predictRequest struct {
	Text string `json:"text"`
}

type predictResponse struct {
	Spans []anonymizer.RawSpan `json:"spans"`
}

// Predict sends text to the remote endpoint and returns the detected spans.
// Offsets in the response are trusted as byte offsets into text; the
// placeholder codec re-reads surface forms from the source anyway.
func (d *Detector) Predict(ctx context.Context, text string) ([]anonymizer.RawSpan, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultTimeout)
		defer cancel()
	}

	body, err := json.Marshal(predictRequest{Text: text})
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode predict request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.URL, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to build request for %q", d.URL)
	}
	req.Header.Set("Content-Type", "application/json")

	client := d.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "predict request to %q failed", d.URL)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, errors.Errorf("predict request to %q returned %s: %s",
			d.URL, resp.Status, bytes.TrimSpace(payload))
	}

	var decoded predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, errors.Wrapf(err, "failed to decode predict response from %q", d.URL)
	}
	return decoded.Spans, nil
}
