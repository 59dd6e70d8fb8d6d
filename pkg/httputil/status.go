package httputil

import (
	"io"
	"net/http"
	"strings"

	"github.com/matzehuels/stationmap/pkg/errors"
)

// maxErrorBody bounds how much of an error response is quoted.
const maxErrorBody = 512

// CheckResponse returns nil for 2xx responses and a coded error otherwise.
// Server errors and rate limiting are wrapped in [RetryableError]. The body
// is not closed.
func CheckResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	msg := strings.TrimSpace(string(snippet))
	url := ""
	if resp.Request != nil && resp.Request.URL != nil {
		url = resp.Request.URL.String()
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return errors.New(errors.ErrCodeNotFound, "GET %s: %s", url, resp.Status)
	case resp.StatusCode == http.StatusTooManyRequests:
		return Retryable(errors.New(errors.ErrCodeRateLimited, "GET %s: %s", url, resp.Status))
	case resp.StatusCode >= 500:
		return Retryable(errors.New(errors.ErrCodeNetwork, "GET %s: %s %s", url, resp.Status, msg))
	}
	return errors.New(errors.ErrCodeInvalidInput, "GET %s: %s %s", url, resp.Status, msg)
}
