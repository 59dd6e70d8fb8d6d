// Package httputil provides the HTTP plumbing shared by the dataset loaders
// and the API server.
//
// # Retry
//
// [Retry] re-runs an operation with exponential backoff, but only when the
// failure is wrapped in a [RetryableError]:
//
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return &httputil.RetryableError{Err: err}
//	    }
//	    defer resp.Body.Close()
//	    return httputil.CheckResponse(resp)
//	})
//
// # Status classification
//
// [CheckResponse] turns a non-2xx response into an error: 5xx and 429
// responses are retryable, 404 is reported as not found and every other
// status as invalid input.
package httputil
