package utils

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// JobPostingFetcherInterface is the opaque URL-to-text collaborator. The
// service layer only needs the posting's text; how it is extracted from the
// page is not this module's business.
type JobPostingFetcherInterface interface {
	FetchPosting(ctx context.Context, url string) (string, error)
}

type HTTPJobPostingFetcher struct {
	client *http.Client
}

func NewHTTPJobPostingFetcher() JobPostingFetcherInterface {
	return &HTTPJobPostingFetcher{
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

func (f *HTTPJobPostingFetcher) FetchPosting(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrJobPostingFetch, err)
	}
	req.Header.Set("User-Agent", "rolepeek/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrJobPostingFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrJobPostingFetch, resp.StatusCode)
	}

	// Postings of interest fit well below this; cap to keep prompts bounded.
	body, err := io.ReadAll(io.LimitReader(resp.Body, 512*1024))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrJobPostingFetch, err)
	}

	return string(body), nil
}
