package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/beanscan/model-updater/internal/model"
)

// Request constants
const (
	DefaultTimeout = 15 * time.Second
	UserAgent      = "beanscan-model-updater/1.0"
)

// releaseDescriptor is the registry reply. Only the tag field is required;
// every other field is ignored so new registry fields never break the client.
type releaseDescriptor struct {
	TagName string `json:"tag_name"`
}

// Resolver queries the release registry for the latest model version tag.
// It performs no retries; retry policy belongs to the update session.
type Resolver struct {
	url    string
	client *http.Client
}

// New creates a resolver for the given registry URL
func New(url string) *Resolver {
	return NewWithClient(url, &http.Client{Timeout: DefaultTimeout})
}

// NewWithClient creates a resolver using a caller-provided HTTP client
func NewWithClient(url string, client *http.Client) *Resolver {
	return &Resolver{url: url, client: client}
}

// LatestVersion performs one registry call and extracts the version tag.
// Failures are classified into the shared error taxonomy.
func (r *Resolver) LatestVersion(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return "", model.NewUpdateError(model.ErrUnknown, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", UserAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return "", model.Classify(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", model.ClassifyStatus(resp.StatusCode)
	}

	var descriptor releaseDescriptor
	if err := json.NewDecoder(resp.Body).Decode(&descriptor); err != nil {
		return "", model.NewUpdateError(model.ErrInvalidResponse, err)
	}

	tag := strings.TrimSpace(descriptor.TagName)
	if tag == "" {
		return "", model.NewUpdateError(model.ErrInvalidResponse, fmt.Errorf("descriptor has no version tag"))
	}
	return tag, nil
}
