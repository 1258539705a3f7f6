package validate

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"
)

// ImageURLChecker verifies that a URL points at an image. The reachability
// probe is a network call, so services take the checker as an interface
// and tests substitute a stub.
type ImageURLChecker interface {
	CheckImageURL(ctx context.Context, url string) error
}

var imageExts = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}

// HTTPImageURLChecker probes the URL with a HEAD request and inspects the
// content type.
type HTTPImageURLChecker struct {
	Client *http.Client
}

// NewHTTPImageURLChecker returns a checker with a 5 second probe timeout.
func NewHTTPImageURLChecker() *HTTPImageURLChecker {
	return &HTTPImageURLChecker{
		Client: &http.Client{Timeout: 5 * time.Second},
	}
}

func (c *HTTPImageURLChecker) CheckImageURL(ctx context.Context, url string) error {
	if err := checkImageExt(url); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return Violations{"Unable to reach the URL."}
	}

	res, err := c.Client.Do(req)
	if err != nil {
		return Violations{"Unable to reach the URL."}
	}
	defer res.Body.Close()

	contentType := res.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return Violations{"URL does not point to an image."}
	}

	return nil
}

// NopImageURLChecker accepts any URL with a valid image extension without
// probing it. Used when the reachability check is disabled by config.
type NopImageURLChecker struct{}

func (NopImageURLChecker) CheckImageURL(_ context.Context, url string) error {
	return checkImageExt(url)
}

func checkImageExt(url string) error {
	ext := strings.ToLower(path.Ext(url))
	for _, allowed := range imageExts {
		if ext == allowed {
			return nil
		}
	}

	return Violations{fmt.Sprintf("URL does not have a valid image file extension (%s).", strings.Join(imageExts, ", "))}
}
