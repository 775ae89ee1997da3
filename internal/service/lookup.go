package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// ErrLookupNotFound means the catalog has no record for the barcode. The
// operator can still type the fields by hand, so callers treat this as a soft
// miss.
var ErrLookupNotFound = errors.New("barcode not found in product catalog")

// ProductInfo is the catalog's answer for a scanned barcode, used to seed a
// new stock entry's fields.
type ProductInfo struct {
	Name string `json:"name"`
	Unit string `json:"unit"`
	ASIN string `json:"asin"`
}

// ProductLookup is the external barcode/product catalog collaborator.
type ProductLookup interface {
	Lookup(ctx context.Context, barcode string) (*ProductInfo, error)
}

type httpProductLookup struct {
	baseURL string
	client  *http.Client
}

// NewHTTPProductLookup builds a catalog client against baseURL
// (GET {baseURL}/products/{barcode}).
func NewHTTPProductLookup(baseURL string) ProductLookup {
	return &httpProductLookup{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (l *httpProductLookup) Lookup(ctx context.Context, barcode string) (*ProductInfo, error) {
	endpoint := fmt.Sprintf("%s/products/%s", l.baseURL, url.PathEscape(barcode))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build lookup request: %w", err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("product lookup failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var info ProductInfo
		if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
			return nil, fmt.Errorf("failed to decode lookup response: %w", err)
		}
		return &info, nil
	case http.StatusNotFound:
		return nil, ErrLookupNotFound
	default:
		return nil, fmt.Errorf("product lookup returned status %d", resp.StatusCode)
	}
}
