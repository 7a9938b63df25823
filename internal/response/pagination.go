// File: internal/response/pagination.go
package response

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"devflow/internal/models"
	"devflow/internal/services"
)

// Query parameter names
const (
	PageParam   = "page"
	SizeParam   = "page_size"
	SortParam   = "sort"
	FilterParam = "filter"
	SearchParam = "q"
)

// ParsePage reads page and page_size from the query. Missing values are
// left zero so the service applies its defaults; malformed values are
// rejected.
func ParsePage(query url.Values) (models.PageRequest, error) {
	page, err := parseOptionalInt(query, PageParam)
	if err != nil {
		return models.PageRequest{}, err
	}
	size, err := parseOptionalInt(query, SizeParam)
	if err != nil {
		return models.PageRequest{}, err
	}
	return models.PageRequest{Page: page, PageSize: size}, nil
}

// ParseListing reads the common listing parameters of a request
func ParseListing(r *http.Request) (search string, sort models.SortSpec, page models.PageRequest, err error) {
	query := r.URL.Query()
	page, err = ParsePage(query)
	if err != nil {
		return "", "", models.PageRequest{}, err
	}
	sort = models.SortSpec(firstNonEmpty(query.Get(SortParam), query.Get(FilterParam)))
	return strings.TrimSpace(query.Get(SearchParam)), sort, page, nil
}

func parseOptionalInt(query url.Values, name string) (int, error) {
	raw := strings.TrimSpace(query.Get(name))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, services.InvalidInputError(name, "must be a non-negative integer")
	}
	return v, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
