// Package common provides shared HTTP utility functions for API handlers.
package common

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"unicode"

	"github.com/go-chi/chi/v5"
)

// GetAndValidateURLParam returns the path-unescaped value of a chi URL
// parameter. Target names, backend names, property names and macro tokens
// never contain whitespace, so empty values and values with whitespace are
// rejected.
func GetAndValidateURLParam(r *http.Request, paramName string) (string, error) {
	value, err := url.PathUnescape(chi.URLParam(r, paramName))
	if err != nil {
		return "", fmt.Errorf("invalid URL encoding in %s", paramName)
	}
	if strings.TrimSpace(value) == "" {
		return "", fmt.Errorf("%s cannot be empty", paramName)
	}
	if strings.IndexFunc(value, unicode.IsSpace) >= 0 {
		return "", fmt.Errorf("%s cannot contain whitespace", paramName)
	}
	return value, nil
}
