package api

import (
	"fmt"
	"net/url"
	"strings"
)

func PercentEncode(s string) string {
	s = url.QueryEscape(s)
	return strings.ReplaceAll(s, "+", "%20")
}

// PathEscape escapes a path segment such as a community handle.
func PathEscape(s string) string {
	return url.PathEscape(s)
}

func formatPath(path string, args ...any) string {
	return fmt.Sprintf(path, args...)
}
