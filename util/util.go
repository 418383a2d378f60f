// Package util provides utitlity functions.
package util

import (
	"net/url"
	"strings"
)

// URLToDomain extracts domain from given link
func URLToDomain(link string) (string, error) {
	u, err := url.Parse(link)
	if err != nil {
		return "", err
	}

	parts := strings.Split(u.Hostname(), ".")
	if len(parts[0]) > 4 {
		return strings.Join(parts, "."), nil
	}
	if strings.HasPrefix(parts[0], "www") {
		return strings.Join(parts[1:], "."), nil
	}

	return strings.Join(parts, "."), nil
}
