// Package headers parses "Key: Value" request header arguments.
package headers

import (
	"fmt"
	"net/http"
	"strings"
)

// Parse converts "Key: Value" lines into a header map with canonical keys.
// A line without a colon or with an empty key is an error. Later lines win.
func Parse(lines []string) (map[string]string, error) {
	if len(lines) == 0 {
		return nil, nil
	}
	m := make(map[string]string, len(lines))
	for _, line := range lines {
		key, value, ok := strings.Cut(line, ":")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid header %q, expected \"Key: Value\"", line)
		}
		m[http.CanonicalHeaderKey(key)] = strings.TrimSpace(value)
	}
	return m, nil
}
