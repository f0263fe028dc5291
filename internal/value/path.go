package value

import (
	"fmt"
	"strconv"
	"strings"
)

// Extract resolves a pointer-style path such as "/a/b/0/c" against tree.
//
// Segments select mapping keys; a segment that parses as a non-negative
// integer indexes a sequence. "~1" and "~0" unescape to "/" and "~".
// The empty path and "/" both address the root. A path without a leading
// slash is resolved as if it had one.
//
// Extract never fails: a missing key, an out-of-range index or a type
// mismatch all report ok=false.
func Extract(tree any, path string) (any, bool) {
	segments := Split(path)
	current := tree
	for _, seg := range segments {
		switch node := current.(type) {
		case map[string]any:
			next, exists := node[seg]
			if !exists {
				return nil, false
			}
			current = next
		case []any:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			current = node[idx]
		default:
			return nil, false
		}
	}
	return current, true
}

// Split breaks a path into unescaped segments. The root path yields none.
func Split(path string) []string {
	path = strings.TrimPrefix(path, "/")
	if path == "" {
		return nil
	}
	parts := strings.Split(path, "/")
	for i, p := range parts {
		if strings.Contains(p, "~") {
			p = strings.ReplaceAll(p, "~1", "/")
			parts[i] = strings.ReplaceAll(p, "~0", "~")
		}
	}
	return parts
}

// ValidatePath checks pointer syntax: the path is empty or starts with "/",
// and every "~" begins a "~0" or "~1" escape.
func ValidatePath(path string) error {
	if path == "" {
		return nil
	}
	if !strings.HasPrefix(path, "/") {
		return fmt.Errorf("path %q must start with '/'", path)
	}
	for i := 0; i < len(path); i++ {
		if path[i] != '~' {
			continue
		}
		if i+1 >= len(path) || (path[i+1] != '0' && path[i+1] != '1') {
			return fmt.Errorf("path %q has invalid escape at offset %d", path, i)
		}
	}
	return nil
}
