package lspclient

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// FilePathToURI converts a local file path to a file:// URI. Paths that
// already look like a URI (contain "://") are returned unchanged. Adapted
// from the teacher's utils/uri.go PathToFileURI/FilePathToURI pair,
// collapsed into the single direction internal/lspclient needs for
// initialize/textDocument/didOpen params.
func FilePathToURI(path string) string {
	path = strings.TrimSpace(path)
	if path == "" || strings.Contains(path, "://") {
		return path
	}

	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}

	slashPath := filepath.ToSlash(path)
	if len(slashPath) >= 2 && slashPath[1] == ':' {
		// Windows drive-letter path: "C:/x" -> "/C:/x"
		slashPath = "/" + slashPath
	}

	u := url.URL{Scheme: "file", Path: slashPath}
	return u.String()
}

// URIToFilePath converts a file:// URI back to a local OS path. Non-file
// URIs and plain paths are returned unchanged.
func URIToFilePath(uri string) string {
	uri = strings.TrimSpace(uri)
	if !strings.HasPrefix(uri, "file://") && !strings.HasPrefix(uri, "file:") {
		return uri
	}

	p, err := fileURIToPath(uri)
	if err != nil {
		return strings.TrimPrefix(strings.TrimPrefix(uri, "file://"), "file:")
	}
	return p
}

func fileURIToPath(uri string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("invalid uri: %w", err)
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("not a file uri: %s", u.Scheme)
	}

	p, err := url.PathUnescape(u.Path)
	if err != nil {
		return "", fmt.Errorf("invalid uri path escape: %w", err)
	}

	if len(p) >= 3 && p[0] == '/' && p[2] == ':' {
		// "/C:/x" -> "C:/x"
		p = p[1:]
	}

	return filepath.FromSlash(p), nil
}
