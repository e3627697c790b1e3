package lsp

import (
	"fmt"
	"net/url"
	"path/filepath"
	"runtime"
	"strings"
)

// URIToPath converts a file:// URI to a filesystem path.
//
// On POSIX systems: file:///path/to/file -> /path/to/file.
// On Windows: file:///C:/path/to/file -> C:\path\to\file.
// UNC paths are not supported.
func URIToPath(uri string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("parse URI %q: %w", uri, err)
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("not a file URI: %s", uri)
	}

	path := u.Path
	if runtime.GOOS == "windows" {
		if len(path) >= 3 && path[0] == '/' && isWindowsDriveLetter(path[1]) && path[2] == ':' {
			path = path[1:]
		}
		path = filepath.FromSlash(path)
	}
	return path, nil
}

// PathToURI converts a filesystem path to a file:// URI.
func PathToURI(path string) string {
	if !filepath.IsAbs(path) {
		if absPath, err := filepath.Abs(path); err == nil {
			path = absPath
		}
	}
	path = filepath.ToSlash(path)
	if runtime.GOOS == "windows" && len(path) >= 2 && isWindowsDriveLetter(path[0]) && path[1] == ':' {
		path = "/" + path
	}
	u := url.URL{Scheme: "file", Path: path}
	return u.String()
}

func isWindowsDriveLetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

// isMagolorURI reports whether the URI refers to a Magolor source file.
func isMagolorURI(uri string) bool {
	path, err := URIToPath(uri)
	if err != nil {
		return false
	}
	return strings.ToLower(filepath.Ext(path)) == ".mg"
}

// moduleNameForURI derives a dotted module name from a document URI: the
// path below the nearest src/ component with the extension stripped, or
// the bare file name when the document lives outside a src tree.
func moduleNameForURI(uri string) string {
	path, err := URIToPath(uri)
	if err != nil {
		path = uri
	}
	path = filepath.ToSlash(path)

	if idx := strings.LastIndex(path, "/src/"); idx >= 0 {
		rel := path[idx+len("/src/"):]
		rel = strings.TrimSuffix(rel, filepath.Ext(rel))
		return strings.ReplaceAll(rel, "/", ".")
	}

	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
