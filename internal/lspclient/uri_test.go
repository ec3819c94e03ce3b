package lspclient

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilePathToURIRoundTrip(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("path semantics differ on windows")
	}

	uri := FilePathToURI("/tmp/foo/bar.go")
	assert.Equal(t, "file:///tmp/foo/bar.go", uri)

	back := URIToFilePath(uri)
	assert.Equal(t, "/tmp/foo/bar.go", back)
}

func TestFilePathToURIPassesThroughExistingScheme(t *testing.T) {
	assert.Equal(t, "http://example.com/x", FilePathToURI("http://example.com/x"))
}

func TestURIToFilePathPassesThroughNonFileURI(t *testing.T) {
	assert.Equal(t, "http://example.com/x", URIToFilePath("http://example.com/x"))
}
