package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var stderr bytes.Buffer
	root.SetOut(&stderr)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stderr.String(), err
}

func TestCrawlCommand(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	shop := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<a href="/product/1">1</a><a href="/about">a</a><a href="/product/2">2</a>`))
	}))
	defer shop.Close()
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer down.Close()

	domainsFile := filepath.Join(dir, "domains.csv")
	require.NoError(t, os.WriteFile(domainsFile, []byte(shop.URL+"\n"+down.URL+"\n"+shop.URL+"\n"), 0o644))
	outFile := filepath.Join(dir, "out.json")

	stderr, err := runCLI(t, "crawl", domainsFile, "/product/", "--output", outFile, "--summary", "markdown")
	require.NoError(t, err)
	assert.Contains(t, stderr, "fetch_failed")

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	var got map[string][]string
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, map[string][]string{
		shop.URL: {shop.URL + "/product/1", shop.URL + "/product/2"},
	}, got)
}

func TestCrawlCommandInvalidPattern(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	domainsFile := filepath.Join(dir, "domains.csv")
	require.NoError(t, os.WriteFile(domainsFile, []byte("https://shop.example\n"), 0o644))

	_, err := runCLI(t, "crawl", domainsFile, "/product/,(oops", "--summary", "none")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid pattern")

	_, statErr := os.Stat(filepath.Join(dir, "output.txt"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestCrawlCommandArgs(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := runCLI(t, "crawl", "only-one-arg")
	assert.Error(t, err)

	_, err = runCLI(t, "crawl", "missing.csv", "/p/", "--summary", "none")
	assert.Error(t, err)
}
