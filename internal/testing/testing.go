// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"testing"
)

// FakeLibrary is a scripted test double for the pipeline's remote library
// interface. The zero value behaves as an empty, healthy account.
type FakeLibrary struct {
	Pages     [][]string
	Queued    []string
	ListErr   error
	QueuedErr error
	AddErr    error

	ListCalls int
	AddCalls  []string
}

func (f *FakeLibrary) TorrentHashes(ctx context.Context, offset, limit int) ([]string, error) {
	f.ListCalls++
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	page := offset / limit
	if page < len(f.Pages) {
		return f.Pages[page], nil
	}
	return nil, nil
}

func (f *FakeLibrary) QueuedHashes(ctx context.Context) ([]string, error) {
	if f.QueuedErr != nil {
		return nil, f.QueuedErr
	}
	return f.Queued, nil
}

func (f *FakeLibrary) AddMagnet(ctx context.Context, magnetURI string) error {
	f.AddCalls = append(f.AddCalls, magnetURI)
	return f.AddErr
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write file %s: %v", path, err)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
