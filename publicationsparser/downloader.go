// Package publicationsparser loads the drug list and the publication corpora from disk,
// optionally downloading them first, and cleans them into a RecordSet.
package publicationsparser

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/giygas/drug-mentions/logging"
)

// Source file names, relative to the data directory and to the download base URL.
const (
	DrugsFile          = "drugs.csv"
	ClinicalTrialsFile = "clinical_trials.csv"
	PubmedCSVFile      = "pubmed.csv"
	PubmedJSONFile     = "pubmed.json"
)

// SourceFiles lists every file a build reads.
var SourceFiles = []string{DrugsFile, ClinicalTrialsFile, PubmedCSVFile, PubmedJSONFile}

const downloadTimeout = 5 * time.Minute

// downloadFile fetches baseURL/name into dataDir/name, re-encoding ISO-8859-1 bodies to UTF-8.
// The file is written to a temporary name first so a failed download never truncates
// the previous copy.
func downloadFile(ctx context.Context, client *http.Client, dataDir, baseURL, name string) error {
	target := filepath.Join(dataDir, name)
	if filepath.Dir(target) != filepath.Clean(dataDir) {
		return fmt.Errorf("invalid file name: %s", name)
	}

	fileURL, err := url.JoinPath(baseURL, name)
	if err != nil {
		return fmt.Errorf("invalid source url for %s: %w", name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", fileURL, err)
	}
	response, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download %s: %w", fileURL, err)
	}
	defer func() {
		if err := response.Body.Close(); err != nil {
			logging.Warn("Failed to close response body", "error", err)
		}
	}()

	if response.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to download %s: unexpected status %s", fileURL, response.Status)
	}

	bodyBytes, err := io.ReadAll(response.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	var reader io.Reader = bytes.NewReader(bodyBytes)
	if !utf8.Valid(bodyBytes) {
		reader = charmap.ISO8859_1.NewDecoder().Reader(reader)
	}

	tmp, err := os.CreateTemp(dataDir, name+".*.part")
	if err != nil {
		return fmt.Errorf("failed to create temporary file for %s: %w", name, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	writer := bufio.NewWriter(tmp)
	if _, err := io.Copy(writer, reader); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := writer.Flush(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("failed to move %s into place: %w", name, err)
	}

	logging.Debug("Source file downloaded", "file", name, "bytes", len(bodyBytes))
	return nil
}

// downloadAll downloads every source file concurrently.
func downloadAll(ctx context.Context, client *http.Client, dataDir, baseURL string) error {
	if err := os.MkdirAll(dataDir, 0750); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	var errs []error

	for _, name := range SourceFiles {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			if err := downloadFile(ctx, client, dataDir, baseURL, name); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}(name)
	}
	wg.Wait()

	if len(errs) > 0 {
		err := errors.Join(errs...)
		logging.Error("Download errors occurred", "errors", err)
		return fmt.Errorf("download errors: %w", err)
	}

	return nil
}
