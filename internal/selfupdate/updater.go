package selfupdate

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"
)

const chunkSize = 256 << 10

// Progress reports update stages. During "download" Read and Total carry
// byte counts; Total is -1 when the server sends no length.
type Progress struct {
	Stage   string
	Message string
	Read    int64
	Total   int64
}

// Updater downloads and installs a release. One update runs at a time.
type Updater struct {
	checker    *Checker
	inProgress atomic.Bool
	// startScript launches the Windows replace script.
	startScript func(path string) error
}

func NewUpdater(c *Checker) *Updater {
	return &Updater{checker: c, startScript: startDetached}
}

// InProgress reports whether an update is running.
func (u *Updater) InProgress() bool { return u.inProgress.Load() }

// Update installs rel. A nil rel runs Check first. The caller should ask
// the user to restart once it returns nil.
func (u *Updater) Update(ctx context.Context, rel *Release, progress func(Progress)) error {
	if progress == nil {
		progress = func(Progress) {}
	}
	if u.checker.version == DevVersion {
		return ErrDevBuild
	}
	if !u.inProgress.CompareAndSwap(false, true) {
		return ErrInProgress
	}
	ok := false
	defer func() {
		// a successful Windows update leaves the flag set until restart
		if !ok || runtime.GOOS != "windows" {
			u.inProgress.Store(false)
		}
	}()

	if rel == nil {
		progress(Progress{Stage: "check", Message: "Checking for latest version..."})
		var err error
		rel, err = u.checker.Check(ctx)
		if err != nil {
			return err
		}
	}
	m := rel.Manifest

	progress(Progress{Stage: "download", Message: fmt.Sprintf("Downloading %s...", m.Version), Total: -1})
	tmp, err := u.download(ctx, NormalizeURL(m.URL), progress)
	if err != nil {
		return fmt.Errorf("download update: %w", err)
	}
	defer func() { _ = os.Remove(tmp) }()

	data, err := os.ReadFile(tmp)
	if err != nil {
		return err
	}
	if m.SHA256 != "" {
		progress(Progress{Stage: "verify", Message: "Verifying checksum..."})
		if err := verifyChecksum(data, m.SHA256); err != nil {
			return err
		}
	}

	if isArchive(m.URL) {
		progress(Progress{Stage: "extract", Message: "Extracting binary..."})
		data, err = extractBinary(data, m.URL)
		if err != nil {
			return fmt.Errorf("extract binary: %w", err)
		}
	}

	progress(Progress{Stage: "apply", Message: "Applying update..."})
	target, err := u.checker.execPath()
	if err != nil {
		return fmt.Errorf("resolve executable path: %w", err)
	}
	if runtime.GOOS == "windows" {
		err = applyWindows(data, target, os.TempDir(), u.startScript)
	} else {
		sum := sha256.Sum256(data)
		err = applyUpdate(data, target, sum[:])
	}
	if err != nil {
		return fmt.Errorf("apply update: %w", err)
	}

	ok = true
	progress(Progress{Stage: "done", Message: fmt.Sprintf("Updated to %s. Please restart %s to use the new version.", m.Version, AppName)})
	return nil
}

func (u *Updater) download(ctx context.Context, url string, progress func(Progress)) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", u.checker.userAgent())
	req.Header.Set("Accept", "*/*")

	// the manifest timeout would cut large downloads short
	client := &http.Client{Transport: u.checker.client.Transport}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
	}

	f, err := os.CreateTemp("", "upd_*.bin")
	if err != nil {
		return "", err
	}
	total := resp.ContentLength
	if total <= 0 {
		total = -1
	}
	var read int64
	buf := make([]byte, chunkSize)
	for {
		n, rerr := resp.Body.Read(buf)
		if n > 0 {
			if _, err := f.Write(buf[:n]); err != nil {
				f.Close()
				os.Remove(f.Name())
				return "", err
			}
			read += int64(n)
			progress(Progress{Stage: "download", Read: read, Total: total})
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			f.Close()
			os.Remove(f.Name())
			return "", rerr
		}
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

func verifyChecksum(data []byte, expectedHex string) error {
	h := sha256.Sum256(data)
	actual := hex.EncodeToString(h[:])
	if !strings.EqualFold(actual, strings.TrimSpace(expectedHex)) {
		return fmt.Errorf("%w: expected %s, got %s", ErrChecksum, strings.ToLower(expectedHex), actual)
	}
	return nil
}

func isArchive(url string) bool {
	u := strings.ToLower(url)
	return strings.HasSuffix(u, ".zip") || strings.HasSuffix(u, ".tar.gz") || strings.HasSuffix(u, ".tgz")
}

func binaryName() string {
	if runtime.GOOS == "windows" {
		return AppName + ".exe"
	}
	return AppName
}

func extractBinary(archiveData []byte, asset string) ([]byte, error) {
	if strings.HasSuffix(strings.ToLower(asset), ".zip") {
		return extractFromZip(archiveData, binaryName())
	}
	return extractFromTarGz(archiveData, binaryName())
}

func extractFromTarGz(data []byte, name string) ([]byte, error) {
	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open gzip: %w", err)
	}
	defer func() { _ = gz.Close() }()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read tar: %w", err)
		}
		if filepath.Base(hdr.Name) == name && hdr.Typeflag == tar.TypeReg {
			return io.ReadAll(tr)
		}
	}
	return nil, fmt.Errorf("binary %q not found in archive", name)
}

func extractFromZip(data []byte, name string) ([]byte, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}
	for _, f := range r.File {
		if filepath.Base(f.Name) == name {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer func() { _ = rc.Close() }()
			return io.ReadAll(rc)
		}
	}
	return nil, fmt.Errorf("binary %q not found in archive", name)
}
