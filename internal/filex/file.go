// Package filex reads local evidence files for upload.
package filex

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
)

// MaxEvidenceSize bounds a single uploaded image.
const MaxEvidenceSize = 20 << 20

// Evidence is a file loaded into memory with its content digest.
type Evidence struct {
	Data        []byte
	SHA256      string
	ContentType string
}

// ReadEvidence loads path, rejecting directories and files over
// MaxEvidenceSize. The digest is the lowercase hex SHA-256 of the content.
func ReadEvidence(path string) (*Evidence, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if fi.Size() > MaxEvidenceSize {
		return nil, fmt.Errorf("%s is %d bytes, limit is %d", path, fi.Size(), MaxEvidenceSize)
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	sum := sha256.Sum256(data)
	return &Evidence{
		Data:        data,
		SHA256:      hex.EncodeToString(sum[:]),
		ContentType: http.DetectContentType(data),
	}, nil
}
