package artifact_test

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// writeArtifact writes v as JSON, gzip-compressed when path ends in ".gz".
func writeArtifact(path string, v any) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := fh.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	var w io.Writer = fh
	if strings.HasSuffix(path, ".gz") {
		zw := gzip.NewWriter(fh)
		defer func() {
			if cerr := zw.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		w = zw
	}
	return json.NewEncoder(w).Encode(v)
}
