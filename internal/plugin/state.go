package plugin

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/specialistvlad/lintgrid/internal/classpath"
	"github.com/specialistvlad/lintgrid/internal/fsutil"
	"github.com/specialistvlad/lintgrid/internal/lint"
)

// OutputDir is where units keep their state, relative to the module dir.
var OutputDir = filepath.Join("build", "lintgrid")

// lintState is persisted after every completed lint run.
type lintState struct {
	Fingerprint string       `json:"fingerprint"`
	Report      *lint.Report `json:"report"`
}

// fingerprint hashes everything a lint result depends on: the runtime
// classpath, the disabled rules, and the name and content of every file.
func fingerprint(root string, entries []classpath.Entry, disabled, files []string) (string, error) {
	h := sha256.New()
	for _, e := range entries {
		fmt.Fprintf(h, "classpath %s\n", e)
	}
	for _, id := range disabled {
		fmt.Fprintf(h, "disabled %s\n", id)
	}
	for _, path := range files {
		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}
		fmt.Fprintf(h, "file %s\n", filepath.ToSlash(rel))
		f, err := os.Open(path)
		if err != nil {
			return "", err
		}
		_, err = io.Copy(h, f)
		f.Close()
		if err != nil {
			return "", err
		}
		fmt.Fprintln(h)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func statePath(moduleDir, unit string) string {
	return filepath.Join(moduleDir, OutputDir, unit+".json")
}

// readState returns nil when no usable state exists.
func readState(path string) (*lintState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var st lintState
	if err := json.Unmarshal(data, &st); err != nil || st.Report == nil {
		// A corrupt state file only costs a rerun.
		return nil, nil
	}
	return &st, nil
}

func writeState(path string, st *lintState) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return fsutil.WriteFileAtomic(path, append(data, '\n'), 0o644)
}
