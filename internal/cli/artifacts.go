// Package cli provides the command-line interface for prmptr.
package cli

import (
	"os"
	"path/filepath"

	"github.com/greg-randall/prmptr/internal/chain"
	"github.com/greg-randall/prmptr/internal/clock"
	"github.com/greg-randall/prmptr/internal/constants"
	"github.com/greg-randall/prmptr/internal/errors"
)

// ArtifactWriter writes the two files produced by a successful run: the
// resolved output value and the full chain log. File names are prefixed
// with a timestamp and the input file's base name so repeated runs never
// overwrite each other.
type ArtifactWriter struct {
	dir string
	clk clock.Clock
}

// NewArtifactWriter creates a writer that places artifacts in dir.
// An empty dir means the current working directory. A nil clock uses the
// system clock.
func NewArtifactWriter(dir string, clk clock.Clock) *ArtifactWriter {
	if clk == nil {
		clk = clock.System{}
	}
	return &ArtifactWriter{dir: dir, clk: clk}
}

// ArtifactPaths names the files written for one run.
type ArtifactPaths struct {
	// OutputPath holds the resolved output value.
	OutputPath string `json:"output_path"`

	// LogPath holds the rendered chain log.
	LogPath string `json:"log_path"`
}

// Write persists the run result. inputPath is the input file the run was
// seeded from; only its base name appears in the artifact names.
//
// Both files are written or neither: a failure writing the output file
// aborts before the log file is touched.
func (w *ArtifactWriter) Write(inputPath string, res *chain.Result) (*ArtifactPaths, error) {
	stamp := w.clk.Now().Format(constants.ArtifactTimestampLayout)
	base := stamp + "_" + filepath.Base(inputPath)

	paths := &ArtifactPaths{
		OutputPath: filepath.Join(w.dir, base+constants.OutputFileSuffix),
		LogPath:    filepath.Join(w.dir, base+constants.ChainLogFileSuffix),
	}

	if w.dir != "" {
		if err := os.MkdirAll(w.dir, 0o750); err != nil {
			return nil, errors.Wrapf(errors.ErrArtifactWrite, "create artifact directory %s: %v", w.dir, err)
		}
	}

	if err := os.WriteFile(paths.OutputPath, []byte(res.FinalValue), 0o600); err != nil {
		return nil, errors.Wrapf(errors.ErrArtifactWrite, "write output file %s: %v", paths.OutputPath, err)
	}

	if err := os.WriteFile(paths.LogPath, []byte(res.Log.Render()), 0o600); err != nil {
		return nil, errors.Wrapf(errors.ErrArtifactWrite, "write chain log %s: %v", paths.LogPath, err)
	}

	return paths, nil
}
