package classpath

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
	"github.com/mholt/archiver/v3"
	"github.com/minepkg/prelaunch/internals/artifacts"
	"github.com/minepkg/prelaunch/internals/minecraft"
	"github.com/minepkg/prelaunch/internals/progress"
	"github.com/minepkg/prelaunch/internals/utils"
)

// ErrNativesFailed is returned if at least one native archive could not be extracted at all
var ErrNativesFailed = errors.New("native libraries could not be extracted")

// metadata entries are never extracted
const metaInf = "META-INF/"

// SkippedEntry is a archive entry that failed to extract
type SkippedEntry struct {
	Library string `json:"library"`
	Entry   string `json:"entry"`
	Err     string `json:"error"`
}

// NativesReport is the outcome of ExtractNatives
type NativesReport struct {
	Extracted int            `json:"extracted"`
	Skipped   []SkippedEntry `json:"skipped,omitempty"`
	// Failed maps library names to the reason nothing could be extracted
	Failed map[string]string `json:"failed,omitempty"`
}

// ExtractNatives extracts the native archives of all libraries that have natives for the
// environment into targetDir. Entries that fail are skipped. Only archives that can not be
// read or where every entry failed are reported as failed (and ErrNativesFailed is returned)
func (c *Composer) ExtractNatives(m *minecraft.LaunchManifest, targetDir string, onProgress progress.Notifier) (*NativesReport, error) {
	report := &NativesReport{Failed: map[string]string{}}
	if err := utils.EnsureDir(targetDir); err != nil {
		return nil, err
	}

	libs := []minecraft.Library{}
	for _, lib := range m.Libraries.Required(c.Env) {
		if _, ok := lib.NativeArtifact(c.Env); ok {
			libs = append(libs, lib)
		}
	}

	for n, lib := range libs {
		native, _ := lib.NativeArtifact(c.Env)
		archive := filepath.Join(c.LibrariesDir, filepath.FromSlash(native.Path))

		exclude := []string{}
		if lib.Extract != nil {
			exclude = lib.Extract.Exclude
		}
		if err := c.extractArchive(lib.Name, archive, targetDir, exclude, report); err != nil {
			c.logger().Warnf("Could not extract natives of %s: %s", lib.Name, err)
			report.Failed[lib.Name] = err.Error()
		}
		onProgress.Notify(progress.PhaseNatives, n+1, len(libs))
	}

	if len(report.Failed) != 0 {
		return report, fmt.Errorf("%w: %d archive(s)", ErrNativesFailed, len(report.Failed))
	}
	return report, nil
}

func (c *Composer) extractArchive(libName string, archive string, targetDir string, exclude []string, report *NativesReport) error {
	in, err := os.Open(archive)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s does not exist", archive)
		}
		return err
	}
	defer in.Close()
	stat, err := in.Stat()
	if err != nil {
		return err
	}

	z := archiver.NewZip()
	if err := z.Open(in, stat.Size()); err != nil {
		return err
	}
	defer z.Close()

	candidates, failed := 0, 0
	for {
		f, err := z.Read()
		if err == io.EOF {
			break
		}
		// Read returns the header even if the entry can not be opened
		header, ok := f.Header.(zip.FileHeader)
		if !ok {
			if err != nil {
				return err
			}
			continue
		}

		name := header.Name
		if strings.HasSuffix(name, "/") || strings.HasPrefix(name, metaInf) || artifacts.MatchAny(exclude, name) {
			if f.ReadCloser != nil {
				f.Close()
			}
			continue
		}

		candidates++
		if err == nil {
			err = extractEntry(f, targetDir, name)
			f.Close()
		}
		if err != nil {
			failed++
			report.Skipped = append(report.Skipped, SkippedEntry{Library: libName, Entry: name, Err: err.Error()})
			c.logger().Debugf("skipping native %s of %s: %s", name, libName, err)
			continue
		}
		report.Extracted++
	}

	if candidates > 0 && failed == candidates {
		return fmt.Errorf("all %d entries failed", candidates)
	}
	return nil
}

// extractEntry writes one entry below targetDir. Entries leaving targetDir are rejected
func extractEntry(r io.Reader, targetDir string, name string) error {
	target := filepath.Join(targetDir, filepath.FromSlash(name))
	rel, err := filepath.Rel(targetDir, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("illegal path %q", name)
	}
	if err := utils.EnsureDir(filepath.Dir(target)); err != nil {
		return err
	}

	tmp := utils.TempSibling(target)
	dest, err := os.Create(tmp)
	if err != nil {
		return err
	}
	_, err = io.Copy(dest, r)
	if closeErr := dest.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Rename(tmp, target)
	}
	if err != nil {
		os.Remove(tmp)
	}
	return err
}
