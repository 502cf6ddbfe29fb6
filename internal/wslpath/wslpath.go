// Package wslpath names clipboard image files and maps Windows paths to the
// /mnt/<drive>/ form WSL sees them under.
package wslpath

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	core "clipwsl/internal"
)

// Convert maps a drive-letter path to its WSL form:
//
//	C:\Users\a\b.png → /mnt/c/Users/a/b.png
//	D:temp           → /mnt/d/temp
//
// Paths without a drive letter can't be mapped and yield "".
func Convert(native string) string {
	p := strings.Trim(native, `"`)
	if len(p) < 3 || p[1] != ':' || !isLetter(p[0]) {
		return ""
	}
	drive := strings.ToLower(p[:1])
	rest := strings.ReplaceAll(p[2:], `\`, "/")
	rest = strings.TrimLeft(rest, "/") // all of them: `Z:\\x` is /mnt/z/x
	return "/mnt/" + drive + "/" + rest
}

func isLetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

// FileName returns clip_<YYYYMMDD>_<HHMMSS>_<millis>.png for t.
func FileName(t time.Time) string {
	return fmt.Sprintf("clip_%s_%03d.png", t.Format("20060102_150405"), t.Nanosecond()/int(time.Millisecond))
}

/*──────── Synthesizer ─────────────────────────────────────────*/

// Synthesizer hands out path pairs for new files in one directory. The
// directory's WSL form is computed once.
type Synthesizer struct {
	dir    string
	wslDir string
}

func New(dir string) *Synthesizer {
	return &Synthesizer{dir: dir, wslDir: strings.TrimRight(Convert(dir), "/")}
}

// Dir is the native directory files are created in.
func (s *Synthesizer) Dir() string { return s.dir }

// WSLDir is Dir as seen from WSL, or "" if it has no drive letter.
func (s *Synthesizer) WSLDir() string { return s.wslDir }

// Next returns the paths of a new file named after t.
func (s *Synthesizer) Next(t time.Time) core.PathPair {
	name := FileName(t)
	native := filepath.Join(s.dir, name)
	if s.wslDir != "" {
		return core.PathPair{Native: native, WSL: s.wslDir + "/" + name}
	}
	return core.PathPair{Native: native, WSL: Convert(native)}
}
