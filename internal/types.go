package internal

import (
	"crypto/sha256"
	"encoding/hex"
)

/*──────── data types shared by everything ─────────────────────*/

// PathPair names one future PNG file twice: once with the host's native
// separators and once as seen from WSL under /mnt/<drive>/.
type PathPair struct {
	Native string `json:"native"`
	WSL    string `json:"wsl"` // empty when the native path has no drive letter
}

// Snapshot is one decoded clipboard bitmap, keyed by the clipboard
// sequence number it was read at.
type Snapshot struct {
	Seq   uint32   `json:"seq"`
	PNG   []byte   `json:"-"`
	Paths PathPair `json:"paths"`
}

// Clone returns a copy that shares no memory with s.
func (s Snapshot) Clone() Snapshot {
	c := s
	if s.PNG != nil {
		c.PNG = append([]byte(nil), s.PNG...)
	}
	return c
}

/*──────── helper: content key ─────────────────────────────────*/

// QuickKey is a short digest used where the platform offers no clipboard
// sequence number and change detection has to look at the bytes.
func QuickKey(data []byte) string {
	if len(data) == 0 {
		return "empty"
	}
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:8])
}
