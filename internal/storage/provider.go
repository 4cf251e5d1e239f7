// Package storage provides the file-system access used for the snapshot
// file and the legacy seed document.
package storage

// Provider reads and writes files relative to a root directory.
type Provider interface {
	// Root is the absolute directory every path is resolved against.
	Root() string
	// Read returns the raw bytes of the file at path (relative to root).
	Read(path string) ([]byte, error)
	// Write atomically replaces the file at path (relative to root).
	Write(path string, content []byte) error
	// Delete removes the file at path (relative to root).
	Delete(path string) error
}

var _ Provider = (*FS)(nil)
