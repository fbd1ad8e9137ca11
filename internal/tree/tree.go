// Package tree is the hierarchical store tracks are written into. Nodes are directories or
// files addressed from an opaque root handle.
package tree

import (
	"errors"
	"io"
	"net/url"
)

const MimeAudio = "audio/mp3"

var (
	ErrNotFound     = errors.New("tree: not found")
	ErrNotDirectory = errors.New("tree: not a directory")
	ErrNotEmpty     = errors.New("tree: directory not empty")
	ErrInvalidName  = errors.New("tree: invalid name")
	ErrRoot         = errors.New("tree: operation not allowed on the root")
)

type Node interface {
	Name() string
	IsDir() bool
	// Children lists a directory in a stable order.
	Children() ([]Node, error)
	// FindChild returns nil and no error when name does not exist.
	FindChild(name string) (Node, error)
	CreateDirectory(name string) (Node, error)
	// CreateFile creates name, truncating any existing file.
	CreateFile(name, mime string) (Node, error)
	OpenWriter() (io.WriteCloser, error)
	Delete() error
	// Rename moves the node within its directory, replacing a sibling called name.
	Rename(name string) (Node, error)
	// Parent is nil for the root.
	Parent() Node
	// Locator is the URL handed to media scanners.
	Locator() *url.URL
}

// Opener resolves the persisted root handle into a node.
type Opener interface {
	Open(handle string) (Node, error)
}
