package tree

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// FS stores the tree on an afero filesystem. Handles are directory paths.
type FS struct {
	fs afero.Fs
}

func NewFS(fs afero.Fs) *FS {
	return &FS{fs: fs}
}

// NewOsFS stores the tree on the local disk.
func NewOsFS() *FS {
	return NewFS(afero.NewOsFs())
}

func (f *FS) Open(handle string) (Node, error) {
	if handle == "" {
		return nil, fmt.Errorf("%w: empty root", ErrNotFound)
	}
	root := filepath.Clean(handle)
	info, err := f.fs.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, root)
		}
		return nil, fmt.Errorf("tree: open %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, root)
	}
	return &fsNode{fs: f.fs, root: root, path: root, dir: true}, nil
}

type fsNode struct {
	fs   afero.Fs
	root string
	path string
	dir  bool
}

func (n *fsNode) child(name string, dir bool) *fsNode {
	return &fsNode{fs: n.fs, root: n.root, path: filepath.Join(n.path, name), dir: dir}
}

func (n *fsNode) Name() string { return filepath.Base(n.path) }
func (n *fsNode) IsDir() bool  { return n.dir }

func (n *fsNode) String() string { return n.path }

func (n *fsNode) Children() ([]Node, error) {
	if !n.dir {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, n.path)
	}
	infos, err := afero.ReadDir(n.fs, n.path)
	if err != nil {
		return nil, fmt.Errorf("tree: list %s: %w", n.path, err)
	}
	children := make([]Node, 0, len(infos))
	for _, info := range infos {
		children = append(children, n.child(info.Name(), info.IsDir()))
	}
	return children, nil
}

func (n *fsNode) FindChild(name string) (Node, error) {
	if err := n.checkChildName(name); err != nil {
		return nil, err
	}
	child := filepath.Join(n.path, name)
	info, err := n.fs.Stat(child)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("tree: stat %s: %w", child, err)
	}
	return n.child(name, info.IsDir()), nil
}

func (n *fsNode) CreateDirectory(name string) (Node, error) {
	if err := n.checkChildName(name); err != nil {
		return nil, err
	}
	child := n.child(name, true)
	err := n.fs.Mkdir(child.path, 0o755)
	if err == nil {
		return child, nil
	}
	if !os.IsExist(err) {
		return nil, fmt.Errorf("tree: mkdir %s: %w", child.path, err)
	}
	info, statErr := n.fs.Stat(child.path)
	if statErr != nil {
		return nil, fmt.Errorf("tree: stat %s: %w", child.path, statErr)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, child.path)
	}
	return child, nil
}

// CreateFile ignores mime, files on disk carry no content type.
func (n *fsNode) CreateFile(name, mime string) (Node, error) {
	if err := n.checkChildName(name); err != nil {
		return nil, err
	}
	child := n.child(name, false)
	f, err := n.fs.OpenFile(child.path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("tree: create %s: %w", child.path, err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("tree: create %s: %w", child.path, err)
	}
	return child, nil
}

func (n *fsNode) OpenWriter() (io.WriteCloser, error) {
	if n.dir {
		return nil, fmt.Errorf("tree: write %s: is a directory", n.path)
	}
	f, err := n.fs.OpenFile(n.path, os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("tree: open %s: %w", n.path, err)
	}
	return f, nil
}

func (n *fsNode) Delete() error {
	if n.isRoot() {
		return ErrRoot
	}
	if n.dir {
		empty, err := afero.IsEmpty(n.fs, n.path)
		if err != nil {
			return fmt.Errorf("tree: delete %s: %w", n.path, err)
		}
		if !empty {
			return fmt.Errorf("%w: %s", ErrNotEmpty, n.path)
		}
	}
	if err := n.fs.Remove(n.path); err != nil {
		return fmt.Errorf("tree: delete %s: %w", n.path, err)
	}
	return nil
}

func (n *fsNode) Rename(name string) (Node, error) {
	if n.isRoot() {
		return nil, ErrRoot
	}
	if err := validName(name); err != nil {
		return nil, err
	}
	target := filepath.Join(filepath.Dir(n.path), name)
	if target == n.path {
		return n, nil
	}
	if info, err := n.fs.Stat(target); err == nil {
		if info.IsDir() {
			return nil, fmt.Errorf("tree: rename %s: %s is a directory", n.path, target)
		}
		if err := n.fs.Remove(target); err != nil {
			return nil, fmt.Errorf("tree: rename %s: replace %s: %w", n.path, target, err)
		}
	}
	if err := n.fs.Rename(n.path, target); err != nil {
		return nil, fmt.Errorf("tree: rename %s: %w", n.path, err)
	}
	return &fsNode{fs: n.fs, root: n.root, path: target, dir: n.dir}, nil
}

func (n *fsNode) Parent() Node {
	if n.isRoot() {
		return nil
	}
	return &fsNode{fs: n.fs, root: n.root, path: filepath.Dir(n.path), dir: true}
}

func (n *fsNode) Locator() *url.URL {
	path := n.path
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return &url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
}

func (n *fsNode) isRoot() bool {
	return n.path == n.root
}

func (n *fsNode) checkChildName(name string) error {
	if !n.dir {
		return fmt.Errorf("%w: %s", ErrNotDirectory, n.path)
	}
	return validName(name)
}

func validName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}
