// Package fs is the filesystem capability used by the config loader and the
// fr command set.
//
// The main types are:
//   - [FS]: the operations frontrange needs
//   - [Real]: the operating system filesystem with atomic writes and locks
//   - [Mem]: an in-memory tree for tests, with optional fault injection
//
// Example usage:
//
//	fsys := fs.NewReal()
//	lock, err := fsys.Lock("notes/post.md")
//	if err != nil {
//	    return err
//	}
//	defer lock.Close()
//
//	data, err := fsys.ReadFile("notes/post.md")
package fs

import (
	"io"
	"os"
)

// Locker represents a held file lock.
// Call [Locker.Close] to release the lock.
type Locker interface {
	io.Closer
}

// FS defines the filesystem operations frontrange performs.
//
// Implementations return errors that work with [os.IsNotExist] and
// errors.Is(err, [os.ErrNotExist]) for missing paths.
type FS interface {
	// ReadFile reads the whole file. See [os.ReadFile].
	ReadFile(path string) ([]byte, error)

	// WriteFileAtomic replaces path with data so that readers see either the
	// old or the new content, never a partial write.
	WriteFileAtomic(path string, data []byte, perm os.FileMode) error

	// ReadDir lists a directory sorted by name. See [os.ReadDir].
	ReadDir(path string) ([]os.DirEntry, error)

	// Stat describes path. See [os.Stat].
	Stat(path string) (os.FileInfo, error)

	// Exists reports whether path exists. A missing path is (false, nil).
	Exists(path string) (bool, error)

	// Lock takes an exclusive advisory lock scoped to path. The file itself
	// does not need to exist.
	Lock(path string) (Locker, error)
}

// IsDir reports whether path exists and is a directory.
func IsDir(fsys FS, path string) (bool, error) {
	info, err := fsys.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}

		return false, err
	}

	return info.IsDir(), nil
}

// IsFile reports whether path exists and is not a directory.
func IsFile(fsys FS, path string) (bool, error) {
	info, err := fsys.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}

		return false, err
	}

	return !info.IsDir(), nil
}
