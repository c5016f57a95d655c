package fs

import (
	"errors"
	iofs "io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"
)

// Op names a [Mem] operation for fault injection.
type Op string

// Operations that [Mem.Fail] can target.
const (
	OpReadFile  Op = "read"
	OpWriteFile Op = "write"
	OpReadDir   Op = "readdir"
	OpStat      Op = "stat"
	OpLock      Op = "lock"
)

// InjectedError marks an error returned because of [Mem.Fail].
// It wraps the configured error so errors.Is/As keep working.
type InjectedError struct {
	Op   Op
	Path string
	Err  error
}

func (e *InjectedError) Error() string {
	return string(e.Op) + " " + e.Path + ": " + e.Err.Error()
}

func (e *InjectedError) Unwrap() error {
	return e.Err
}

// IsInjected reports whether err (or any wrapped error) was injected.
func IsInjected(err error) bool {
	var injected *InjectedError

	return errors.As(err, &injected)
}

// Mem is an in-memory [FS]. Directories are created implicitly for every
// written file. The zero value is not usable; call [NewMem].
//
// Lock never blocks: a lock that is already held fails with [ErrLockTimeout].
type Mem struct {
	mu     sync.Mutex
	files  map[string][]byte
	perms  map[string]os.FileMode
	dirs   map[string]bool
	locks  map[string]bool
	faults map[faultKey]error
	now    time.Time
}

type faultKey struct {
	op   Op
	path string
}

// NewMem returns an empty tree containing only the root and ".".
func NewMem() *Mem {
	return &Mem{
		files:  map[string][]byte{},
		perms:  map[string]os.FileMode{},
		dirs:   map[string]bool{"/": true, ".": true},
		locks:  map[string]bool{},
		faults: map[faultKey]error{},
		now:    time.Unix(0, 0).UTC(),
	}
}

// WriteFile stores data at path, creating parent directories.
func (m *Mem) WriteFile(path string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	path = filepath.Clean(path)
	m.mkdirAll(filepath.Dir(path))
	m.files[path] = slices.Clone(data)
	m.perms[path] = 0o644
}

// MkdirAll creates path and its parents.
func (m *Mem) MkdirAll(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.mkdirAll(filepath.Clean(path))
}

// Fail makes every later op on path return err wrapped in an
// [InjectedError]. A nil err clears the fault.
func (m *Mem) Fail(op Op, path string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := faultKey{op: op, path: filepath.Clean(path)}
	if err == nil {
		delete(m.faults, key)

		return
	}

	m.faults[key] = err
}

// ReadFile returns a copy of the stored bytes.
func (m *Mem) ReadFile(path string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	path = filepath.Clean(path)
	if err := m.fault(OpReadFile, path); err != nil {
		return nil, err
	}

	data, ok := m.files[path]
	if !ok {
		if m.dirs[path] {
			return nil, &iofs.PathError{Op: "read", Path: path, Err: errIsDir}
		}

		return nil, notExist("open", path)
	}

	return slices.Clone(data), nil
}

// WriteFileAtomic stores data at path. The parent directory must exist.
func (m *Mem) WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	path = filepath.Clean(path)
	if err := m.fault(OpWriteFile, path); err != nil {
		return err
	}

	if !m.dirs[filepath.Dir(path)] {
		return notExist("open", path)
	}

	if m.dirs[path] {
		return &iofs.PathError{Op: "open", Path: path, Err: errIsDir}
	}

	if _, ok := m.perms[path]; !ok {
		m.perms[path] = perm
	}

	m.files[path] = slices.Clone(data)

	return nil
}

// ReadDir lists the direct children of path sorted by name.
func (m *Mem) ReadDir(path string) ([]os.DirEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	path = filepath.Clean(path)
	if err := m.fault(OpReadDir, path); err != nil {
		return nil, err
	}

	if !m.dirs[path] {
		return nil, notExist("open", path)
	}

	var entries []os.DirEntry

	for name := range m.dirs {
		if name != path && filepath.Dir(name) == path {
			entries = append(entries, iofs.FileInfoToDirEntry(m.info(name)))
		}
	}

	for name := range m.files {
		if filepath.Dir(name) == path {
			entries = append(entries, iofs.FileInfoToDirEntry(m.info(name)))
		}
	}

	slices.SortFunc(entries, func(a, b os.DirEntry) int {
		return strings.Compare(a.Name(), b.Name())
	})

	return entries, nil
}

// Stat describes a stored file or directory.
func (m *Mem) Stat(path string) (os.FileInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	path = filepath.Clean(path)
	if err := m.fault(OpStat, path); err != nil {
		return nil, err
	}

	if _, ok := m.files[path]; !ok && !m.dirs[path] {
		return nil, notExist("stat", path)
	}

	return m.info(path), nil
}

// Exists reports whether path is a stored file or directory.
func (m *Mem) Exists(path string) (bool, error) {
	_, err := m.Stat(path)
	if err == nil {
		return true, nil
	}

	if os.IsNotExist(err) {
		return false, nil
	}

	return false, err
}

// Lock marks path as locked until the returned Locker is closed.
func (m *Mem) Lock(path string) (Locker, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	path = filepath.Clean(path)
	if err := m.fault(OpLock, path); err != nil {
		return nil, err
	}

	if m.locks[path] {
		return nil, ErrLockTimeout
	}

	m.locks[path] = true

	return &memLock{mem: m, path: path}, nil
}

// Locked reports whether path is currently locked.
func (m *Mem) Locked(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.locks[filepath.Clean(path)]
}

var errIsDir = errors.New("is a directory")

func notExist(op, path string) error {
	return &iofs.PathError{Op: op, Path: path, Err: iofs.ErrNotExist}
}

func (m *Mem) fault(op Op, path string) error {
	if err, ok := m.faults[faultKey{op: op, path: path}]; ok {
		return &InjectedError{Op: op, Path: path, Err: err}
	}

	return nil
}

func (m *Mem) mkdirAll(path string) {
	for {
		m.dirs[path] = true

		parent := filepath.Dir(path)
		if parent == path {
			return
		}

		path = parent
	}
}

func (m *Mem) info(path string) memInfo {
	if m.dirs[path] {
		return memInfo{name: filepath.Base(path), mode: iofs.ModeDir | 0o755, mod: m.now}
	}

	return memInfo{name: filepath.Base(path), size: int64(len(m.files[path])), mode: m.perms[path], mod: m.now}
}

type memLock struct {
	mem  *Mem
	path string
	once sync.Once
}

func (l *memLock) Close() error {
	l.once.Do(func() {
		l.mem.mu.Lock()
		delete(l.mem.locks, l.path)
		l.mem.mu.Unlock()
	})

	return nil
}

type memInfo struct {
	name string
	size int64
	mode iofs.FileMode
	mod  time.Time
}

func (i memInfo) Name() string        { return i.name }
func (i memInfo) Size() int64         { return i.size }
func (i memInfo) Mode() iofs.FileMode { return i.mode }
func (i memInfo) ModTime() time.Time  { return i.mod }
func (i memInfo) IsDir() bool         { return i.mode.IsDir() }
func (i memInfo) Sys() any            { return nil }

var _ FS = (*Mem)(nil)
