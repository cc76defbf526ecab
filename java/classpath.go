package java

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/dhamidi/annox/classfile"
	"github.com/hashicorp/go-version"
	"github.com/tliron/commonlog"
)

var classpathLog = commonlog.GetLogger("annox.classpath")

const versionsPrefix = "META-INF/versions/"

type ClasspathOption func(*Classpath)

// WithRelease selects the multi-release jar entries for the given Java
// feature release. Without it only the base entries are used.
func WithRelease(release *version.Version) ClasspathOption {
	return func(c *Classpath) {
		c.release = release
	}
}

// Classpath is a Provider reading compiled types from directories and
// jar files. Glob patterns are expanded when the classpath is first
// used; class files are parsed on demand and remembered.
type Classpath struct {
	paths   []string
	release *version.Version

	mu      sync.Mutex
	indexed bool
	index   map[string]classEntry
	jars    map[string]*zip.ReadCloser
	cache   map[string]*TypeInfo
}

type classEntry struct {
	file    string
	jar     string
	entry   *zip.File
	release int
}

func NewClasspath(paths []string, opts ...ClasspathOption) *Classpath {
	c := &Classpath{
		paths: paths,
		index: map[string]classEntry{},
		jars:  map[string]*zip.ReadCloser{},
		cache: map[string]*TypeInfo{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Lookup finds a type by canonical name. Nested types may be named with
// dots; every split between package and class is tried.
func (c *Classpath) Lookup(name string) (*TypeInfo, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.buildIndex()

	if info, ok := c.cache[name]; ok {
		return info, info != nil
	}
	var info *TypeInfo
	for _, internal := range internalCandidates(name) {
		entry, ok := c.index[internal]
		if !ok {
			continue
		}
		loaded, err := c.load(entry)
		if err != nil {
			classpathLog.Warningf("skipping %s: %s", internal, err)
			break
		}
		info = loaded
		break
	}
	c.cache[name] = info
	return info, info != nil
}

// Names returns the source names of every class on the classpath.
func (c *Classpath) Names() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.buildIndex()
	names := make([]string, 0, len(c.index))
	for internal := range c.index {
		names = append(names, classfile.InternalToSourceName(internal))
	}
	sort.Strings(names)
	return names
}

// Close releases the open jar files.
func (c *Classpath) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var firstErr error
	for path, r := range c.jars {
		if err := r.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close %s: %w", path, err)
		}
		delete(c.jars, path)
	}
	c.indexed = false
	c.index = map[string]classEntry{}
	c.cache = map[string]*TypeInfo{}
	return firstErr
}

func (c *Classpath) buildIndex() {
	if c.indexed {
		return
	}
	c.indexed = true
	for _, path := range c.expand() {
		info, err := os.Stat(path)
		if err != nil {
			classpathLog.Warningf("skipping classpath entry %s: %s", path, err)
			continue
		}
		if info.IsDir() {
			c.indexDirectory(path)
			continue
		}
		switch filepath.Ext(path) {
		case ".jar", ".zip":
			c.indexJar(path)
		case ".class":
			c.indexClassFile(path)
		default:
			classpathLog.Debugf("ignoring classpath entry %s", path)
		}
	}
	classpathLog.Infof("indexed %d classes from %d classpath entries", len(c.index), len(c.paths))
}

func (c *Classpath) expand() []string {
	var result []string
	for _, path := range c.paths {
		if !strings.ContainsAny(path, "*?[") {
			result = append(result, path)
			continue
		}
		matches, err := filepath.Glob(path)
		if err != nil {
			classpathLog.Warningf("bad classpath pattern %s: %s", path, err)
			continue
		}
		result = append(result, matches...)
	}
	return result
}

func (c *Classpath) indexDirectory(root string) {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			classpathLog.Warningf("walk %s: %s", path, err)
			return nil
		}
		if d.IsDir() || filepath.Ext(path) != ".class" {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		c.add(strings.TrimSuffix(filepath.ToSlash(rel), ".class"), classEntry{file: path})
		return nil
	})
	if err != nil {
		classpathLog.Warningf("walk %s: %s", root, err)
	}
}

func (c *Classpath) indexClassFile(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		classpathLog.Warningf("skipping %s: %s", path, err)
		return
	}
	cf, err := classfile.Parse(bytes.NewReader(data))
	if err != nil {
		classpathLog.Warningf("skipping %s: %s", path, err)
		return
	}
	c.add(cf.Name, classEntry{file: path})
}

func (c *Classpath) indexJar(path string) {
	r, err := zip.OpenReader(path)
	if err != nil {
		classpathLog.Warningf("skipping jar %s: %s", path, err)
		return
	}
	c.jars[path] = r
	for _, f := range r.File {
		if f.FileInfo().IsDir() || !strings.HasSuffix(f.Name, ".class") {
			continue
		}
		name := strings.TrimSuffix(f.Name, ".class")
		release := 0
		if rest, ok := strings.CutPrefix(name, versionsPrefix); ok {
			n, internal, ok := strings.Cut(rest, "/")
			if !ok {
				continue
			}
			if release, ok = c.selectRelease(n); !ok {
				continue
			}
			name = internal
		}
		c.add(name, classEntry{jar: path, entry: f, release: release})
	}
}

// selectRelease reports whether entries under META-INF/versions/n apply
// to the configured release, and the release number they target.
func (c *Classpath) selectRelease(n string) (int, bool) {
	if c.release == nil {
		return 0, false
	}
	v, err := version.NewVersion(n)
	if err != nil {
		classpathLog.Debugf("ignoring versioned directory %s", n)
		return 0, false
	}
	return v.Segments()[0], v.LessThanOrEqual(c.release)
}

// add records entry unless an earlier classpath element or a more
// specific release already provides the class.
func (c *Classpath) add(internal string, entry classEntry) {
	base := filepath.Base(internal)
	if base == "module-info" || base == "package-info" {
		return
	}
	if existing, ok := c.index[internal]; ok {
		if existing.jar != entry.jar || entry.release <= existing.release {
			return
		}
	}
	c.index[internal] = entry
}

func (c *Classpath) load(entry classEntry) (*TypeInfo, error) {
	if entry.file != "" {
		return TypeInfoFromFile(entry.file)
	}
	rc, err := entry.entry.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	info, err := TypeInfoFromReader(io.LimitReader(rc, int64(entry.entry.UncompressedSize64)))
	if err != nil {
		return nil, err
	}
	info.Origin = JarURL(entry.jar, entry.entry.Name)
	classpathLog.Debugf("loaded %s from %s", info.Name, entry.jar)
	return info, nil
}

// internalCandidates lists the internal names a dotted name may refer
// to, longest package first: a.b.C.D gives a/b/C/D, a/b/C$D, a/b$C$D and
// a$b$C$D.
func internalCandidates(name string) []string {
	parts := strings.Split(name, ".")
	candidates := make([]string, 0, len(parts))
	for i := len(parts) - 1; i >= 0; i-- {
		pkg := strings.Join(parts[:i], "/")
		cls := strings.Join(parts[i:], "$")
		if pkg == "" {
			candidates = append(candidates, cls)
		} else {
			candidates = append(candidates, pkg+"/"+cls)
		}
	}
	return candidates
}
