package loader

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"

	"github.com/afcarl/mcdp/internal/graph"
	"github.com/afcarl/mcdp/internal/poset"
)

// LoadMode controls how errors are handled during loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// Result contains the models of a document.
type Result struct {
	Models    map[string]*graph.Composite
	Value     cue.Value // the raw CUE value for additional processing
	FileCount int
}

// Names returns the model names sorted.
func (r *Result) Names() []string {
	names := make([]string, 0, len(r.Models))
	for name := range r.Models {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Model returns the named model.
func (r *Result) Model(name string) (*graph.Composite, error) {
	g, ok := r.Models[name]
	if !ok {
		return nil, &LoadError{Code: ErrCodeUnknownModel, Message: fmt.Sprintf("unknown model %q", name)}
	}
	return g, nil
}

// Loader compiles documents against a types universe.
type Loader struct {
	universe *poset.TypesUniverse
	mode     LoadMode
	logger   *slog.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithUniverse sets the universe used by Conversion leaves.
func WithUniverse(u *poset.TypesUniverse) Option {
	return func(l *Loader) {
		l.universe = u
	}
}

// WithMode sets the error handling mode (default LoadModeFailFast).
func WithMode(m LoadMode) Option {
	return func(l *Loader) {
		l.mode = m
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// New creates a Loader.
func New(opts ...Option) *Loader {
	l := &Loader{universe: poset.NewTypesUniverse(), logger: slog.Default()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadString compiles a single document. filename is used in positions.
func (l *Loader) LoadString(src, filename string) (*Result, []error) {
	value := cuecontext.New().CompileString(src, cue.Filename(filename))
	if err := value.Err(); err != nil {
		return nil, []error{fromCUE(ErrCodeBuildFailed, err)}
	}
	return l.extract(value, 1)
}

// LoadDir loads the CUE package in dir.
func (l *Loader) LoadDir(dir string) (*Result, []error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("models directory not found: %s", dir)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing models directory: %v", err), Err: err}}
	}
	if !info.IsDir() {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}}
	}

	files, err := FindCUEFiles(dir)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err), Err: err}}
	}
	if len(files) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}}
	}

	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, []error{fromCUE(ErrCodeLoadFailed, inst.Err)}
	}
	value := cuecontext.New().BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, []error{fromCUE(ErrCodeBuildFailed, err)}
	}
	return l.extract(value, len(files))
}

func (l *Loader) extract(value cue.Value, files int) (*Result, []error) {
	result := &Result{Models: make(map[string]*graph.Composite), Value: value, FileCount: files}

	modelsVal := value.LookupPath(cue.ParsePath("model"))
	if !modelsVal.Exists() {
		return result, []error{&LoadError{Code: ErrCodeNoModels, Message: "no models found"}}
	}
	iter, err := modelsVal.Fields()
	if err != nil {
		return result, []error{fromCUE(ErrCodeBuildFailed, err)}
	}
	models := make(map[string]cue.Value)
	var order []string
	for iter.Next() {
		models[iter.Label()] = iter.Value()
		order = append(order, iter.Label())
	}
	if len(order) == 0 {
		return result, []error{&LoadError{Code: ErrCodeNoModels, Message: "no models found"}}
	}

	c := newCompiler(models, l.universe)
	var errs []error
	for _, name := range order {
		g, err := c.model(name, models[name])
		if err != nil {
			l.logger.Debug("model rejected", "model", name, "err", err)
			errs = append(errs, err)
			if l.mode == LoadModeFailFast {
				return result, errs
			}
			continue
		}
		result.Models[name] = g
	}
	l.logger.Info("models loaded", "models", len(result.Models), "errors", len(errs), "files", files)
	return result, errs
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
