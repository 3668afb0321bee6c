package questionbank

import (
	"embed"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

//go:embed banks/*.yaml
var embedded embed.FS

// Registry holds one bank per assessment type. It is built once at startup
// and only read afterwards.
type Registry struct {
	banks map[string]*Bank
}

// Options tweak how a registry is loaded.
type Options struct {
	// Dir replaces the embedded banks with *.yaml files from a directory.
	Dir string
	// RetakeDays overrides the bank cooldown per assessment type.
	RetakeDays map[string]int
}

// NewRegistry loads the embedded banks, or the ones in opts.Dir when set.
func NewRegistry(opts Options) (*Registry, error) {
	var (
		fsys fs.FS
		root string
	)
	if opts.Dir != "" {
		fsys, root = os.DirFS(opts.Dir), "."
	} else {
		fsys, root = embedded, "banks"
	}
	reg, err := LoadFS(fsys, root)
	if err != nil {
		return nil, err
	}
	for typ, days := range opts.RetakeDays {
		bank, ok := reg.banks[typ]
		if !ok {
			log.Warn().Str("assessmentType", typ).Msg("Retake override for unknown assessment type ignored")
			continue
		}
		if days <= 0 {
			return nil, errors.Errorf("retake override for %s must be positive, got %d", typ, days)
		}
		reg.banks[typ] = bank.withRetakeAfter(time.Duration(days) * 24 * time.Hour)
	}
	return reg, nil
}

// LoadFS parses every *.yaml file under dir.
func LoadFS(fsys fs.FS, dir string) (*Registry, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, errors.Wrapf(err, "reading question bank directory %s", dir)
	}
	reg := &Registry{banks: make(map[string]*Bank)}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		name := path.Join(dir, entry.Name())
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, errors.Wrapf(err, "reading %s", name)
		}
		bank, err := Parse(data, name)
		if err != nil {
			return nil, err
		}
		if _, dup := reg.banks[bank.Type()]; dup {
			return nil, errors.Errorf("assessment type %s defined twice (second in %s)", bank.Type(), name)
		}
		reg.banks[bank.Type()] = bank
		log.Debug().Str("assessmentType", bank.Type()).Int("version", bank.Version()).Int("questions", bank.Len()).Msg("Question bank loaded")
	}
	if len(reg.banks) == 0 {
		return nil, errors.Errorf("no question banks found in %s", dir)
	}
	return reg, nil
}

// NewRegistryFromBanks builds a registry from already parsed banks.
func NewRegistryFromBanks(banks ...*Bank) *Registry {
	reg := &Registry{banks: make(map[string]*Bank, len(banks))}
	for _, b := range banks {
		reg.banks[b.Type()] = b
	}
	return reg
}

func (r *Registry) Get(assessmentType string) (*Bank, bool) {
	b, ok := r.banks[assessmentType]
	return b, ok
}

// Types lists the registered assessment types in lexicographic order.
func (r *Registry) Types() []string {
	out := make([]string, 0, len(r.banks))
	for t := range r.banks {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
