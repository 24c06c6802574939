// Package repository loads the training dataset snapshot.
package repository

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/okian/trainops/internal/domain/dedupe"
	"github.com/okian/trainops/internal/domain/model"
	"github.com/okian/trainops/pkg/logger"
	"github.com/okian/trainops/pkg/metrics"
)

// SeedName identifies the bundled dataset in logs.
const SeedName = "embedded:seed.json"

//go:embed seed.json
var seed []byte

// Store provides the dataset snapshot.
type Store interface {
	// Load reads the whole dataset. It fails with ErrDataLoad when the source
	// is absent or malformed.
	Load(ctx context.Context) (*model.Dataset, error)
}

// FileStore loads a dataset document from disk, or the bundled seed when no
// path is configured. JSON and YAML documents are supported.
type FileStore struct {
	path    string
	log     logger.Logger
	metrics *metrics.Manager
}

// NewFileStore creates a FileStore with configuration options.
func NewFileStore(opts ...Option) *FileStore {
	s := &FileStore{
		log:     logger.Nop(),
		metrics: metrics.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Source returns the path the store reads, or SeedName.
func (s *FileStore) Source() string {
	if s.path == "" {
		return SeedName
	}
	return s.path
}

// Load implements Store.
func (s *FileStore) Load(ctx context.Context) (*model.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDataLoad, err)
	}

	ds, err := s.load()
	if err != nil {
		s.metrics.RecordDatasetLoadError()
		s.log.Error(ctx, "dataset load failed", logger.String("source", s.Source()), logger.Error(err))
		return nil, err
	}

	counts := ds.Counts()
	fields := make([]logger.Field, 0, len(counts)+1)
	fields = append(fields, logger.String("dataset", s.Source()))
	for _, name := range collectionNames {
		s.metrics.UpdateDatasetRecords(name, counts[name])
		fields = append(fields, logger.Int(name, counts[name]))
	}
	s.log.Info(ctx, "dataset loaded", fields...)

	s.reportDuplicates(ctx, ds)
	return ds, nil
}

func (s *FileStore) load() (*model.Dataset, error) {
	raw, format := seed, formatJSON
	if s.path != "" {
		b, err := os.ReadFile(s.path)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDataLoad, err)
		}
		raw, format = b, formatOf(s.path)
	}

	var c model.Collections
	if err := decode(raw, format, &c); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDataLoad, s.Source(), err)
	}
	if missing := missingCollections(c); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s: %w: %s", ErrDataLoad, s.Source(), ErrMissingCollection, strings.Join(missing, ", "))
	}
	return model.NewDataset(c), nil
}

// reportDuplicates warns about repeated identifiers. They are a data quality
// problem, not a load failure.
func (s *FileStore) reportDuplicates(ctx context.Context, ds *model.Dataset) {
	check := func(collection string, ids []string) {
		_, dups := dedupe.Unique(ids)
		if len(dups) == 0 {
			return
		}
		s.metrics.RecordDuplicateIDs(collection, len(dups))
		s.log.Warn(ctx, "duplicate identifiers in dataset",
			logger.String("collection", collection),
			logger.Any("ids", dups))
	}

	cohorts := ds.Cohorts()
	ids := make([]string, len(cohorts))
	for i, c := range cohorts {
		ids[i] = c.ID.String()
	}
	check("cohorts", ids)

	learners := ds.Learners()
	ids = make([]string, len(learners))
	for i, l := range learners {
		ids[i] = l.ID.String()
	}
	check("learners", ids)

	modules := ds.Modules()
	ids = make([]string, len(modules))
	for i, m := range modules {
		ids[i] = m.ID.String()
	}
	check("modules", ids)
}

type format int

const (
	formatJSON format = iota
	formatYAML
)

func formatOf(path string) format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return formatYAML
	default:
		return formatJSON
	}
}

func decode(raw []byte, f format, c *model.Collections) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return fmt.Errorf("empty document")
	}
	if f == formatYAML {
		return yaml.Unmarshal(raw, c)
	}
	return json.Unmarshal(raw, c)
}

var collectionNames = []string{"cohorts", "learners", "attendance", "assessments", "satisfaction", "modules"}

func missingCollections(c model.Collections) []string {
	present := map[string]bool{
		"cohorts":      c.Cohorts != nil,
		"learners":     c.Learners != nil,
		"attendance":   c.Attendance != nil,
		"assessments":  c.Assessments != nil,
		"satisfaction": c.Satisfaction != nil,
		"modules":      c.Modules != nil,
	}
	var missing []string
	for _, name := range collectionNames {
		if !present[name] {
			missing = append(missing, name)
		}
	}
	return missing
}
