// Package dataset loads entity records from YAML files.
//
// A dataset file lists raw records and the sealing mode used to build them:
//
//	allow_unknown: false
//	records:
//	  - persisted: {userName: ada, age: 22}
//	    transient: {admin: false}
//
// Unknown top-level or record fields are rejected. Values must be strings,
// finite numbers, booleans, null, sequences or mappings.
package dataset

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/modelkit/pkg/model"
	"github.com/roach88/modelkit/pkg/value"
)

// File is the YAML layout of a dataset.
type File struct {
	// AllowUnknown seals (false) or opens (true) every loaded entity.
	AllowUnknown bool `yaml:"allow_unknown"`

	// Records are the raw entity inputs in collection order.
	Records []Record `yaml:"records"`
}

// Record is one raw entity.
type Record struct {
	Persisted map[string]any `yaml:"persisted"`
	Transient map[string]any `yaml:"transient"`
}

// Dataset is a parsed dataset ready to build entities.
type Dataset struct {
	Path         string
	AllowUnknown bool
	Raws         []model.Raw
}

// RecordError reports a record whose values cannot be converted.
type RecordError struct {
	Index     int
	Namespace model.Namespace
	Err       error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("records[%d].%s: %v", e.Index, e.Namespace, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// Load reads and parses the dataset at path.
func Load(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset file: %w", err)
	}
	ds, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	ds.Path = path
	return ds, nil
}

// Parse decodes a dataset document.
func Parse(data []byte) (*Dataset, error) {
	var f File
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to parse YAML: empty document")
		}
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	ds := &Dataset{AllowUnknown: f.AllowUnknown}
	for i, rec := range f.Records {
		raw, err := rec.Raw(i)
		if err != nil {
			return nil, err
		}
		ds.Raws = append(ds.Raws, raw)
	}
	return ds, nil
}

// Raw converts the record into model input. index is used in errors.
func (r Record) Raw(index int) (model.Raw, error) {
	persisted, err := value.ObjectFromMap(r.Persisted)
	if err != nil {
		return model.Raw{}, &RecordError{Index: index, Namespace: model.Persisted, Err: err}
	}
	transient, err := value.ObjectFromMap(r.Transient)
	if err != nil {
		return model.Raw{}, &RecordError{Index: index, Namespace: model.Transient, Err: err}
	}
	return model.Raw{Persisted: persisted, Transient: transient}, nil
}

// Options returns entity options for the dataset's sealing mode followed by
// extra.
func (d *Dataset) Options(extra ...model.Option) []model.Option {
	return append([]model.Option{model.WithAllowUnknown(d.AllowUnknown)}, extra...)
}

// Collection builds a collection of plain entities from the dataset.
func (d *Dataset) Collection(logger *slog.Logger, extra ...model.Option) (*model.Collection[*model.Entity], error) {
	return model.NewCollection(d.Raws, model.CollectionConfig[*model.Entity]{
		Constructor:   model.New,
		Owner:         d,
		Logger:        logger,
		EntityOptions: d.Options(extra...),
	})
}
