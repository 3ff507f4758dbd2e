// Package local loads lineage graphs from manifest files on disk.
//
// Two formats are supported, detected by file extension: TOML
// (.toml) and JSON (.json). Both decode into the shared
// [source.Document] wire format:
//
//	name = "pipeline"
//
//	[[nodes]]
//	id = "9f2e1a07"
//	labels = ["outputs/result.csv"]
//	parents = ["4babb105"]
//	workflow = "train.cwl"
package local

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/ebiiii/lineal/pkg/dag"
	"github.com/ebiiii/lineal/pkg/errors"
	"github.com/ebiiii/lineal/pkg/source"
)

// Loader reads lineage manifests from the filesystem.
type Loader struct{}

// New creates a filesystem loader.
func New() *Loader { return &Loader{} }

// Name identifies the loader in logs and hook payloads.
func (l *Loader) Name() string { return "local" }

// Load reads and validates the manifest at the given path. The name
// handed to a Loader is a file path; relative paths are resolved
// against the working directory.
func (l *Loader) Load(ctx context.Context, path string) (*dag.Graph, error) {
	doc, err := ReadDocument(path)
	if err != nil {
		return nil, err
	}
	return doc.ToGraph()
}

// ReadDocument parses a manifest file into the shared document format
// without building the graph.
func ReadDocument(path string) (*source.Document, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "manifest %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read manifest %s", path)
	}

	var doc source.Document
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "parse TOML manifest %s", path)
		}
	case ".json":
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "parse JSON manifest %s", path)
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported manifest format %q (want .toml or .json)", ext)
	}

	if doc.Name == "" {
		doc.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return &doc, nil
}

// WriteDocument serializes a document as JSON to the given path,
// creating parent directories as needed.
func WriteDocument(doc *source.Document, path string) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "marshal document %s", doc.Name)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Ensure Loader implements Source.
var _ source.Source = (*Loader)(nil)
