package fs

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"cellar/internal/domain"
)

// CatalogRecord is one wine observation in a catalog file.
type CatalogRecord struct {
	domain.WineDescriptor `yaml:",inline"`
	Type                  string                    `yaml:"type,omitempty"`
	Enrichment            *domain.EnrichmentPayload `yaml:"enrichment,omitempty"`
}

type catalogFile struct {
	Wines []CatalogRecord `yaml:"wines"`
}

// LoadCatalogFile reads the wines listed in a YAML catalog file. Files may
// hold several YAML documents; records from all of them are returned in
// order.
func LoadCatalogFile(path string) ([]CatalogRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	records, err := ParseCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// ParseCatalog decodes catalog YAML.
func ParseCatalog(data []byte) ([]CatalogRecord, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var records []CatalogRecord
	for {
		var doc catalogFile
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse catalog: %w", err)
		}
		records = append(records, doc.Wines...)
	}
	return records, nil
}
