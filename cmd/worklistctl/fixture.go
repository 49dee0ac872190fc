package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/noah-isme/pacs-worklist-api/internal/models"
)

type fixture struct {
	Studies []models.Study `yaml:"studies"`
}

func loadFixture(path string) ([]models.Study, error) {
	if path == "" {
		return nil, fmt.Errorf("--fixture is required")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	var doc fixture
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return doc.Studies, nil
}
