package models

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/MeKo-Tech/wordgen/internal/model"
)

// Default models directory, relative to the working directory.
const DefaultModelsDir = "models"

// Environment variable for models directory override.
const EnvModelsDir = "WORDGEN_MODELS_DIR"

// Extensions are tried in this order when a bare model name is resolved.
var Extensions = []string{".txt", ".yaml", ".yml", ".json"}

// ModelInfo describes a model file found in the models directory.
type ModelInfo struct {
	Name   string       `json:"name"`
	Path   string       `json:"path"`
	Format model.Format `json:"format"`
	Size   int64        `json:"size_bytes"`
}

// GetModelsDir returns the models directory path from various sources
// Priority: 1. Explicit modelsDir parameter, 2. Environment variable, 3. Default.
func GetModelsDir(modelsDir string) string {
	if modelsDir != "" {
		return modelsDir
	}
	if envDir := os.Getenv(EnvModelsDir); envDir != "" {
		return envDir
	}
	return DefaultModelsDir
}

// ResolveModelPath maps a model reference to a file. A reference naming an
// existing file is used as is. Otherwise it is looked up in the models
// directory, with each of Extensions appended when it has no extension.
// Unresolvable references are returned unchanged so that loading reports
// the original name.
func ResolveModelPath(modelsDir, name string) string {
	if name == "" || name == "-" || fileExists(name) {
		return name
	}
	if filepath.IsAbs(name) {
		return name
	}

	base := GetModelsDir(modelsDir)
	candidates := []string{filepath.Join(base, name)}
	if filepath.Ext(name) == "" {
		for _, ext := range Extensions {
			candidates = append(candidates, filepath.Join(base, name+ext))
		}
	}
	for _, c := range candidates {
		if fileExists(c) {
			return c
		}
	}
	return name
}

// ValidateModelExists checks if a model file exists at the given path.
func ValidateModelExists(modelPath string) error {
	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		return fmt.Errorf("model file not found: %s", modelPath)
	}
	return nil
}

// ListAvailableModels returns the model files directly inside the models
// directory, sorted by name. A missing directory yields an empty list.
func ListAvailableModels(modelsDir string) ([]ModelInfo, error) {
	base := GetModelsDir(modelsDir)
	entries, err := os.ReadDir(base)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading models directory %s: %w", base, err)
	}

	var out []ModelInfo
	for _, e := range entries {
		if e.IsDir() || !hasModelExtension(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("reading models directory %s: %w", base, err)
		}
		path := filepath.Join(base, e.Name())
		out = append(out, ModelInfo{
			Name:   strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())),
			Path:   path,
			Format: model.FormatFromPath(path),
			Size:   info.Size(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func hasModelExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
