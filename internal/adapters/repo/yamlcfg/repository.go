// Package yamlcfg reads and updates the orchestrator's models.dev.yml.
package yamlcfg

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/jberros/btcvol-cli/internal/domain"
	"github.com/jberros/btcvol-cli/internal/ports"
	"github.com/spf13/viper"
	yaml "gopkg.in/yaml.v3"
)

const (
	configName = "config"
	configType = "toml"
	configDir  = ".btcvol"

	// ModelsPathKey resolves the models.dev.yml location: explicit Set >
	// BTCVOL_MODELS_CONFIG > ~/.btcvol/config.toml > default.
	ModelsPathKey = "models.path"

	defaultModelsPath = "deployment/model-orchestrator-local/config/models.dev.yml"

	modelsFileMode  = 0o644
	modelsDirMode   = 0o755
	tempFilePattern = ".models-*.yml.tmp"
)

type Repository struct {
	modelsPath string
	mu         *sync.RWMutex
}

// Concurrent CLI invocations in one process (tests, mostly) share a lock
// per resolved path; cross-process safety comes from the atomic rename in
// writeSchema.
var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

var _ ports.ModelConfigRepository = (*Repository)(nil)

func NewRepository(cfg *viper.Viper) (*Repository, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	cfg.SetConfigName(configName)
	cfg.SetConfigType(configType)
	if homeDir, err := os.UserHomeDir(); err == nil {
		cfg.AddConfigPath(filepath.Join(homeDir, configDir))
	}
	cfg.SetDefault(ModelsPathKey, defaultModelsPath)
	if err := cfg.BindEnv(ModelsPathKey, "BTCVOL_MODELS_CONFIG"); err != nil {
		return nil, fmt.Errorf("bind models config env: %w", err)
	}

	if err := cfg.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	modelsPath := cfg.GetString(ModelsPathKey)
	if modelsPath == "" {
		return nil, errors.New("models config path is empty")
	}
	modelsPath, err := filepath.Abs(modelsPath)
	if err != nil {
		return nil, fmt.Errorf("resolve models config path: %w", err)
	}
	modelsPath = filepath.Clean(modelsPath)

	return &Repository{modelsPath: modelsPath, mu: lockForPath(modelsPath)}, nil
}

func (r *Repository) Upsert(ctx context.Context, entry domain.ConfigEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := r.readSchema()
	if err != nil {
		return err
	}

	// Names are unique within the config; re-submitting a name replaces
	// its entry in place so unrelated entries keep their order.
	encoded := toSchema(entry)
	updated := false
	for i := range file.Models {
		if file.Models[i].Name == encoded.Name {
			file.Models[i] = encoded
			updated = true
			break
		}
	}
	if !updated {
		file.Models = append(file.Models, encoded)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	return r.writeSchema(file)
}

func (r *Repository) GetByID(ctx context.Context, id domain.ModelID) (domain.ConfigEntry, error) {
	if err := ctx.Err(); err != nil {
		return domain.ConfigEntry{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	file, err := r.readSchema()
	if err != nil {
		return domain.ConfigEntry{}, err
	}

	for _, entry := range file.Models {
		if entry.ID == string(id) {
			return fromSchema(entry), nil
		}
	}

	return domain.ConfigEntry{}, domain.ErrModelEntryNotFound
}

func (r *Repository) List(ctx context.Context) ([]domain.ConfigEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	file, err := r.readSchema()
	if err != nil {
		return nil, err
	}

	entries := make([]domain.ConfigEntry, 0, len(file.Models))
	for _, entry := range file.Models {
		entries = append(entries, fromSchema(entry))
	}

	return entries, nil
}

func (r *Repository) readSchema() (fileSchema, error) {
	data, err := os.ReadFile(r.modelsPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fileSchema{}, nil
		}
		return fileSchema{}, fmt.Errorf("read models config: %w", err)
	}

	var file fileSchema
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fileSchema{}, fmt.Errorf("decode models config: %w", err)
	}

	return file, nil
}

// writeSchema replaces the config atomically; a failed run can never leave
// a half-written models.dev.yml behind.
func (r *Repository) writeSchema(file fileSchema) error {
	if err := os.MkdirAll(filepath.Dir(r.modelsPath), modelsDirMode); err != nil {
		return fmt.Errorf("create models config directory: %w", err)
	}

	data, err := yaml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode models config: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(r.modelsPath), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp models config: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp models config: %w", err)
	}

	if err := tempFile.Chmod(modelsFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp models config: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp models config: %w", err)
	}

	if err := os.Rename(tempName, r.modelsPath); err != nil {
		return fmt.Errorf("replace models config: %w", err)
	}

	cleanup = false

	return nil
}

func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}
