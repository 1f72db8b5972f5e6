package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/diillson/ticket-region-reports/internal/domain/repository"
	"github.com/diillson/ticket-region-reports/internal/shared/types"
	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"
)

// EnvPrefix é o prefixo das variáveis de ambiente lidas por LoadEnv.
const EnvPrefix = "TICKET_REPORTS"

// ConfigRepositoryImpl implementa o ConfigRepository.
type ConfigRepositoryImpl struct {
	validate *validator.Validate
}

// NewConfigRepository cria uma nova implementação do ConfigRepository.
func NewConfigRepository() repository.ConfigRepository {
	return &ConfigRepositoryImpl{
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// LoadConfigFile carrega um arquivo de configuração TOML, YAML ou JSON.
func (r *ConfigRepositoryImpl) LoadConfigFile(filePath string) (*types.Config, error) {
	fileExtension := filepath.Ext(filePath)
	fileExtension = strings.ToLower(fileExtension)

	// Verifica se o arquivo existe
	fileInfo, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("error accessing config file: %w", err)
	}

	if fileInfo.IsDir() {
		return nil, fmt.Errorf("%s is a directory, not a file", filePath)
	}

	fileData, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config types.Config

	switch fileExtension {
	case ".toml":
		if err := toml.Unmarshal(fileData, &config); err != nil {
			return nil, fmt.Errorf("error parsing TOML file: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(fileData, &config); err != nil {
			return nil, fmt.Errorf("error parsing YAML file: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(fileData, &config); err != nil {
			return nil, fmt.Errorf("error parsing JSON file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", fileExtension)
	}

	if err := r.Validate(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadEnv lê TICKET_REPORTS_* (ex.: TICKET_REPORTS_S3_BUCKET). Variáveis
// ausentes deixam o campo vazio para o merge.
func (r *ConfigRepositoryImpl) LoadEnv() (*types.Config, error) {
	var config types.Config
	if err := envconfig.Process(EnvPrefix, &config); err != nil {
		return nil, fmt.Errorf("error reading environment: %w", err)
	}

	if err := r.Validate(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks field constraints declared on types.Config.
func (r *ConfigRepositoryImpl) Validate(config *types.Config) error {
	if err := r.validate.Struct(config); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed '%s' (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
			}
			return fmt.Errorf("%w: %s", types.ErrInvalidConfiguration, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", types.ErrInvalidConfiguration, err)
	}
	return nil
}
