package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	customErrors "github.com/tuannvm/enclave-resolver/internal/common/errors"
	"github.com/tuannvm/enclave-resolver/internal/common/logging"
)

//go:embed config-schema.json
var configSchema string

const schemaURL = "config-schema.json"

var knownLogLevels = []string{"debug", "info", "warn", "warning", "error", "fatal"}

// ValidateAfterDefaults validates configuration after defaults and env overrides
func (c *Config) ValidateAfterDefaults() error {
	if !containsFold(knownLogLevels, c.LogLevel) {
		return customErrors.NewConfigErrorf("invalid_log_level", "unknown log level %q", c.LogLevel)
	}
	for i, name := range c.Participants {
		if strings.TrimSpace(name) == "" {
			return customErrors.NewConfigErrorf("invalid_participant", "participant %d is empty", i)
		}
	}
	if c.Tracing.Endpoint != "" &&
		!strings.HasPrefix(c.Tracing.Endpoint, "http://") && !strings.HasPrefix(c.Tracing.Endpoint, "https://") {
		return customErrors.NewConfigErrorf("invalid_tracing_endpoint", "tracing endpoint %q must be an http(s) URL", c.Tracing.Endpoint)
	}
	return nil
}

// ValidateDocument validates raw JSON configuration data against the embedded schema
func ValidateDocument(data []byte) error {
	schema, err := jsonschema.CompileString(schemaURL, configSchema)
	if err != nil {
		return customErrors.WrapConfigError(err, "schema_compile", "failed to compile JSON schema")
	}

	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return customErrors.WrapConfigError(err, "invalid_json", "failed to parse config file")
	}

	if err := schema.Validate(doc); err != nil {
		return customErrors.WrapConfigError(err, "schema_violation", "configuration validation failed")
	}
	return nil
}

// removeSchemaField removes the $schema field from JSON data to avoid strict parsing errors
func removeSchemaField(configData []byte) []byte {
	var rawConfig map[string]interface{}
	if err := json.Unmarshal(configData, &rawConfig); err != nil {
		return configData // Return original if unmarshal fails
	}

	delete(rawConfig, "$schema")

	if cleanData, err := json.Marshal(rawConfig); err == nil {
		return cleanData
	}

	return configData
}

// LoadConfig loads configuration from defaults, a local .env file, environment
// variables and finally the config file, in increasing order of priority
func LoadConfig(configFile string, logger *logging.Logger) (*Config, error) {
	if logger == nil {
		logger = logging.Discard()
	}

	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		logger.DebugKV("No .env file loaded", "error", err)
	} else {
		logger.InfoKV("Loaded environment variables from .env file", "success", true)
	}

	cfg := &Config{}
	cfg.ApplyDefaults()
	cfg.ApplyEnvironmentVariables()

	if configFile != "" {
		if err := loadConfigFile(cfg, configFile, logger); err != nil {
			return nil, err
		}
	}

	if err := cfg.ValidateAfterDefaults(); err != nil {
		return nil, customErrors.Wrap(err, "configuration validation failed")
	}

	return cfg, nil
}

// loadConfigFile loads configuration from a file
func loadConfigFile(cfg *Config, configFile string, logger *logging.Logger) error {
	configData, err := os.ReadFile(configFile)
	if err != nil {
		if os.IsNotExist(err) {
			return customErrors.NewConfigErrorf("config_missing", "config file does not exist: %s", configFile)
		}
		return customErrors.WrapConfigError(err, "config_read", fmt.Sprintf("failed to read config file %s", configFile))
	}

	if isYAMLFile(configFile) {
		if configData, err = yamlToJSON(configData); err != nil {
			return err
		}
	}

	if err := ValidateDocument(configData); err != nil {
		return err
	}

	configData = removeSchemaField(configData)
	dec := json.NewDecoder(bytes.NewReader(configData))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return customErrors.WrapConfigError(err, "config_parse", "failed to parse config file")
	}

	logger.InfoKV("Loaded configuration from file", "file", configFile, "participants", len(cfg.Participants))
	return nil
}

func isYAMLFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// yamlToJSON converts a YAML config document so it goes through the same schema
// validation and strict decoding as a JSON one
func yamlToJSON(data []byte) ([]byte, error) {
	var doc map[string]interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, customErrors.WrapConfigError(err, "config_parse", "failed to parse YAML config file")
	}
	if doc == nil {
		doc = map[string]interface{}{}
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, customErrors.WrapConfigError(err, "config_parse", "YAML config file is not representable as JSON")
	}
	return out, nil
}

func containsFold(values []string, item string) bool {
	for _, v := range values {
		if strings.EqualFold(v, item) {
			return true
		}
	}
	return false
}
