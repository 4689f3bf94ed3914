package config

import (
	"encoding/json"
	"os"

	"github.com/ebalodis/shellvault/internal/flagx"
	"github.com/ebalodis/shellvault/internal/timex"
)

// JsonConfig is the DTO used for reading JSON configuration files. Duration
// fields accept both strings such as "24h" and integer nanoseconds. After
// unmarshalling, non-empty values are copied into the runtime Config.
type JsonConfig struct {
	EndpointAddr          string         `json:"endpoint_addr"`
	DatabaseDSN           string         `json:"database_dsn"`
	SecretKey             string         `json:"secret_key"`
	TokenValidityDuration timex.Duration `json:"token_validity_duration"`
	BlobBackend           string         `json:"blob_backend"`
	UploadDir             string         `json:"upload_dir"`
	UploadBasePath        string         `json:"upload_base_path"`
	S3RootUser            string         `json:"s3_root_user"`
	S3RootPassword        string         `json:"s3_root_password"`
	S3Bucket              string         `json:"s3_bucket"`
	S3Region              string         `json:"s3_region"`
	S3BaseEndpoint        string         `json:"s3_base_endpoint"`
	S3KeyPrefix           string         `json:"s3_key_prefix"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance. The file path comes from the -c/-config flags; when
// neither is set, no file is loaded. Values absent from the file leave the
// existing Config fields untouched. An unreadable or invalid file panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()

	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setIfNotEmpty := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}

	setIfNotEmpty(&config.EndpointAddr, c.EndpointAddr)
	setIfNotEmpty(&config.DatabaseDSN, c.DatabaseDSN)
	setIfNotEmpty(&config.SecretKey, c.SecretKey)
	if c.TokenValidityDuration.Duration != 0 {
		config.TokenValidityDuration = c.TokenValidityDuration.Duration
	}
	setIfNotEmpty(&config.BlobBackend, c.BlobBackend)
	setIfNotEmpty(&config.UploadDir, c.UploadDir)
	setIfNotEmpty(&config.UploadBasePath, c.UploadBasePath)
	setIfNotEmpty(&config.S3RootUser, c.S3RootUser)
	setIfNotEmpty(&config.S3RootPassword, c.S3RootPassword)
	setIfNotEmpty(&config.S3Bucket, c.S3Bucket)
	setIfNotEmpty(&config.S3Region, c.S3Region)
	setIfNotEmpty(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setIfNotEmpty(&config.S3KeyPrefix, c.S3KeyPrefix)
}
