package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/avolkovs/teamcomp/internal/flagx"
	"github.com/avolkovs/teamcomp/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON unmarshalling.
// It uses timex.Duration for interval fields, which allows parsing both
// string values such as "15m" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON configuration
// files. After unmarshalling, its fields are copied into the runtime Config
// struct which uses time.Duration.
type JsonConfig struct {
	EndpointAddrHTTP      string         `json:"endpoint_addr_http"`
	DatabaseDSN           string         `json:"database_dsn"`
	SecretKey             string         `json:"secret_key"`
	AdminUser             string         `json:"admin_user"`
	AdminPassword         string         `json:"admin_password"`
	TokenValidityDuration timex.Duration `json:"token_validity_duration"`
	ProviderBaseURL       string         `json:"provider_base_url"`
	ProviderTimeout       timex.Duration `json:"provider_timeout"`
	IngestInterval        timex.Duration `json:"ingest_interval"`
	IngestWorkers         int            `json:"ingest_workers"`
	S3AccessKey           string         `json:"s3_access_key"`
	S3SecretKey           string         `json:"s3_secret_key"`
	S3Bucket              string         `json:"s3_bucket"`
	S3Region              string         `json:"s3_region"`
	S3BaseEndpoint        string         `json:"s3_base_endpoint"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The file path comes from the -c or -config command-line flags; if neither
// is set, no JSON file is loaded. If the file cannot be read or contains
// invalid JSON, the function panics.
//
// The caller is expected to merge these values with defaults and
// command-line flags as part of the full configuration process.
func parseJson(config *Config) {

	// try flags
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	config.EndpointAddrHTTP = c.EndpointAddrHTTP
	config.DatabaseDSN = c.DatabaseDSN
	config.SecretKey = c.SecretKey
	config.AdminUser = c.AdminUser
	config.AdminPassword = c.AdminPassword
	config.TokenValidityDuration = time.Duration(c.TokenValidityDuration.Duration)
	config.ProviderBaseURL = c.ProviderBaseURL
	config.ProviderTimeout = time.Duration(c.ProviderTimeout.Duration)
	config.IngestInterval = time.Duration(c.IngestInterval.Duration)
	config.IngestWorkers = c.IngestWorkers
	config.S3AccessKey = c.S3AccessKey
	config.S3SecretKey = c.S3SecretKey
	config.S3Bucket = c.S3Bucket
	config.S3Region = c.S3Region
	config.S3BaseEndpoint = c.S3BaseEndpoint
}
