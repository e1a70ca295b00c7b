package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/tenantdb/internal/flagx"
	"github.com/dmitrijs2005/tenantdb/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON unmarshalling.
// It uses timex.Duration for interval fields, which allows parsing both
// string values such as "30s" and integer nanoseconds.
//
// This struct is an intermediate DTO (Data Transfer Object) used only for
// reading JSON configuration files. After unmarshalling, its fields are
// copied into the runtime Config struct which uses time.Duration.
type JsonConfig struct {
	EndpointAddrGRPC    string         `json:"endpoint_addr_grpc"`
	MetricsAddr         string         `json:"metrics_addr"`
	DatabaseDSN         string         `json:"database_dsn"`
	PoolSize            int32          `json:"pool_size"`
	MaxOverflow         *int32         `json:"max_overflow"`
	AcquireTimeout      timex.Duration `json:"acquire_timeout"`
	ConnMaxLifetime     timex.Duration `json:"conn_max_lifetime"`
	HealthCheckInterval timex.Duration `json:"health_check_interval"`
	PreValidate         *bool          `json:"pre_validate"`
	SessionTTL          timex.Duration `json:"session_ttl"`
	CleanupSchedule     string         `json:"cleanup_schedule"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The lookup order for the JSON file path is:
//
//	The -c or -config command-line flags.
//	If it is not set, no JSON file is loaded.
//
// If the file path is found, parseJson attempts to read and unmarshal it
// into a JsonConfig. Values present in the file are copied into the target
// Config; absent fields keep their current (default) values. MaxOverflow and
// PreValidate use pointer fields so that explicit zero/false survive the
// overlay. If the file cannot be read or contains invalid JSON, the function
// panics.
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

	if c.EndpointAddrGRPC != "" {
		config.EndpointAddrGRPC = c.EndpointAddrGRPC
	}
	if c.MetricsAddr != "" {
		config.MetricsAddr = c.MetricsAddr
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.PoolSize > 0 {
		config.PoolSize = c.PoolSize
	}
	if c.MaxOverflow != nil {
		config.MaxOverflow = *c.MaxOverflow
	}
	if c.AcquireTimeout.Duration > 0 {
		config.AcquireTimeout = time.Duration(c.AcquireTimeout.Duration)
	}
	if c.ConnMaxLifetime.Duration > 0 {
		config.ConnMaxLifetime = time.Duration(c.ConnMaxLifetime.Duration)
	}
	if c.HealthCheckInterval.Duration > 0 {
		config.HealthCheckInterval = time.Duration(c.HealthCheckInterval.Duration)
	}
	if c.PreValidate != nil {
		config.PreValidate = *c.PreValidate
	}
	if c.SessionTTL.Duration > 0 {
		config.SessionTTL = time.Duration(c.SessionTTL.Duration)
	}
	if c.CleanupSchedule != "" {
		config.CleanupSchedule = c.CleanupSchedule
	}
}
