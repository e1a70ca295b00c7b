package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/tenantdb/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   ops gRPC bind address (e.g., ":3200")
//	-m string   metrics bind address (e.g., ":9090")
//	-d string   PostgreSQL DSN
//	-p int      pool size (base connections)
//	-o int      max overflow connections
//	-t int      acquire timeout, seconds
//	-l int      connection max lifetime, minutes
//	-i int      health check interval, seconds
//	-v bool     validate connections on acquire (-v=false to disable)
//	-s int      session TTL, hours
//	-j string   janitor cron spec (e.g., "@every 1h")
//
// Notes:
//   - The function first filters os.Args to only the flags it recognizes using
//     flagx.FilterArgs, avoiding collisions with other components.
//   - Duration flags are accepted as integers and then converted to
//     time.Duration values.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-m", "-d", "-p", "-o", "-t", "-l", "-i", "-v", "-s", "-j"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port of the ops endpoint")
	fs.StringVar(&config.MetricsAddr, "m", config.MetricsAddr, "address and port of the metrics endpoint")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")

	poolSize := fs.Int("p", int(config.PoolSize), "pool size (base connections)")
	maxOverflow := fs.Int("o", int(config.MaxOverflow), "max overflow connections")
	acquireTimeout := fs.Int("t", int(config.AcquireTimeout.Seconds()), "acquire timeout (in seconds)")
	connMaxLifetime := fs.Int("l", int(config.ConnMaxLifetime.Minutes()), "connection max lifetime (in minutes)")
	healthCheckInterval := fs.Int("i", int(config.HealthCheckInterval.Seconds()), "health check interval (in seconds)")
	sessionTTL := fs.Int("s", int(config.SessionTTL.Hours()), "session ttl (in hours)")

	fs.BoolVar(&config.PreValidate, "v", config.PreValidate, "validate connections on acquire")
	fs.StringVar(&config.CleanupSchedule, "j", config.CleanupSchedule, "janitor cron spec for expired session cleanup")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.PoolSize = int32(*poolSize)
	config.MaxOverflow = int32(*maxOverflow)
	config.AcquireTimeout = time.Duration(*acquireTimeout) * time.Second
	config.ConnMaxLifetime = time.Duration(*connMaxLifetime) * time.Minute
	config.HealthCheckInterval = time.Duration(*healthCheckInterval) * time.Second
	config.SessionTTL = time.Duration(*sessionTTL) * time.Hour
}
