// Package config loads the operator's runtime configuration from its
// environment.
package config

import (
	"os"
	"strconv"
)

const (
	DefaultNamespace          = "kube-system"
	DefaultBackupStoreType    = "s3"
	DefaultBackupStoreRegion  = "us-east-1"
	DefaultOperatorName       = "cupcake-operator"
	DefaultMetricsPort        = "8080"
	DefaultLeaderElectionName = "cupcake-operator-leader"
)

// BackupStore holds the external etcd-snapshot upload destination. The
// operator never talks to the store directly: only Enabled is read (by the
// backup coordinator); Type, Bucket, Endpoint and Region are loaded but are
// not written into the backup ConfigMap.
type BackupStore struct {
	Enabled  bool
	Type     string
	Bucket   string
	Endpoint string
	Region   string
}

// Config is the operator's environment-derived runtime configuration.
type Config struct {
	Namespace             string
	OperatorName          string
	LeaderElectionEnabled bool
	MetricsEnabled        bool
	MetricsPort           string
	Backup                BackupStore
}

// Load reads Config from the process environment, applying the documented
// defaults for anything unset.
func Load() *Config {
	return &Config{
		Namespace:             getEnv("NAMESPACE", DefaultNamespace),
		OperatorName:          getEnv("OPERATOR_NAME", DefaultOperatorName),
		LeaderElectionEnabled: getBoolEnv("LEADER_ELECTION_ENABLED", true),
		MetricsEnabled:        getBoolEnv("METRICS_ENABLED", true),
		MetricsPort:           getEnv("METRICS_PORT", DefaultMetricsPort),
		Backup: BackupStore{
			Enabled:  getBoolEnv("BACKUP_STORE_ENABLED", false),
			Type:     getEnv("BACKUP_STORE_TYPE", DefaultBackupStoreType),
			Bucket:   getEnv("BACKUP_STORE_BUCKET", ""),
			Endpoint: getEnv("BACKUP_STORE_ENDPOINT", ""),
			Region:   getEnv("BACKUP_STORE_REGION", DefaultBackupStoreRegion),
		},
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func getBoolEnv(key string, fallback bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}
