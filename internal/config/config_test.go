package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.Namespace != DefaultNamespace {
		t.Errorf("Namespace = %q, want %q", cfg.Namespace, DefaultNamespace)
	}
	if cfg.Backup.Enabled {
		t.Error("Backup.Enabled should default to false")
	}
	if !cfg.LeaderElectionEnabled {
		t.Error("LeaderElectionEnabled should default to true")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("NAMESPACE", "custom-ns")
	t.Setenv("BACKUP_STORE_ENABLED", "true")
	t.Setenv("BACKUP_STORE_BUCKET", "my-bucket")
	t.Setenv("LEADER_ELECTION_ENABLED", "false")

	cfg := Load()
	if cfg.Namespace != "custom-ns" {
		t.Errorf("Namespace = %q, want custom-ns", cfg.Namespace)
	}
	if !cfg.Backup.Enabled {
		t.Error("expected Backup.Enabled true")
	}
	if cfg.Backup.Bucket != "my-bucket" {
		t.Errorf("Backup.Bucket = %q, want my-bucket", cfg.Backup.Bucket)
	}
	if cfg.LeaderElectionEnabled {
		t.Error("expected LeaderElectionEnabled false")
	}
}

func TestLoadInvalidBoolFallsBack(t *testing.T) {
	t.Setenv("METRICS_ENABLED", "not-a-bool")
	cfg := Load()
	if !cfg.MetricsEnabled {
		t.Error("invalid bool env value should fall back to default (true)")
	}
}
