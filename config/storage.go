package config

import (
	"os"
	"strconv"

	"thesis-management-api/storage"
)

// DefaultStorageCapacity mirrors the low-single-digit-megabyte ceiling of
// the original browser storage the portal migrated from.
const DefaultStorageCapacity = 5 * 1024 * 1024

// StorageConfig assembles the record-store configuration from the
// environment. The store itself takes this as an explicit parameter; there
// is no package-level store handle.
func StorageConfig() storage.Config {
	cfg := storage.Config{
		Path:          os.Getenv("STORAGE_PATH"),
		CapacityBytes: DefaultStorageCapacity,
	}
	if cfg.Path == "" {
		cfg.Path = "./data/records"
	}
	if raw := os.Getenv("STORAGE_CAPACITY_BYTES"); raw != "" {
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil && n > 0 {
			cfg.CapacityBytes = n
		}
	}
	return cfg
}
