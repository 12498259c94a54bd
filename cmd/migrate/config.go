package main

import (
	"os"
	"path/filepath"

	"bookshelf/internal/config"
)

func loadEnvFiles() {
	config.LoadEnvFiles()
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// migrationsDir is where create writes new files for driver. The binaries
// embed this tree, so new files ship on the next build.
func migrationsDir(driver string) string {
	if v := os.Getenv("MIGRATIONS_DIR"); v != "" {
		return filepath.Join(v, driver)
	}
	return filepath.Join("db", "migrations", driver)
}
