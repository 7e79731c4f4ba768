package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// defaultPlatforms is the initial platform registry. The table is extensible;
// new platforms can be added at runtime without a code change.
var defaultPlatforms = [][2]string{
	{"facebook", "Facebook"},
	{"instagram", "Instagram"},
	{"linkedin", "LinkedIn"},
}

// Seed populates the database with initial development data: the platform
// registry, a default brand, and an admin user. Safe to run repeatedly.
func Seed(db *sql.DB) error {
	for _, p := range defaultPlatforms {
		_, err := db.Exec(`
			INSERT INTO platforms (id, display_name, is_active)
			VALUES ($1, $2, TRUE)
			ON CONFLICT (id) DO NOTHING
		`, p[0], p[1])
		if err != nil {
			return fmt.Errorf("seed platform %s: %w", p[0], err)
		}
	}

	_, err := db.Exec(`
		INSERT INTO brands (id, display_name, is_active)
		VALUES ($1, $2, TRUE)
		ON CONFLICT (id) DO NOTHING
	`, "neuroflow-ai", "NeuroFlow AI")
	if err != nil {
		return fmt.Errorf("seed default brand: %w", err)
	}

	// Create a default admin user only if no users exist yet.
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}
	if count > 0 {
		slog.Info("users already seeded, skipping")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO users (email, password_hash, display_name, role)
		VALUES ($1, $2, $3, $4)
	`, "admin@postforge.local", string(hash), "Admin", "admin")
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	slog.Info("database seeded with default admin user",
		"email", "admin@postforge.local",
		"password", "admin",
	)

	return nil
}
