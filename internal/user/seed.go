package user

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type AccountYAML struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// SeedFile is the YAML document accepted by ImportUsersYAML.
type SeedFile struct {
	Users []AccountYAML `yaml:"users"`
}

// LoadUsersFromYAML reads a seed file from disk and imports it.
func LoadUsersFromYAML(ctx context.Context, path string, s *Store) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read seed file: %w", err)
	}
	return ImportUsersYAML(ctx, data, s)
}

// ImportUsersYAML creates every listed account that does not exist yet and
// returns how many were created. Existing accounts keep their password.
func ImportUsersYAML(ctx context.Context, data []byte, s *Store) (int, error) {
	var file SeedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return 0, fmt.Errorf("parse seed file: %w", err)
	}

	created := 0
	for _, account := range file.Users {
		existing, err := s.Find(ctx, account.Username)
		if err != nil {
			return created, err
		}
		if existing != nil {
			continue
		}
		if _, err := s.Create(ctx, account.Username, account.Password); err != nil {
			return created, fmt.Errorf("create %q: %w", account.Username, err)
		}
		created++
	}
	return created, nil
}
