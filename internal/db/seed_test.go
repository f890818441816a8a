package db

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/roadsmart/backend/internal/config"
	"github.com/roadsmart/backend/internal/models"
)

func TestSeedUsers(t *testing.T) {
	gdb, err := Open(config.Database{
		Driver:     "sqlite",
		SQLitePath: "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared",
	})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := AutoMigrate(gdb); err != nil {
		t.Fatalf("AutoMigrate failed: %v", err)
	}
	if err := Ping(gdb); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}

	users := []UserData{
		{Username: "admin", Password: "admin123", Role: "admin"},
		{Username: "crew", Password: "crew123", Role: "repair_team"},
		{Username: "odd", Password: "odd123", Role: "manager"},
		{Username: "", Password: "nobody"},
	}

	created, err := SeedUsers(gdb, users)
	if err != nil {
		t.Fatalf("SeedUsers failed: %v", err)
	}
	if created != 3 {
		t.Errorf("expected 3 users created, got %d", created)
	}

	var odd models.User
	gdb.Where("username = ?", "odd").First(&odd)
	if odd.Role != models.RoleCitizen {
		t.Errorf("expected unknown role to fall back to citizen, got %s", odd.Role)
	}

	again, err := SeedUsers(gdb, users)
	if err != nil || again != 0 {
		t.Errorf("expected reseeding to be a no-op, got %d (%v)", again, err)
	}
}

func TestLoadSeedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "users.json")
	if err := os.WriteFile(path, []byte(`{"users":[{"username":"a","password":"secret","role":"citizen"}]}`), 0644); err != nil {
		t.Fatal(err)
	}

	seed, err := LoadSeedFile(filepath.Join(dir, "missing.json"), path)
	if err != nil {
		t.Fatalf("LoadSeedFile failed: %v", err)
	}
	if len(seed.Users) != 1 || seed.Users[0].Username != "a" {
		t.Errorf("unexpected seed %+v", seed)
	}

	if _, err := LoadSeedFile(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected an error when no file exists")
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open(config.Database{Driver: "mysql"}); err == nil {
		t.Error("expected an error for an unsupported driver")
	}
}
