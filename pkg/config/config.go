// Package config persists the CLI's local state (the stable local uuid
// and a list of previously-seen bridges) across runs, since a
// caller-managed local uuid must stay stable to keep registration valid
// (spec.md §6). The ventbridge library itself is stateless and takes a
// local uuid as a plain parameter; this package only serves cmd/ventbridge.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/airnode/ventbridge"
	"github.com/google/uuid"
	"github.com/spf13/viper"
)

// KnownBridge records one bridge this CLI has previously talked to.
type KnownBridge struct {
	UUID     string `mapstructure:"uuid" yaml:"uuid"`
	Name     string `mapstructure:"name" yaml:"name"`
	LastHost string `mapstructure:"last_host" yaml:"last_host"`
}

// State is the persisted shape of $XDG_CONFIG_HOME/ventbridge/config.yaml.
type State struct {
	LocalUUID    string        `mapstructure:"local_uuid" yaml:"local_uuid"`
	KnownBridges []KnownBridge `mapstructure:"known_bridges" yaml:"known_bridges"`
}

// Store wraps a Viper instance bound to the config file on disk.
type Store struct {
	v    *viper.Viper
	path string
}

// Load reads the config file, creating it with a freshly generated
// local uuid if it does not exist yet.
func Load() (*Store, error) {
	dir, err := configDir()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("config: create config dir: %w", err)
	}
	path := filepath.Join(dir, "config.yaml")

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	store := &Store{v: v, path: path}

	if err := v.ReadInConfig(); err != nil {
		if !os.IsNotExist(err) {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("config: read %s: %w", path, err)
			}
		}
		v.Set("local_uuid", uuid.New().String())
		v.Set("known_bridges", []KnownBridge{})
		if err := v.WriteConfigAs(path); err != nil {
			return nil, fmt.Errorf("config: write %s: %w", path, err)
		}
	}
	return store, nil
}

func configDir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("config: determine home dir: %w", err)
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "ventbridge"), nil
}

// State returns the current persisted state.
func (s *Store) State() (State, error) {
	var st State
	if err := s.v.Unmarshal(&st); err != nil {
		return State{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	return st, nil
}

// LocalUUID parses the persisted local uuid.
func (s *Store) LocalUUID() (ventbridge.UUID, error) {
	st, err := s.State()
	if err != nil {
		return ventbridge.UUID{}, err
	}
	return ventbridge.ParseUUID(st.LocalUUID)
}

// RememberBridge upserts a KnownBridge entry by uuid and persists it.
func (s *Store) RememberBridge(b KnownBridge) error {
	st, err := s.State()
	if err != nil {
		return err
	}
	replaced := false
	for i, existing := range st.KnownBridges {
		if existing.UUID == b.UUID {
			st.KnownBridges[i] = b
			replaced = true
			break
		}
	}
	if !replaced {
		st.KnownBridges = append(st.KnownBridges, b)
	}
	s.v.Set("known_bridges", st.KnownBridges)
	if err := s.v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("config: write %s: %w", s.path, err)
	}
	return nil
}
