// Package config handles the XDG configuration directory, config.toml and file paths.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	// AppName is the application directory name.
	AppName = "chaintodo"

	// ConfigFile is the settings filename inside the config directory.
	ConfigFile = "config.toml"

	// OAuthClientFile is the Google OAuth client credentials filename (mirror only).
	OAuthClientFile = "oauth_client.json"

	// TokenFile is the stored Google OAuth token filename (mirror only).
	TokenFile = "token.json"

	// LocalDBFile is the default local ledger filename.
	LocalDBFile = "tasks.db"
)

// Backend names.
const (
	BackendLocal    = "local"
	BackendEthereum = "ethereum"
)

// Defaults for config.toml keys.
const (
	DefaultBackend    = BackendLocal
	DefaultListenAddr = "127.0.0.1:8080"
	DefaultMirrorList = "chaintodo"
	DefaultLogLevel   = "info"
	DefaultLogFormat  = "text"
)

// Settings holds values read from config.toml and CHAINTODO_* variables.
type Settings struct {
	Backend         string `toml:"backend"`
	RPCURL          string `toml:"rpc_url"`
	RPCToken        string `toml:"rpc_token"`
	ContractAddress string `toml:"contract_address"`
	ChainID         int64  `toml:"chain_id"`
	Keystore        string `toml:"keystore"`
	LocalDB         string `toml:"local_db"`
	ListenAddr      string `toml:"listen_addr"`
	MirrorList      string `toml:"mirror_list"`
	LogLevel        string `toml:"log_level"`
	LogFormat       string `toml:"log_format"`
}

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Settings are the merged file and environment values.
	Settings Settings

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	// Yes answers every confirmation prompt with yes.
	Yes bool

	// Stdin is read for confirmation answers. Nil means no answer.
	Stdin io.Reader
}

// New creates a new Config with the default or specified config directory.
// If configDir is empty, uses XDG_CONFIG_HOME/chaintodo or $HOME/.config/chaintodo.
// config.toml is optional; environment variables override it.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	cfg := &Config{Dir: dir}

	if _, err := os.Stat(cfg.ConfigPath()); err == nil {
		if _, err := toml.DecodeFile(cfg.ConfigPath(), &cfg.Settings); err != nil {
			return nil, fmt.Errorf("invalid %s: %w", ConfigFile, err)
		}
	}

	if err := cfg.Settings.applyEnv(os.Getenv); err != nil {
		return nil, err
	}
	cfg.Settings.applyDefaults(dir)

	if err := cfg.Settings.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

func (s *Settings) applyEnv(getenv func(string) string) error {
	strs := map[string]*string{
		"CHAINTODO_BACKEND":          &s.Backend,
		"CHAINTODO_RPC_URL":          &s.RPCURL,
		"CHAINTODO_RPC_TOKEN":        &s.RPCToken,
		"CHAINTODO_CONTRACT_ADDRESS": &s.ContractAddress,
		"CHAINTODO_KEYSTORE":         &s.Keystore,
		"CHAINTODO_LOCAL_DB":         &s.LocalDB,
		"CHAINTODO_LISTEN_ADDR":      &s.ListenAddr,
		"CHAINTODO_MIRROR_LIST":      &s.MirrorList,
		"CHAINTODO_LOG_LEVEL":        &s.LogLevel,
		"CHAINTODO_LOG_FORMAT":       &s.LogFormat,
	}
	for key, dst := range strs {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}

	if v := strings.TrimSpace(getenv("CHAINTODO_CHAIN_ID")); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid CHAINTODO_CHAIN_ID: %s", v)
		}
		s.ChainID = id
	}
	return nil
}

func (s *Settings) applyDefaults(dir string) {
	if s.Backend == "" {
		s.Backend = DefaultBackend
	}
	if s.LocalDB == "" {
		s.LocalDB = filepath.Join(dir, LocalDBFile)
	}
	if s.ListenAddr == "" {
		s.ListenAddr = DefaultListenAddr
	}
	if s.MirrorList == "" {
		s.MirrorList = DefaultMirrorList
	}
	if s.LogLevel == "" {
		s.LogLevel = DefaultLogLevel
	}
	if s.LogFormat == "" {
		s.LogFormat = DefaultLogFormat
	}
}

// Validate checks that the selected backend has what it needs.
// Ethereum settings are only required when that backend is selected.
func (s *Settings) Validate() error {
	switch s.Backend {
	case BackendLocal:
		return nil
	case BackendEthereum:
		if s.RPCURL == "" {
			return fmt.Errorf("rpc_url is required for the %s backend", BackendEthereum)
		}
		if s.ContractAddress == "" {
			return fmt.Errorf("contract_address is required for the %s backend", BackendEthereum)
		}
		return nil
	default:
		return fmt.Errorf("unknown backend: %s", s.Backend)
	}
}

// ConfigPath returns the path to config.toml.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.Dir, ConfigFile)
}

// OAuthClientPath returns the path to the OAuth client credentials file.
func (c *Config) OAuthClientPath() string {
	return filepath.Join(c.Dir, OAuthClientFile)
}

// TokenPath returns the path to the stored OAuth token file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasOAuthClient checks if the OAuth client credentials file exists.
func (c *Config) HasOAuthClient() bool {
	_, err := os.Stat(c.OAuthClientPath())
	return err == nil
}

// HasToken checks if the token file exists.
func (c *Config) HasToken() bool {
	_, err := os.Stat(c.TokenPath())
	return err == nil
}

// RemoveToken deletes the token file.
func (c *Config) RemoveToken() error {
	return os.Remove(c.TokenPath())
}
