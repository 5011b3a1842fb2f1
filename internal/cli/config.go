package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Config holds CLI configuration
type Config struct {
	ServerURL string
	Token     string
	TokenFile string
	Output    string
	Verbose   bool
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL: getEnvOrDefault("MORPION_SERVER", "http://localhost:8080"),
		Token:     os.Getenv("MORPION_TOKEN"),
		TokenFile: getEnvOrDefault("MORPION_TOKEN_FILE", defaultTokenFile()),
		Output:    "text",
		Verbose:   false,
	}
}

// The token file maps server URLs to session tokens, so logging in to one
// server leaves the sessions held for others untouched.
type tokenFile map[string]string

func (c *Config) readTokens() (tokenFile, error) {
	data, err := os.ReadFile(c.TokenFile)
	if errors.Is(err, fs.ErrNotExist) {
		return tokenFile{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading token file: %w", err)
	}

	tokens := tokenFile{}
	if len(strings.TrimSpace(string(data))) == 0 {
		return tokens, nil
	}
	if err := json.Unmarshal(data, &tokens); err != nil {
		return nil, fmt.Errorf("parsing token file %s: %w", c.TokenFile, err)
	}
	return tokens, nil
}

func (c *Config) writeTokens(tokens tokenFile) error {
	if len(tokens) == 0 {
		if err := os.Remove(c.TokenFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(c.TokenFile), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(tokens, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.TokenFile, data, 0o600)
}

func (c *Config) tokenKey() string {
	return strings.TrimSuffix(c.ServerURL, "/")
}

// LoadToken reads the saved token for ServerURL unless one was given
// explicitly by flag or environment
func (c *Config) LoadToken() error {
	if c.Token != "" {
		return nil
	}
	tokens, err := c.readTokens()
	if err != nil {
		return err
	}
	c.Token = tokens[c.tokenKey()]
	return nil
}

// SaveToken stores the token for ServerURL
func (c *Config) SaveToken(token string) error {
	c.Token = token
	tokens, err := c.readTokens()
	if err != nil {
		return err
	}
	tokens[c.tokenKey()] = token
	return c.writeTokens(tokens)
}

// ClearToken forgets the token for ServerURL. The file is removed once no
// server has a token left.
func (c *Config) ClearToken() error {
	c.Token = ""
	tokens, err := c.readTokens()
	if err != nil {
		return err
	}
	delete(tokens, c.tokenKey())
	return c.writeTokens(tokens)
}

func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".morpion", "tokens.json")
	}
	return filepath.Join(home, ".morpion", "tokens.json")
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
