// internal/models/server.go

package models

import (
	"errors"
	"fmt"
	"strings"

	"ixexplorer/internal/crypto"
)

const (
	DefaultSocketPort = 4555
	ShellPort         = 8022
	DefaultUser       = "ixexplorer"
)

// Server is a stored Tcl server profile.
type Server struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Host        string `json:"host"`
	Port        int    `json:"port"`
	User        string `json:"user"`
	RSAKey      string `json:"rsa_key,omitempty"`
	Passphrase  string `json:"passphrase,omitempty"` // sealed with crypto.Cipher
	HalScript   string `json:"hal_script,omitempty"`
	Prompt      string `json:"prompt,omitempty"`
	KnownHosts  bool   `json:"known_hosts"`
	KeepAlive   bool   `json:"keep_alive"`
}

type Config struct {
	Servers []Server `json:"servers"`
}

// UsesShell reports whether the profile selects the SSH shell transport.
func (s *Server) UsesShell() bool {
	return s.Port == ShellPort
}

// Validate checks the profile before it is stored or used.
func (s *Server) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return errors.New("name cannot be empty")
	}
	if strings.TrimSpace(s.Host) == "" {
		return errors.New("host cannot be empty")
	}
	if s.Port <= 0 || s.Port > 65535 {
		return fmt.Errorf("invalid port %d", s.Port)
	}
	if s.UsesShell() && s.RSAKey == "" {
		return fmt.Errorf("port %d needs an RSA key", ShellPort)
	}
	return nil
}

// SetPassphrase seals the RSA key passphrase. An empty passphrase clears it.
func (s *Server) SetPassphrase(plain string, cipher *crypto.Cipher) error {
	if plain == "" {
		s.Passphrase = ""
		return nil
	}
	sealed, err := cipher.Encrypt(plain)
	if err != nil {
		return err
	}
	s.Passphrase = sealed
	return nil
}

// GetPassphrase returns the opened passphrase, nil when none is stored.
func (s *Server) GetPassphrase(cipher *crypto.Cipher) ([]byte, error) {
	if s.Passphrase == "" {
		return nil, nil
	}
	plain, err := cipher.Decrypt(s.Passphrase)
	if err != nil {
		return nil, err
	}
	return []byte(plain), nil
}
