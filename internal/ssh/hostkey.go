// internal/ssh/hostkey.go

package ssh

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"ixexplorer/internal/config"
	apperr "ixexplorer/internal/error"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

const (
	knownHostsFileName = "known_hosts"
)

// DefaultKnownHostsPath returns the application's own known_hosts file,
// next to the server profile store.
func DefaultKnownHostsPath() (string, error) {
	configPath, err := config.GetDefaultConfigPath()
	if err != nil {
		return "", fmt.Errorf("could not get config directory: %w", err)
	}
	return filepath.Join(filepath.Dir(configPath), "ssh", knownHostsFileName), nil
}

// keyAuth loads the RSA identity used to log into the Tcl shell account.
func keyAuth(keyPath string, passphrase []byte) (ssh.AuthMethod, error) {
	if keyPath == "" {
		return nil, apperr.Newf(apperr.ConfigError, "an RSA key is required for the shell transport")
	}
	key, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, apperr.New(apperr.FileError, "failed to read SSH key "+keyPath, err)
	}
	var signer ssh.Signer
	if len(passphrase) > 0 {
		signer, err = ssh.ParsePrivateKeyWithPassphrase(key, passphrase)
	} else {
		signer, err = ssh.ParsePrivateKey(key)
	}
	if err != nil {
		return nil, apperr.New(apperr.ConfigError, "failed to parse SSH key "+keyPath, err)
	}
	return ssh.PublicKeys(signer), nil
}

// HostKeyCallback verifies host keys against knownHostsPath. When no path is
// given, or the file does not exist yet, any host key is accepted.
func HostKeyCallback(knownHostsPath string) (ssh.HostKeyCallback, error) {
	if knownHostsPath == "" {
		return ssh.InsecureIgnoreHostKey(), nil
	}
	if _, err := os.Stat(knownHostsPath); os.IsNotExist(err) {
		return ssh.InsecureIgnoreHostKey(), nil
	}
	callback, err := knownhosts.New(knownHostsPath)
	if err != nil {
		return nil, apperr.New(apperr.ConfigError, "failed to load "+knownHostsPath, err)
	}
	return callback, nil
}

// TrustHost fetches the host key of host:port and records it in
// knownHostsPath, replacing any previous entry for that address. It returns
// the key's SHA256 fingerprint.
func TrustHost(host string, port int, knownHostsPath string) (string, error) {
	hostKeyChan := make(chan ssh.PublicKey, 1)
	clientConfig := &ssh.ClientConfig{
		User: DefaultUser,
		Auth: []ssh.AuthMethod{},
		HostKeyCallback: func(hostname string, remote net.Addr, key ssh.PublicKey) error {
			select {
			case hostKeyChan <- key:
			default:
			}
			return nil
		},
		Timeout: 10 * time.Second,
	}

	addr := net.JoinHostPort(host, strconv.Itoa(port))
	// Authentication is expected to fail; the key is captured during the handshake.
	if client, err := ssh.Dial("tcp", addr, clientConfig); err == nil {
		client.Close()
	}

	var hostKey ssh.PublicKey
	select {
	case hostKey = <-hostKeyChan:
	default:
		return "", apperr.Newf(apperr.ConnectionError, "could not retrieve host key from %s", addr)
	}

	hostFormat := knownhosts.Normalize(addr)
	newKeyLine := knownhosts.Line([]string{hostFormat}, hostKey)

	var keep []string
	if content, err := os.ReadFile(knownHostsPath); err == nil {
		scanner := bufio.NewScanner(strings.NewReader(string(content)))
		for scanner.Scan() {
			line := scanner.Text()
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			if fields := strings.Fields(line); len(fields) > 0 && fields[0] == hostFormat {
				continue
			}
			keep = append(keep, line)
		}
	}
	keep = append(keep, newKeyLine)

	if err := os.MkdirAll(filepath.Dir(knownHostsPath), 0700); err != nil {
		return "", apperr.New(apperr.FileError, "failed to create "+filepath.Dir(knownHostsPath), err)
	}
	if err := os.WriteFile(knownHostsPath, []byte(strings.Join(keep, "\n")+"\n"), 0600); err != nil {
		return "", apperr.New(apperr.FileError, "failed to write "+knownHostsPath, err)
	}
	return ssh.FingerprintSHA256(hostKey), nil
}
