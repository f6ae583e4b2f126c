// cmd/ixtcl/root.go

package main

import (
	"fmt"
	"os"
	"time"

	"ixexplorer/internal/config"
	"ixexplorer/internal/crypto"
	"ixexplorer/internal/models"
	"ixexplorer/internal/ssh"
	"ixexplorer/internal/tcl"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	debug      bool
	host       string
	port       int
	rsaID      string
	user       string
	profile    string
	configPath string
	scriptLog  string
	timeout    time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "ixtcl",
	Short: "ixtcl talks to IxExplorer Tcl servers over the socket or SSH transport",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if debug {
			log.SetLevel(log.DebugLevel)
		} else {
			log.SetLevel(log.InfoLevel)
		}
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.SilenceUsage = true
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug mode")
	rootCmd.PersistentFlags().StringVarP(&host, "host", "H", "", "Tcl server host")
	rootCmd.PersistentFlags().IntVarP(&port, "port", "p", models.DefaultSocketPort, "Tcl server port, 8022 selects SSH")
	rootCmd.PersistentFlags().StringVarP(&rsaID, "rsa-id", "i", "", "RSA identity for the SSH transport")
	rootCmd.PersistentFlags().StringVarP(&user, "user", "u", models.DefaultUser, "IxExplorer login name")
	rootCmd.PersistentFlags().StringVarP(&profile, "profile", "P", "", "use a stored server profile")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "server profile file")
	rootCmd.PersistentFlags().StringVarP(&scriptLog, "script-log", "", "", "append every command sent to this file")
	rootCmd.PersistentFlags().DurationVarP(&timeout, "timeout", "t", tcl.DefaultTimeout, "reply timeout, e.g: 16s, 1m")
}

// target resolves the server from --profile or from the connection flags.
func target() (models.Server, *crypto.Cipher, error) {
	if profile == "" {
		if host == "" {
			return models.Server{}, nil, fmt.Errorf("either --host or --profile is required")
		}
		s := models.Server{Name: host, Host: host, Port: port, User: user, RSAKey: rsaID}
		if err := s.Validate(); err != nil {
			return s, nil, err
		}
		return s, nil, nil
	}
	m := config.NewManager(configPath)
	if err := m.Load(); err != nil {
		return models.Server{}, nil, err
	}
	s, err := m.FindServerByName(profile)
	if err != nil {
		return s, nil, err
	}
	if s.Passphrase == "" {
		return s, nil, nil
	}
	password, err := readPassword("Master password: ")
	if err != nil {
		return s, nil, err
	}
	return s, crypto.NewCipher(password), nil
}

// newClient builds a disconnected client for the resolved server.
func newClient() (*tcl.Client, func(), error) {
	s, cipher, err := target()
	if err != nil {
		return nil, nil, err
	}
	opts := []tcl.Option{
		tcl.WithTimeout(timeout),
		tcl.WithLogger(log.StandardLogger()),
		tcl.WithHalScript(s.HalScript),
		tcl.WithPrompt(s.Prompt),
	}
	if s.UsesShell() {
		var passphrase []byte
		if cipher != nil {
			if passphrase, err = s.GetPassphrase(cipher); err != nil {
				return nil, nil, fmt.Errorf("failed to open key passphrase: %w", err)
			}
		}
		opts = append(opts, tcl.WithRSAKey(s.RSAKey, passphrase))
		if s.KnownHosts {
			path, err := ssh.DefaultKnownHostsPath()
			if err != nil {
				return nil, nil, err
			}
			opts = append(opts, tcl.WithKnownHosts(path))
		}
		if s.KeepAlive {
			opts = append(opts, tcl.WithKeepAlive(30*time.Second))
		}
	}
	cleanup := func() {}
	if scriptLog != "" {
		f, err := os.OpenFile(scriptLog, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, tcl.WithScriptLog(f))
		cleanup = func() { f.Close() }
	}
	if s.User != "" {
		user = s.User
	}
	return tcl.NewClient(s.Host, s.Port, opts...), cleanup, nil
}

func readPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(b), nil
}
