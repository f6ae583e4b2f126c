// cmd/ixtcl/profile.go

package main

import (
	"fmt"
	"text/tabwriter"

	"ixexplorer/internal/config"
	"ixexplorer/internal/crypto"
	"ixexplorer/internal/models"
	"ixexplorer/internal/ssh"

	"github.com/spf13/cobra"
)

var (
	newProfile    models.Server
	askPassphrase bool
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "manage stored server profiles",
}

var profileAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "add or replace a server profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := loadProfiles()
		if err != nil {
			return err
		}
		s := newProfile
		s.Name = args[0]
		s.Host, s.Port, s.User, s.RSAKey = host, port, user, rsaID
		if askPassphrase {
			passphrase, err := readPassword("Key passphrase: ")
			if err != nil {
				return err
			}
			master, err := readPassword("Master password: ")
			if err != nil {
				return err
			}
			if err := s.SetPassphrase(passphrase, crypto.NewCipher(master)); err != nil {
				return err
			}
		}
		if err := m.AddServer(s); err != nil {
			return err
		}
		if err := m.Save(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "saved %s to %s\n", s.Name, m.Path())
		return nil
	},
}

var profileListCmd = &cobra.Command{
	Use:     "list",
	Short:   "list server profiles",
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := loadProfiles()
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tHOST\tPORT\tUSER\tDESCRIPTION")
		for _, s := range m.GetServers() {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", s.Name, s.Host, s.Port, s.User, s.Description)
		}
		return w.Flush()
	},
}

var profileDeleteCmd = &cobra.Command{
	Use:     "delete <name>",
	Short:   "delete a server profile",
	Aliases: []string{"rm"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := loadProfiles()
		if err != nil {
			return err
		}
		if err := m.DeleteServer(args[0]); err != nil {
			return err
		}
		return m.Save()
	},
}

var profileTrustCmd = &cobra.Command{
	Use:   "trust <name>",
	Short: "record the SSH host key of a profile's server",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := loadProfiles()
		if err != nil {
			return err
		}
		s, err := m.FindServerByName(args[0])
		if err != nil {
			return err
		}
		if !s.UsesShell() {
			return fmt.Errorf("%s does not use the SSH transport", s.Name)
		}
		path, err := ssh.DefaultKnownHostsPath()
		if err != nil {
			return err
		}
		fingerprint, err := ssh.TrustHost(s.Host, s.Port, path)
		if err != nil {
			return err
		}
		s.KnownHosts = true
		if err := m.AddServer(s); err != nil {
			return err
		}
		if err := m.Save(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "trusted %s %s\n", s.Host, fingerprint)
		return nil
	},
}

func loadProfiles() (*config.Manager, error) {
	m := config.NewManager(configPath)
	if err := m.Load(); err != nil {
		return nil, err
	}
	return m, nil
}

func init() {
	f := profileAddCmd.Flags()
	f.StringVarP(&newProfile.Description, "description", "D", "", "free text description")
	f.StringVarP(&newProfile.HalScript, "hal-script", "", "", "IxTclHal bootstrap script sourced over SSH")
	f.StringVarP(&newProfile.Prompt, "prompt", "", "", "shell prompt that ends a reply")
	f.BoolVarP(&newProfile.KeepAlive, "keep-alive", "k", false, "send SSH keepalives")
	f.BoolVarP(&askPassphrase, "passphrase", "", false, "prompt for the RSA key passphrase and seal it")
	profileCmd.AddCommand(profileAddCmd, profileListCmd, profileDeleteCmd, profileTrustCmd)
	rootCmd.AddCommand(profileCmd)
}
