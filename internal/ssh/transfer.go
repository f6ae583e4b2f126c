// internal/ssh/transfer.go

package ssh

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"

	apperr "ixexplorer/internal/error"

	scp "github.com/bramvdbogaerde/go-scp"
	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

// Transfer moves configuration files between this host and the Tcl server
// host over an existing SSH connection.
type Transfer struct {
	client *ssh.Client
}

// NewTransfer returns a Transfer using client.
func NewTransfer(client *ssh.Client) *Transfer {
	return &Transfer{client: client}
}

// Upload copies localPath to remotePath over SFTP, creating the remote
// directory when needed. It returns the number of bytes written.
func (t *Transfer) Upload(localPath, remotePath string) (int64, error) {
	if t.client == nil {
		return 0, apperr.Newf(apperr.ConnectionError, "not connected")
	}

	srcFile, err := os.Open(localPath)
	if err != nil {
		return 0, apperr.New(apperr.FileError, "failed to open local file", err)
	}
	defer srcFile.Close()

	sftpClient, err := sftp.NewClient(t.client)
	if err != nil {
		return 0, apperr.New(apperr.ConnectionError, "failed to create SFTP client", err)
	}
	defer sftpClient.Close()

	if err := sftpClient.MkdirAll(path.Dir(remotePath)); err != nil {
		return 0, apperr.New(apperr.FileError, "failed to create remote directory", err)
	}
	dstFile, err := sftpClient.Create(remotePath)
	if err != nil {
		return 0, apperr.New(apperr.FileError, "failed to create remote file", err)
	}
	defer dstFile.Close()

	n, err := io.Copy(dstFile, srcFile)
	if err != nil {
		return n, apperr.New(apperr.FileError, fmt.Sprintf("upload of %s interrupted after %d bytes", localPath, n), err)
	}
	return n, nil
}

// Download copies remotePath to localPath over SCP.
func (t *Transfer) Download(ctx context.Context, remotePath, localPath string) error {
	if t.client == nil {
		return apperr.Newf(apperr.ConnectionError, "not connected")
	}

	scpClient, err := scp.NewClientBySSH(t.client)
	if err != nil {
		return apperr.New(apperr.ConnectionError, "failed to create SCP client", err)
	}
	defer scpClient.Close()

	dstFile, err := os.Create(localPath)
	if err != nil {
		return apperr.New(apperr.FileError, "failed to create local file", err)
	}
	defer dstFile.Close()

	if err := scpClient.CopyFromRemote(ctx, dstFile, remotePath); err != nil {
		return apperr.New(apperr.FileError, "failed to download "+remotePath, err)
	}
	return nil
}
