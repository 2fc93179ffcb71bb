package pdf

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PasswordCredentials contains the passwords for a PDF file.
type PasswordCredentials struct {
	UserPassword  string `json:"user_password,omitempty" yaml:"user_password,omitempty"`
	OwnerPassword string `json:"owner_password,omitempty" yaml:"owner_password,omitempty"`
}

// Empty reports whether no password is set.
func (c *PasswordCredentials) Empty() bool {
	return c == nil || (c.UserPassword == "" && c.OwnerPassword == "")
}

// Decrypter removes encryption from documents using supplied credentials only.
type Decrypter struct {
	credentials *PasswordCredentials
}

// NewDecrypter creates a decrypter. creds may be nil.
func NewDecrypter(creds *PasswordCredentials) *Decrypter {
	return &Decrypter{credentials: creds}
}

// configuration returns a pdfcpu configuration carrying the credentials.
func (d *Decrypter) configuration() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	if !d.credentials.Empty() {
		conf.UserPW = d.credentials.UserPassword
		conf.OwnerPW = d.credentials.OwnerPassword
	}
	return conf
}

// IsEncrypted checks whether a PDF file can only be read with credentials.
func (d *Decrypter) IsEncrypted(filename string) (bool, error) {
	_, err := api.PageCountFile(filename)
	if err == nil {
		return false, nil
	}
	if IsPasswordError(err) {
		return true, nil
	}
	return false, fmt.Errorf("failed to check PDF encryption status: %w", err)
}

// Prepare returns a path to a readable copy of filename together with a
// cleanup function. Unencrypted files are returned as is. Encrypted files are
// decrypted into a temporary file when credentials were supplied; without
// credentials ErrEncrypted is returned.
func (d *Decrypter) Prepare(filename string) (string, func(), error) {
	noop := func() {}

	encrypted, err := d.IsEncrypted(filename)
	if err != nil {
		return "", noop, err
	}
	if !encrypted {
		return filename, noop, nil
	}
	if d.credentials.Empty() {
		return "", noop, fmt.Errorf("%w: supply a user or owner password", ErrEncrypted)
	}

	tempFile, err := os.CreateTemp("", "pocrop-decrypted-*.pdf")
	if err != nil {
		return "", noop, fmt.Errorf("failed to create temporary file: %w", err)
	}
	_ = tempFile.Close()
	cleanup := func() {
		if err := os.Remove(tempFile.Name()); err != nil && !os.IsNotExist(err) {
			slog.Warn("Failed to remove decrypted copy", "path", tempFile.Name(), "error", err)
		}
	}

	if err := api.DecryptFile(filename, tempFile.Name(), d.configuration()); err != nil {
		cleanup()
		return "", noop, fmt.Errorf("%w: invalid credentials: %w", ErrEncrypted, err)
	}
	slog.Debug("Decrypted document", "document", filename)
	return tempFile.Name(), cleanup, nil
}

// IsPasswordError checks if an error is related to password/encryption issues.
func IsPasswordError(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())
	passwordKeywords := []string{
		"password",
		"encrypted",
		"decrypt",
		"authentication",
		"unauthorized",
		"invalid credentials",
	}

	for _, keyword := range passwordKeywords {
		if strings.Contains(errStr, keyword) {
			return true
		}
	}

	return false
}
