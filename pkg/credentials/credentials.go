// Package credentials manages reading and writing credentials.toml in the
// .mindfold/ directory. The file holds the cloud session token and user;
// its absence is the normal logged-out state, not an error.
package credentials

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/mindfoldco/mindfold/pkg/dotdir"
	"github.com/mindfoldco/mindfold/pkg/mapdoc"
)

const (
	credentialsFile = "credentials.toml"

	currentVersion = 0
)

// Manager manages reading and writing credentials.toml in the .mindfold/ directory.
type Manager struct {
	ddm        *dotdir.Manager
	targetPath string
}

// NewManager creates a new credentials Manager. If override is non-empty it
// is used as the .mindfold/ directory; otherwise the standard dotdir
// resolution applies.
func NewManager(override string) (*Manager, error) {
	mgr := &Manager{}
	mgr.ddm = dotdir.NewManager()

	target, err := mgr.ddm.Target(override)
	if err != nil {
		return nil, err
	}

	mgr.targetPath = filepath.Join(target, credentialsFile)

	return mgr, nil
}

// Load reads credentials.toml from the target directory.
// Returns empty Credentials if the file does not exist.
func (m *Manager) Load() (*Credentials, error) {
	data, err := os.ReadFile(m.targetPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Credentials{Version: currentVersion}, nil
		}
		return nil, fmt.Errorf("reading credentials: %w", err)
	}

	creds := &Credentials{}
	if err := toml.Unmarshal(data, creds); err != nil {
		return nil, fmt.Errorf("parsing credentials: %w", err)
	}

	return creds, nil
}

// Save writes credentials to credentials.toml with 0600 permissions.
func (m *Manager) Save(creds *Credentials) error {
	if creds == nil {
		return errors.New("cannot save nil credentials")
	}

	var buf bytes.Buffer
	encoder := toml.NewEncoder(&buf)
	if err := encoder.Encode(creds); err != nil {
		return fmt.Errorf("encoding credentials: %w", err)
	}

	if err := os.WriteFile(m.targetPath, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing credentials: %w", err)
	}

	return nil
}

// SetSession stores the token and user pair after a successful register
// or login.
func (m *Manager) SetSession(token string, user *mapdoc.CloudUser) error {
	return m.Save(&Credentials{
		Version: currentVersion,
		Token:   token,
		User:    user,
	})
}

// Session returns the stored token and user. Both are zero when no
// session is persisted.
func (m *Manager) Session() (string, *mapdoc.CloudUser, error) {
	creds, err := m.Load()
	if err != nil {
		return "", nil, err
	}

	return creds.Token, creds.User, nil
}

// Clear removes the persisted session. Clearing an absent file is a no-op.
func (m *Manager) Clear() error {
	if err := os.Remove(m.targetPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing credentials: %w", err)
	}

	return nil
}

// GetTarget returns the resolved path to the credentials file.
func (m *Manager) GetTarget() string {
	return m.targetPath
}
