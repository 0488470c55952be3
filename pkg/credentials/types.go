package credentials

import "github.com/mindfoldco/mindfold/pkg/mapdoc"

// Credentials is the on-disk shape of credentials.toml. It carries the
// bearer token and the user it was issued to. The pair is provisional:
// the cloud adapter revalidates it against the server on initialization
// and discards it if the probe fails.
type Credentials struct {
	Version int              `toml:"version"`
	Token   string           `toml:"token,omitempty"`
	User    *mapdoc.CloudUser `toml:"user,omitempty"`
}

// HasSession reports whether both a token and a user are present.
func (c *Credentials) HasSession() bool {
	return c != nil && c.Token != "" && c.User != nil
}
