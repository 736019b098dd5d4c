// Package cms implements content.Fetcher backends: a GROQ HTTP client for the
// hosted content lake, an in-memory store that evaluates the query catalog
// over loaded documents, and a caching decorator.
package cms

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Defaults for Config.
const (
	DefaultAPIVersion = "2024-01-01"
	DefaultTimeout    = 10 * time.Second
)

var (
	reProjectID  = regexp.MustCompile(`^[a-z0-9-]+$`)
	reDataset    = regexp.MustCompile(`^[a-z0-9_-]{1,64}$`)
	reAPIVersion = regexp.MustCompile(`^(1|X|\d{4}-\d{2}-\d{2})$`)
)

// Config identifies a project dataset on the content lake.
type Config struct {
	ProjectID  string
	Dataset    string
	APIVersion string
	Token      string
	UseCDN     bool
	Timeout    time.Duration

	// BaseURL replaces the derived https://<project>.api.sanity.io host.
	BaseURL string
}

func (c *Config) setDefaults() {
	c.APIVersion = strings.TrimPrefix(strings.TrimSpace(c.APIVersion), "v")
	if c.APIVersion == "" {
		c.APIVersion = DefaultAPIVersion
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
}

// Validate reports a missing or malformed project ID or dataset.
func (c Config) Validate() error {
	c.setDefaults()
	err := validation.ValidateStruct(&c,
		validation.Field(&c.ProjectID, validation.Required, validation.Match(reProjectID)),
		validation.Field(&c.Dataset, validation.Required, validation.Match(reDataset)),
		validation.Field(&c.APIVersion, validation.Match(reAPIVersion)),
	)
	if err != nil {
		return fmt.Errorf("cms config: %w", err)
	}
	return nil
}

// Endpoint returns the query endpoint for the configured dataset.
func (c Config) Endpoint() string {
	c.setDefaults()
	base := strings.TrimRight(c.BaseURL, "/")
	if base == "" {
		host := "api.sanity.io"
		if c.UseCDN {
			host = "apicdn.sanity.io"
		}
		base = "https://" + c.ProjectID + "." + host
	}
	return base + "/v" + c.APIVersion + "/data/query/" + c.Dataset
}
