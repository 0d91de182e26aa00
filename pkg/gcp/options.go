package gcp

import (
	"github.com/angelmondragon/tienda-backend/pkg/config"
	"google.golang.org/api/option"
)

// ClientOptions picks credentials the same way for every Google API client:
// inline JSON, then a credentials file, then application default credentials.
func ClientOptions(cfg config.GCPConfig, extra ...option.ClientOption) []option.ClientOption {
	opts := make([]option.ClientOption, 0, len(extra)+1)
	switch {
	case cfg.CredentialsJSON != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	case cfg.ApplicationCredentials != "":
		opts = append(opts, option.WithCredentialsFile(cfg.ApplicationCredentials))
	}
	return append(opts, extra...)
}
