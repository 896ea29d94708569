package sqlserver

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// Params holds SQL Server-specific configuration.
// Parsed from core.AdapterConfig.Params using mapstructure.
type Params struct {
	// Instance is a named instance (host\instance); when set the port is ignored
	Instance string `mapstructure:"instance"`

	// AppName is reported to the server as the application name
	AppName string `mapstructure:"app_name"`

	// Encrypt: "true", "false", "disable" or "strict"
	Encrypt string `mapstructure:"encrypt"`

	// TrustServerCertificate skips certificate validation
	TrustServerCertificate bool `mapstructure:"trust_server_certificate"`

	// ConnectionTimeout in seconds (0 = driver default)
	ConnectionTimeout int `mapstructure:"connection_timeout"`
}

// ParseParams decodes adapter params into Params.
func ParseParams(raw map[string]any) (*Params, error) {
	p := &Params{}
	if len(raw) == 0 {
		return p, nil
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           p,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("invalid sqlserver params: %w", err)
	}
	return p, nil
}
