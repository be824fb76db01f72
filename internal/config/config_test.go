package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		config      *Config
		wantErr     bool
		errContains string
	}{
		{
			name:    "defaults are valid",
			config:  Default(),
			wantErr: false,
		},
		{
			name: "invalid logging level",
			config: func() *Config {
				c := Default()
				c.Logging.Level = "verbose"
				return c
			}(),
			wantErr:     true,
			errContains: "logging.level",
		},
		{
			name: "zero cache capacity",
			config: func() *Config {
				c := Default()
				c.Cache.ItemCapacity = 0
				return c
			}(),
			wantErr:     true,
			errContains: "item_capacity",
		},
		{
			name: "empty output base dir",
			config: func() *Config {
				c := Default()
				c.Output.BaseDir = ""
				return c
			}(),
			wantErr:     true,
			errContains: "base_dir",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				if tt.errContains != "" {
					assert.Contains(t, err.Error(), tt.errContains)
				}
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	assert.NoError(t, err)
	assert.Equal(t, Default().Cache.ItemCapacity, cfg.Cache.ItemCapacity)
}
