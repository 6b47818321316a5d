package chunking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 1500, cfg.WordLimit)
	assert.Equal(t, []string{".", "!", "?"}, cfg.EOSMarkers)
	assert.NoError(t, cfg.Validate())
}

func TestNewConfig_Options(t *testing.T) {
	markers := []string{";"}
	cfg := NewConfig(WithWordLimit(10), WithEOSMarkers(markers...))
	assert.Equal(t, 10, cfg.WordLimit)
	assert.Equal(t, []string{";"}, cfg.EOSMarkers)

	markers[0] = "changed"
	assert.Equal(t, ";", cfg.EOSMarkers[0], "markers should be copied")
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"defaults", DefaultConfig(), false},
		{"zero limit", NewConfig(WithWordLimit(0)), true},
		{"negative limit", NewConfig(WithWordLimit(-3)), true},
		{"no markers", NewConfig(WithEOSMarkers()), true},
		{"blank markers", NewConfig(WithEOSMarkers("", " ")), true},
		{"one marker", NewConfig(WithEOSMarkers("", "。")), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
