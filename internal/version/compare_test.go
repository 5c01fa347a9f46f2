package version

import (
	"testing"

	"github.com/rxtech-lab/argo-strategy-builder/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckVersionCompatibility(t *testing.T) {
	tests := []struct {
		name            string
		builderVersion  string
		documentVersion string
		expectError     bool
		errorContains   string
	}{
		{
			name:            "exact match",
			builderVersion:  "0.4.0",
			documentVersion: "0.4.0",
			expectError:     false,
		},
		{
			name:            "builder patch higher",
			builderVersion:  "0.4.2",
			documentVersion: "0.4.0",
			expectError:     false,
		},
		{
			name:            "document patch higher",
			builderVersion:  "0.4.0",
			documentVersion: "0.4.7",
			expectError:     false,
		},
		{
			name:            "builder minor higher",
			builderVersion:  "0.5.0",
			documentVersion: "0.4.0",
			expectError:     true,
			errorContains:   "minor version mismatch",
		},
		{
			name:            "builder minor lower",
			builderVersion:  "0.3.0",
			documentVersion: "0.4.0",
			expectError:     true,
			errorContains:   "minor version mismatch",
		},
		{
			name:            "major version differs",
			builderVersion:  "1.4.0",
			documentVersion: "0.4.0",
			expectError:     true,
			errorContains:   "major version mismatch",
		},
		{
			name:            "builder is main",
			builderVersion:  "main",
			documentVersion: "2.0.0",
			expectError:     false,
		},
		{
			name:            "document is main",
			builderVersion:  "0.4.0",
			documentVersion: "main",
			expectError:     false,
		},
		{
			name:            "v prefix on both",
			builderVersion:  "v0.4.0",
			documentVersion: "v0.4.1",
			expectError:     false,
		},
		{
			name:            "prerelease document",
			builderVersion:  "0.4.0",
			documentVersion: "0.4.0-beta.1",
			expectError:     false,
		},
		{
			name:            "invalid builder version",
			builderVersion:  "not-a-version",
			documentVersion: "0.4.0",
			expectError:     true,
			errorContains:   "invalid builder version",
		},
		{
			name:            "empty document version",
			builderVersion:  "0.4.0",
			documentVersion: "",
			expectError:     true,
			errorContains:   "invalid document version",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckVersionCompatibility(tt.builderVersion, tt.documentVersion)

			if tt.expectError {
				require.Error(t, err)
				assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidVersion))
				assert.Contains(t, err.Error(), tt.errorContains)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestGetVersion(t *testing.T) {
	assert.Equal(t, Version, GetVersion())
}
