package backend

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptofolio/internal/config"
)

func TestFromAppConfig(t *testing.T) {
	_, err := FromAppConfig(nil)
	require.Error(t, err)

	_, err = FromAppConfig(&config.Config{MirrorBackend: "ftp"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid mirror backend")

	cfg, err := FromAppConfig(&config.Config{
		MirrorBackend:       "sheets",
		GoogleSpreadsheetID: "abc",
		GoogleSheetName:     "History",
	})
	require.NoError(t, err)
	assert.Equal(t, SheetsMirror, cfg.Type)
	assert.Equal(t, "abc", cfg.GoogleSpreadsheetID)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"memory", Config{Type: MemoryMirror}, ""},
		{"unknown", Config{Type: "ftp"}, "invalid mirror backend"},
		{"sheets without id", Config{Type: SheetsMirror, GoogleSheetName: "H"}, "Spreadsheet ID"},
		{"sheets without sheet", Config{Type: SheetsMirror, GoogleSpreadsheetID: "x"}, "Sheet name"},
		{"sheets", Config{Type: SheetsMirror, GoogleSpreadsheetID: "x", GoogleSheetName: "H"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestFactory_Memory(t *testing.T) {
	res, err := NewFactory(nil).CreateMirror(context.Background(), Config{Type: MemoryMirror})
	require.NoError(t, err)
	assert.Equal(t, MemoryMirror, res.Kind)
	require.NotNil(t, res.Mirror)
	assert.Nil(t, res.Cleanup)
}

func TestFactory_SheetsNeedsCredentials(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	_, err := NewFactory(nil).CreateMirror(context.Background(), Config{
		Type:                SheetsMirror,
		GoogleSpreadsheetID: "x",
		GoogleSheetName:     "History",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing service account credentials")
}

func TestMirrorTypeStrings(t *testing.T) {
	assert.Equal(t, []string{"sheets", "memory"}, MirrorTypeStrings())
}
