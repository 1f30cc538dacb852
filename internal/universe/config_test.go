package universe

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeUniverse(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "universe.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeUniverse(t, `
assets:
  - symbol: SPX
    class: equity
  - symbol: GOLD
    class: commodity
    cot_market: GOLD
  - symbol: AUDUSD
    class: fx
    cot_market: AUD
`)

	u, err := Load(path)
	require.NoError(t, err)
	require.Len(t, u.Assets, 3)

	assert.Equal(t, "SPX", u.Assets[0].Symbol)
	assert.Equal(t, ClassEquity, u.Assets[0].Class)
	assert.Equal(t, "AUD", u.Assets[2].COTMarket)
}

func TestLoad_UnknownFieldFails(t *testing.T) {
	path := writeUniverse(t, `
assets:
  - symbol: SPX
    class: equity
    cot_markett: TYPO
`)

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadOrDefault_FallsBackToBuiltIn(t *testing.T) {
	u, err := LoadOrDefault(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, Default(), u)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		assets  []Asset
		wantErr string
	}{
		{
			name:    "empty universe",
			assets:  nil,
			wantErr: "no assets",
		},
		{
			name:    "missing symbol",
			assets:  []Asset{{Class: ClassEquity}},
			wantErr: "symbol is required",
		},
		{
			name: "duplicate symbol",
			assets: []Asset{
				{Symbol: "SPX", Class: ClassEquity},
				{Symbol: "SPX", Class: ClassEquity},
			},
			wantErr: "duplicate symbol",
		},
		{
			name:    "commodity without cot market",
			assets:  []Asset{{Symbol: "GOLD", Class: ClassCommodity}},
			wantErr: "cot_market is required",
		},
		{
			name:    "fx without cot market",
			assets:  []Asset{{Symbol: "AUDUSD", Class: ClassFX}},
			wantErr: "cot_market is required",
		},
		{
			name:    "unknown class",
			assets:  []Asset{{Symbol: "BTC", Class: "crypto"}},
			wantErr: "unknown class",
		},
		{
			name: "valid universe",
			assets: []Asset{
				{Symbol: "SPX", Class: ClassEquity},
				{Symbol: "GOLD", Class: ClassCommodity, COTMarket: "GOLD"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := (&Universe{Assets: tt.assets}).Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestByClass(t *testing.T) {
	u := Default()

	equities := u.ByClass(ClassEquity)
	require.Len(t, equities, 1)
	assert.Equal(t, "SPX", equities[0].Symbol)

	assert.Empty(t, (&Universe{}).ByClass(ClassFX))
}
