package universe

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Class tags which asset-class extractor and scorer handle an asset
type Class string

const (
	ClassEquity    Class = "equity"
	ClassCommodity Class = "commodity"
	ClassFX        Class = "fx"
)

// Asset is one entry of the configured universe
type Asset struct {
	// Symbol keys every feature and score row (underlying or pair)
	Symbol string `yaml:"symbol"`
	Class  Class  `yaml:"class"`

	// COTMarket names the market in the weekly positioning report.
	// Required for commodity and fx assets; it often differs from the
	// symbol (COT reports "AUD", not "AUDUSD").
	COTMarket string `yaml:"cot_market,omitempty"`
}

// Universe is the set of assets the pipeline computes each date
type Universe struct {
	Assets []Asset `yaml:"assets"`
}

// Load reads the universe YAML file. Unknown fields fail immediately so a
// typo cannot silently drop an asset.
func Load(path string) (*Universe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read universe file: %w", err)
	}

	var u Universe
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&u); err != nil {
		return nil, fmt.Errorf("parse universe file: %w", err)
	}

	if err := u.Validate(); err != nil {
		return nil, fmt.Errorf("validate universe: %w", err)
	}

	return &u, nil
}

// LoadOrDefault loads the file when it exists, otherwise the built-in
// default universe.
func LoadOrDefault(path string) (*Universe, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}

// Default returns the built-in universe
func Default() *Universe {
	return &Universe{
		Assets: []Asset{
			{Symbol: "SPX", Class: ClassEquity},
			{Symbol: "GOLD", Class: ClassCommodity, COTMarket: "GOLD"},
			{Symbol: "AUDUSD", Class: ClassFX, COTMarket: "AUD"},
		},
	}
}

// Validate checks the universe for structural errors
func (u *Universe) Validate() error {
	if len(u.Assets) == 0 {
		return fmt.Errorf("universe has no assets")
	}

	seen := make(map[string]bool, len(u.Assets))
	for i, a := range u.Assets {
		if a.Symbol == "" {
			return fmt.Errorf("asset %d: symbol is required", i)
		}
		if seen[a.Symbol] {
			return fmt.Errorf("asset %s: duplicate symbol", a.Symbol)
		}
		seen[a.Symbol] = true

		switch a.Class {
		case ClassEquity:
		case ClassCommodity, ClassFX:
			if a.COTMarket == "" {
				return fmt.Errorf("asset %s: cot_market is required for class %s", a.Symbol, a.Class)
			}
		default:
			return fmt.Errorf("asset %s: unknown class %q", a.Symbol, a.Class)
		}
	}

	return nil
}

// ByClass returns the assets of one class in configured order
func (u *Universe) ByClass(class Class) []Asset {
	var out []Asset
	for _, a := range u.Assets {
		if a.Class == class {
			out = append(out, a)
		}
	}
	return out
}
