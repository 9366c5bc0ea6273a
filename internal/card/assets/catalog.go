package assets

import (
	"embed"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"

	"github.com/example/ridecard/internal/card/domain"
)

//go:embed manifest.yaml *.svg
var packaged embed.FS

// ErrUnknownAsset indicates no asset is packaged under the requested key.
var ErrUnknownAsset = errors.New("unknown asset")

// Asset is one packaged card image.
type Asset struct {
	Key         string `yaml:"key"`
	File        string `yaml:"file"`
	Alt         string `yaml:"alt"`
	Width       int    `yaml:"width"`
	Height      int    `yaml:"height"`
	ContentType string `yaml:"content_type"`
	Data        []byte `yaml:"-"`
}

// DataURI returns the asset inlined as a data URI.
func (a Asset) DataURI() string {
	return "data:" + a.ContentType + ";base64," + base64.StdEncoding.EncodeToString(a.Data)
}

type manifest struct {
	Assets []Asset `yaml:"assets"`
}

// Catalog indexes packaged assets by key.
type Catalog struct {
	assets map[string]Asset
}

// Load reads the embedded manifest and asset files.
func Load() (*Catalog, error) {
	return LoadFS(packaged, "manifest.yaml")
}

// LoadFS reads a manifest and the files it references from fsys. Every ride
// category must have exactly one asset.
func LoadFS(fsys fs.FS, manifestPath string) (*Catalog, error) {
	raw, err := fs.ReadFile(fsys, manifestPath)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}

	c := &Catalog{assets: make(map[string]Asset, len(m.Assets))}
	for _, asset := range m.Assets {
		if asset.Key == "" || asset.File == "" {
			return nil, fmt.Errorf("manifest entry missing key or file: %+v", asset)
		}
		if _, dup := c.assets[asset.Key]; dup {
			return nil, fmt.Errorf("duplicate asset key %q", asset.Key)
		}
		data, err := fs.ReadFile(fsys, asset.File)
		if err != nil {
			return nil, fmt.Errorf("read asset %s: %w", asset.Key, err)
		}
		if asset.ContentType == "" {
			asset.ContentType = "image/svg+xml"
		}
		asset.Data = data
		c.assets[asset.Key] = asset
	}

	for _, category := range []domain.RideCategory{domain.CategoryBasic, domain.CategoryPremier} {
		if _, ok := c.assets[category.AssetKey()]; !ok {
			return nil, fmt.Errorf("%w: no asset for category %s", ErrUnknownAsset, category)
		}
	}
	return c, nil
}

// Lookup returns the asset stored under key.
func (c *Catalog) Lookup(key string) (Asset, error) {
	asset, ok := c.assets[key]
	if !ok {
		return Asset{}, fmt.Errorf("%w: %q", ErrUnknownAsset, key)
	}
	return asset, nil
}

// ForCategory returns the image variant for category.
func (c *Catalog) ForCategory(category domain.RideCategory) (Asset, error) {
	return c.Lookup(category.AssetKey())
}
