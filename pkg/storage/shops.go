package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jwebster45206/haggle/pkg/shop"
)

// ShopFiles loads shop setups from <dataDir>/shops.
type ShopFiles struct {
	dir    string
	logger *slog.Logger
}

func NewShopFiles(dataDir string, logger *slog.Logger) ShopFiles {
	if dataDir == "" {
		dataDir = "./data"
	}
	return ShopFiles{dir: filepath.Join(dataDir, "shops"), logger: logger}
}

// ListShops maps shop names to their filenames. Unreadable files are skipped.
func (f ShopFiles) ListShops(ctx context.Context) (map[string]string, error) {
	shops := make(map[string]string)

	entries, err := os.ReadDir(f.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return shops, nil
		}
		return nil, fmt.Errorf("failed to list shops: %w", err)
	}

	for _, e := range entries {
		if e.IsDir() || !isYAML(e.Name()) {
			continue
		}
		s, err := shop.LoadFile(filepath.Join(f.dir, e.Name()), false)
		if err != nil {
			f.logger.Warn("Skipping unreadable shop file", "file", e.Name(), "error", err)
			continue
		}
		shops[s.Name] = e.Name()
	}
	return shops, nil
}

// GetShop loads and validates a shop by filename.
func (f ShopFiles) GetShop(ctx context.Context, filename string) (*shop.Shop, error) {
	if filename == "" || filepath.Base(filename) != filename || !isYAML(filename) {
		return nil, fmt.Errorf("%w: invalid filename %q", ErrShopNotFound, filename)
	}

	path := filepath.Join(f.dir, filename)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrShopNotFound, filename)
		}
		return nil, fmt.Errorf("failed to stat shop file: %w", err)
	}

	s, err := shop.LoadFile(path, false)
	if err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func isYAML(name string) bool {
	ext := filepath.Ext(name)
	return ext == ".yaml" || ext == ".yml"
}
