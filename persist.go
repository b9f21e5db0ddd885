package wavelet

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/AlexWan0/go-wavelet/store"
)

// Save serializes w and stores it under name.
func Save(ctx context.Context, st store.Store, name string, w Wavelet) error {
	data, err := w.MarshalBinary()
	if err != nil {
		return err
	}
	if err := st.Put(ctx, name, data); err != nil {
		return fmt.Errorf("store %s: %w", name, err)
	}
	return nil
}

// Load reads the image stored under name and decodes it.
func Load(ctx context.Context, st store.Store, name string, opts ...Option) (Wavelet, error) {
	data, err := st.Get(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	return Unmarshal(data, opts...)
}

// WriteFile serializes w to path, replacing any existing file.
func WriteFile(path string, w Wavelet) error {
	data, err := w.MarshalBinary()
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
