package policy

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

//go:embed profiles/default-secure.yaml
var defaultProfile []byte

// DefaultProfile returns the raw bytes of the built-in default-secure policy.
func DefaultProfile() []byte {
	out := make([]byte, len(defaultProfile))
	copy(out, defaultProfile)
	return out
}

// Default returns the built-in default-secure policy.
func Default() (Spec, error) {
	spec, err := Parse(defaultProfile)
	if err != nil {
		return Spec{}, fmt.Errorf("default profile: %w", err)
	}
	return spec, nil
}

// LoadFile reads and validates a policy document from path.
func LoadFile(path string) (Spec, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Spec{}, &LoadError{Msg: "policy file not found: " + path, Err: err}
		}
		return Spec{}, &LoadError{Msg: "read " + path, Err: err}
	}
	spec, err := Parse(b)
	if err != nil {
		return Spec{}, fmt.Errorf("%s: %w", path, err)
	}
	return spec, nil
}

// Load returns the policy at path, or the default profile when path is empty.
func Load(path string) (Spec, error) {
	if path == "" {
		return Default()
	}
	return LoadFile(path)
}
