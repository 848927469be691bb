package inbox

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed seed.toml
var defaultSeed string

type seedFile struct {
	Threads []Thread `toml:"threads"`
}

// DefaultSeed returns the built-in demo conversations.
func DefaultSeed() ([]Thread, error) {
	return parseSeed(defaultSeed)
}

// LoadSeed reads a seed file in the same TOML layout as the built-in one.
func LoadSeed(path string) ([]Thread, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseSeed(string(data))
}

func parseSeed(data string) ([]Thread, error) {
	var f seedFile
	if _, err := toml.Decode(data, &f); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	if err := ValidateThreads(f.Threads); err != nil {
		return nil, fmt.Errorf("invalid seed: %w", err)
	}
	return f.Threads, nil
}
