package key

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/drand/pre/fs"
)

// Tomler represents any struct that can be (un)marshalled into/from toml format
type Tomler interface {
	TOML() interface{}
	FromTOML(i interface{}) error
	TOMLValue() interface{}
}

// Save writes the TOML form of t at path. Secret material should be saved
// with secure set so only the user can read the file.
func Save(path string, t Tomler, secure bool) error {
	var fd *os.File
	var err error
	if secure {
		fd, err = fs.CreateSecureFile(path)
	} else {
		fd, err = os.Create(path)
	}
	if err != nil {
		return err
	}
	defer fd.Close()
	return toml.NewEncoder(fd).Encode(t.TOML())
}

// Load decodes the TOML file at path into t.
func Load(path string, t Tomler) error {
	tomlValue := t.TOMLValue()
	if _, err := toml.DecodeFile(path, tomlValue); err != nil {
		return err
	}
	return t.FromTOML(tomlValue)
}
