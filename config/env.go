package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// EnvPrefix is the prefix of the environment variables read by the CLI.
const EnvPrefix = "CACHESIM_"

// LoadEnv loads .env style files into the process environment. Variables
// that are already set win. Missing files are ignored; with no argument,
// ".env" in the working directory is tried.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}

	for _, f := range files {
		err := godotenv.Load(f)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}

	return nil
}

// EnvString returns the value of CACHESIM_<name>, or def if it is not set.
func EnvString(name, def string) string {
	v, ok := os.LookupEnv(EnvPrefix + name)
	if !ok {
		return def
	}

	return v
}

// EnvBool returns the boolean value of CACHESIM_<name>, or def if it is not
// set or cannot be parsed.
func EnvBool(name string, def bool) bool {
	v, err := strconv.ParseBool(EnvString(name, ""))
	if err != nil {
		return def
	}

	return v
}

// EnvInt returns the integer value of CACHESIM_<name>, or def if it is not
// set or cannot be parsed.
func EnvInt(name string, def int) int {
	v, err := strconv.Atoi(EnvString(name, ""))
	if err != nil {
		return def
	}

	return v
}
