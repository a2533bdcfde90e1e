// Package entropy provides the randomness sources used for key generation and
// for the nonces of the envelope package.
package entropy

import (
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/drand/kyber/util/random"

	"github.com/drand/pre/common/log"
)

// GetRandom reads n bytes of randomness from whatever Reader is passed in, and returns
// those bytes as the requested randomness.
func GetRandom(source io.Reader, n uint32) ([]byte, error) {
	if source == nil {
		source = rand.Reader
	}

	randomBytes := make([]byte, n)
	bytesRead, err := io.ReadFull(source, randomBytes)
	if err != nil || uint32(bytesRead) != n {
		// If the custom source fails, fallback to Golang crypto/rand generator.
		_, err := rand.Read(randomBytes)
		return randomBytes, err
	}
	return randomBytes, nil
}

// Stream returns the cipher.Stream scalars are picked from. Without a source
// it reads crypto/rand only, otherwise 32 bytes of the source are mixed with
// 32 bytes of crypto/rand to seed the stream.
func Stream(source io.Reader) cipher.Stream {
	if source == nil {
		return random.New()
	}
	return random.New(source, rand.Reader)
}

// NewFileReader creates a reader that reads random bytes directly from a file
// such as a hardware RNG device.
func NewFileReader(filePath string) io.Reader {
	return &fileReader{
		path: filePath,
	}
}

type fileReader struct {
	path string
}

func (r *fileReader) Read(p []byte) (int, error) {
	file, err := os.Open(r.path)
	if err != nil {
		return 0, fmt.Errorf("entropy: cannot open file: %w", err)
	}
	defer file.Close()

	n, err := io.ReadFull(file, p)
	if err != nil {
		return n, fmt.Errorf("entropy: error reading from file: %w", err)
	}
	return n, nil
}

// GetReaderFromSource creates a reader for the provided file path
func GetReaderFromSource(sourcePath string, logger log.Logger) (io.Reader, error) {
	fileInfo, err := os.Stat(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("entropy: cannot access source: %w", err)
	}

	if fileInfo.IsDir() {
		return nil, errors.New("entropy: source path is a directory, not a file")
	}

	logger.Infow("Using file for entropy source", "source", sourcePath)
	return NewFileReader(sourcePath), nil
}
