// Package bundle reads and writes AMD bundle files, transparently handling
// lz4-compressed bundles and the "-" stdin/stdout convention.
package bundle

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pierrec/lz4/v4"
)

// Stdio is the path that selects stdin for reading and stdout for writing.
const Stdio = "-"

// CompressedExt marks lz4-framed bundle files.
const CompressedExt = ".lz4"

// BinarySniffLength is the maximum number of bytes scanned for null-byte
// detection.
const BinarySniffLength = 8000

const outputFileMode = 0o644

// ErrBinaryInput is returned when the input does not look like a text bundle.
var ErrBinaryInput = errors.New("input is not a text bundle")

// lz4 frame magic number, little endian.
var frameMagic = []byte{0x04, 0x22, 0x4d, 0x18}

// Read loads a bundle from path, or from stdin when path is empty or Stdio.
// lz4 frames are decompressed whether or not the path carries the .lz4
// extension.
func Read(path string, stdin io.Reader) (string, error) {
	var (
		data []byte
		err  error
	)

	if isStdio(path) {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}

	if err != nil {
		return "", fmt.Errorf("read bundle %s: %w", displayName(path), err)
	}

	if IsCompressed(data) {
		data, err = Decompress(data)
		if err != nil {
			return "", fmt.Errorf("read bundle %s: %w", displayName(path), err)
		}
	}

	if IsBinary(data) {
		return "", fmt.Errorf("%w: %s", ErrBinaryInput, displayName(path))
	}

	return string(data), nil
}

// Write stores text at path, or on stdout when path is empty or Stdio. The
// output is lz4-framed when compress is set or path ends in .lz4.
func Write(path string, stdout io.Writer, text string, compress bool) error {
	data := []byte(text)

	if compress || strings.EqualFold(filepath.Ext(path), CompressedExt) {
		var err error

		data, err = Compress(data)
		if err != nil {
			return fmt.Errorf("write bundle %s: %w", displayName(path), err)
		}
	}

	if isStdio(path) {
		_, err := stdout.Write(data)
		if err != nil {
			return fmt.Errorf("write bundle %s: %w", displayName(path), err)
		}

		return nil
	}

	err := os.WriteFile(path, data, outputFileMode)
	if err != nil {
		return fmt.Errorf("write bundle %s: %w", displayName(path), err)
	}

	return nil
}

// Compress wraps data in an lz4 frame.
func Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer

	zw := lz4.NewWriter(&buf)

	_, err := zw.Write(data)
	if err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}

	err = zw.Close()
	if err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}

	return buf.Bytes(), nil
}

// Decompress unwraps an lz4 frame.
func Decompress(data []byte) ([]byte, error) {
	out, err := io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
	if err != nil {
		return nil, fmt.Errorf("lz4 decompress: %w", err)
	}

	return out, nil
}

// IsCompressed reports whether data starts with the lz4 frame magic number.
func IsCompressed(data []byte) bool {
	return bytes.HasPrefix(data, frameMagic)
}

// IsBinary returns true if data contains a null byte within the first
// BinarySniffLength bytes. Empty data is not binary.
func IsBinary(data []byte) bool {
	sniff := data
	if len(sniff) > BinarySniffLength {
		sniff = sniff[:BinarySniffLength]
	}

	return bytes.IndexByte(sniff, 0) >= 0
}

func isStdio(path string) bool {
	return path == "" || path == Stdio
}

func displayName(path string) string {
	if isStdio(path) {
		return "<stdio>"
	}

	return path
}
