package persistence

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression algorithm names, spec.md §4.7. zstd at level 3 is the
// default; "none" stores the payload uncompressed for small/debug saves.
const (
	CompressionNone = "none"
	CompressionLZ4  = "lz4"
	CompressionZstd = "zstd"
)

const zstdLevel = zstd.SpeedDefault // zstd level 3 equivalent in this library's speed presets

// CompressedPayload wraps a serialized snapshot or delta with the
// algorithm and sizes needed to decompress and audit it later.
type CompressedPayload struct {
	Algorithm      string
	Serialization  string
	OriginalSize   int
	CompressedSize int
	Bytes          []byte
}

// Compress wraps data, encoded with the given serialization format, in a
// CompressedPayload using the named algorithm.
func Compress(data []byte, algorithm, serialization string) (CompressedPayload, error) {
	var out []byte
	var err error
	switch algorithm {
	case CompressionNone:
		out = data
	case CompressionLZ4:
		out, err = compressLZ4(data)
	case CompressionZstd:
		out, err = compressZstd(data)
	default:
		return CompressedPayload{}, fmt.Errorf("persistence: unknown compression algorithm %q", algorithm)
	}
	if err != nil {
		return CompressedPayload{}, err
	}
	return CompressedPayload{
		Algorithm:      algorithm,
		Serialization:  serialization,
		OriginalSize:   len(data),
		CompressedSize: len(out),
		Bytes:          out,
	}, nil
}

// Decompress reverses Compress, returning the original serialized bytes.
func Decompress(p CompressedPayload) ([]byte, error) {
	switch p.Algorithm {
	case CompressionNone:
		return p.Bytes, nil
	case CompressionLZ4:
		return decompressLZ4(p.Bytes)
	case CompressionZstd:
		return decompressZstd(p.Bytes)
	default:
		return nil, fmt.Errorf("persistence: unknown compression algorithm %q", p.Algorithm)
	}
}

func compressLZ4(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := lz4.NewWriter(&buf)
	if _, err := zw.Write(src); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decompressLZ4(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	zr := lz4.NewReader(bytes.NewReader(src))
	if _, err := io.Copy(&buf, zr); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func compressZstd(src []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstdLevel))
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(src, nil), nil
}

func decompressZstd(src []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(src, nil)
}
