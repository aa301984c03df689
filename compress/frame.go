// Package compress implements the optional per-block compression
// frame described in spec.md §4.5: a checksum, a method byte, two
// size fields, and the compressed body.
package compress

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Method identifies the compression codec used for one frame.
type Method byte

const (
	MethodNone Method = 0x02
	MethodLZ4  Method = 0x82
	MethodZSTD Method = 0x90
)

var ErrChecksumMismatch = errors.New("compress: checksum mismatch")

const headerLen = 9 // method(1) + compressed_size(4) + uncompressed_size(4)

// Frame writes method+body as a compression frame: 16-byte CityHash128
// checksum over header‖compressed-body, then the header, then the
// compressed body. The header's compressed_size includes itself.
func Frame(method Method, body []byte) ([]byte, error) {
	var compressed []byte
	var err error
	switch method {
	case MethodNone:
		compressed = body
	case MethodLZ4:
		compressed, err = compressLZ4(body)
	case MethodZSTD:
		compressed, err = compressZSTD(body)
	default:
		return nil, fmt.Errorf("compress: unknown method %#x", byte(method))
	}
	if err != nil {
		return nil, err
	}

	header := make([]byte, headerLen)
	header[0] = byte(method)
	binary.LittleEndian.PutUint32(header[1:5], uint32(headerLen+len(compressed)))
	binary.LittleEndian.PutUint32(header[5:9], uint32(len(body)))

	payload := append(append([]byte{}, header...), compressed...)
	lo, hi := CityHash128(payload)
	out := make([]byte, 16+len(payload))
	binary.LittleEndian.PutUint64(out[0:8], lo)
	binary.LittleEndian.PutUint64(out[8:16], hi)
	copy(out[16:], payload)
	return out, nil
}

// Unframe verifies the checksum and decompresses a frame produced by
// Frame, returning the original uncompressed body.
func Unframe(framed []byte) ([]byte, error) {
	if len(framed) < 16+headerLen {
		return nil, io.ErrUnexpectedEOF
	}
	wantLo := binary.LittleEndian.Uint64(framed[0:8])
	wantHi := binary.LittleEndian.Uint64(framed[8:16])
	payload := framed[16:]
	gotLo, gotHi := CityHash128(payload)
	if gotLo != wantLo || gotHi != wantHi {
		return nil, ErrChecksumMismatch
	}

	method := Method(payload[0])
	compressedSize := binary.LittleEndian.Uint32(payload[1:5])
	uncompressedSize := binary.LittleEndian.Uint32(payload[5:9])
	if int(compressedSize) > len(payload) {
		return nil, fmt.Errorf("compress: declared size %d exceeds frame", compressedSize)
	}
	body := payload[headerLen:compressedSize]

	switch method {
	case MethodNone:
		return body, nil
	case MethodLZ4:
		return decompressLZ4(body, int(uncompressedSize))
	case MethodZSTD:
		return decompressZSTD(body, int(uncompressedSize))
	}
	return nil, fmt.Errorf("compress: unknown method %#x", byte(method))
}

func compressLZ4(body []byte) ([]byte, error) {
	buf := make([]byte, lz4.CompressBlockBound(len(body)))
	var c lz4.Compressor
	n, err := c.CompressBlock(body, buf)
	if err != nil {
		return nil, fmt.Errorf("compress: lz4: %w", err)
	}
	if n == 0 && len(body) > 0 {
		return nil, fmt.Errorf("compress: lz4: incompressible block")
	}
	return buf[:n], nil
}

func decompressLZ4(compressed []byte, uncompressedSize int) ([]byte, error) {
	out := make([]byte, uncompressedSize)
	n, err := lz4.UncompressBlock(compressed, out)
	if err != nil {
		return nil, fmt.Errorf("compress: lz4: %w", err)
	}
	return out[:n], nil
}

func compressZSTD(body []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("compress: zstd: %w", err)
	}
	defer enc.Close()
	return enc.EncodeAll(body, nil), nil
}

func decompressZSTD(compressed []byte, uncompressedSize int) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("compress: zstd: %w", err)
	}
	defer dec.Close()
	out, err := dec.DecodeAll(compressed, make([]byte, 0, uncompressedSize))
	if err != nil {
		return nil, fmt.Errorf("compress: zstd: %w", err)
	}
	return out, nil
}
