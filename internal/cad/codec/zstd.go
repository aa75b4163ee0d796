package codec

import (
	"fmt"

	"github.com/klauspost/compress/zstd"

	"cad-editor/internal/cad/models"
)

const zstdExt = ".zst"

// Encoder and decoder are safe for concurrent use and reused across calls.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("codec: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("codec: zstd decoder initialization failed: " + err.Error())
	}
}

// Zstd compresses the output of another codec.
type Zstd struct {
	Inner Codec
}

func (z Zstd) Decode(data []byte) (*models.Document, error) {
	raw, err := zstdDecoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decompress: %w", err)
	}
	return z.Inner.Decode(raw)
}

func (z Zstd) Encode(doc *models.Document) ([]byte, error) {
	raw, err := z.Inner.Encode(doc)
	if err != nil {
		return nil, err
	}
	return zstdEncoder.EncodeAll(raw, nil), nil
}
