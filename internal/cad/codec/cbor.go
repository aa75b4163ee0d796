package codec

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"cad-editor/internal/cad/models"
)

// Core Deterministic Encoding: the same document always produces the same
// bytes, so digests of .cadb files are stable across saves.
var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
}

// CBOR is the compact binary document format.
type CBOR struct{}

func (CBOR) Decode(data []byte) (*models.Document, error) {
	var doc models.Document
	if err := decMode.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode cbor document: %w", err)
	}
	return normalize(&doc), nil
}

func (CBOR) Encode(doc *models.Document) ([]byte, error) {
	data, err := encMode.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode cbor document: %w", err)
	}
	return data, nil
}

// MarshalCBOR and UnmarshalCBOR expose the deterministic encoding to other
// packages that store documents as opaque blobs.
func MarshalCBOR(doc *models.Document) ([]byte, error) { return CBOR{}.Encode(doc) }

func UnmarshalCBOR(data []byte) (*models.Document, error) { return CBOR{}.Decode(data) }
