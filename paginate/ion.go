package paginate

import (
	"bytes"
	"fmt"

	"github.com/amazon-ion/ion-go/ion"
)

// EncodeIon serializes e as binary Ion.
func EncodeIon(e *Export) ([]byte, error) {
	data, err := ion.MarshalBinary(e)
	if err != nil {
		return nil, fmt.Errorf("unable to encode pages: %w", err)
	}
	return data, nil
}

// EncodeIonText serializes e as text Ion, used for debug reports.
func EncodeIonText(e *Export) ([]byte, error) {
	data, err := ion.MarshalText(e)
	if err != nil {
		return nil, fmt.Errorf("unable to encode pages: %w", err)
	}
	return data, nil
}

// DecodeIon reads an export written by EncodeIon or EncodeIonText.
func DecodeIon(data []byte) (*Export, error) {
	var e Export
	dec := ion.NewDecoder(ion.NewReader(bytes.NewReader(data)))
	if err := dec.DecodeTo(&e); err != nil {
		return nil, fmt.Errorf("unable to decode pages: %w", err)
	}
	return &e, nil
}
