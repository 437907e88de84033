// Package codec serializes ledger snapshots for the persistence adapters.
package codec

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/tradecoin/pkg/domain"
	"github.com/fxamacker/cbor/v2"
)

// Codec encodes and decodes snapshots.
type Codec interface {
	Name() string
	Marshal(s *domain.Snapshot) ([]byte, error)
	Unmarshal(data []byte, s *domain.Snapshot) error
}

// JSON is the default codec; stored snapshots stay human readable.
type JSON struct{}

func (JSON) Name() string { return "json" }

func (JSON) Marshal(s *domain.Snapshot) ([]byte, error) { return json.Marshal(s) }

func (JSON) Unmarshal(data []byte, s *domain.Snapshot) error { return json.Unmarshal(data, s) }

// CBOR is a compact binary codec.
type CBOR struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

// NewCBOR builds a CBOR codec that keeps event timestamps at nanosecond precision.
func NewCBOR() (*CBOR, error) {
	enc, err := cbor.EncOptions{Time: cbor.TimeRFC3339Nano, Sort: cbor.SortCanonical}.EncMode()
	if err != nil {
		return nil, fmt.Errorf("cbor encoder: %w", err)
	}
	dec, err := cbor.DecOptions{}.DecMode()
	if err != nil {
		return nil, fmt.Errorf("cbor decoder: %w", err)
	}
	return &CBOR{enc: enc, dec: dec}, nil
}

func (c *CBOR) Name() string { return "cbor" }

func (c *CBOR) Marshal(s *domain.Snapshot) ([]byte, error) { return c.enc.Marshal(s) }

func (c *CBOR) Unmarshal(data []byte, s *domain.Snapshot) error { return c.dec.Unmarshal(data, s) }

// ByName returns the codec registered under name; the empty name selects JSON.
func ByName(name string) (Codec, error) {
	switch name {
	case "", "json":
		return JSON{}, nil
	case "cbor":
		return NewCBOR()
	}
	return nil, fmt.Errorf("unknown codec %q", name)
}
