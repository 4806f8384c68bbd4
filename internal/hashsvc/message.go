package hashsvc

import (
	"honkdrop/field"
)

// Field elements travel as 0x-prefixed hex strings in JSON and as 32-byte byte
// strings in CBOR, see field.Element.

// HashRequest asks for Hash(Inputs, OutLen, Variable). An omitted OutLen means 1.
type HashRequest struct {
	Inputs   []field.Element `json:"inputs" cbor:"1,keyasint"`
	OutLen   int             `json:"out_len,omitempty" cbor:"2,keyasint,omitempty"`
	Variable bool            `json:"variable,omitempty" cbor:"3,keyasint,omitempty"`
}

type HashResponse struct {
	Digest []field.Element `json:"digest" cbor:"1,keyasint"`
}

// PairRequest asks for the node hash of A and B.
type PairRequest struct {
	A field.Element `json:"a" cbor:"1,keyasint"`
	B field.Element `json:"b" cbor:"2,keyasint"`
}

type PairResponse struct {
	Digest field.Element `json:"digest" cbor:"1,keyasint"`
}

type BatchRequest struct {
	Pairs []PairRequest `json:"pairs" cbor:"1,keyasint"`
}

// BatchResponse holds one digest per requested pair, in request order.
type BatchResponse struct {
	Digests []field.Element `json:"digests" cbor:"1,keyasint"`
}

// ReduceRequest carries an arbitrary non-negative integer, such as a curve
// coordinate, in hex.
type ReduceRequest struct {
	Value string `json:"value" cbor:"1,keyasint"`
}

type ReduceResponse struct {
	Element field.Element `json:"element" cbor:"1,keyasint"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error" cbor:"1,keyasint"`
	Kind  string `json:"kind" cbor:"2,keyasint"`
}

// Error kinds reported in ErrorResponse.Kind.
const (
	KindBadRequest   = "bad_request"
	KindOutOfRange   = "out_of_range"
	KindEncoding     = "encoding"
	KindLimit        = "limit_exceeded"
	KindRateLimited  = "rate_limited"
	KindInternal     = "internal"
	KindUnsupported  = "unsupported_media_type"
	KindBadOutLength = "invalid_output_length"
)
