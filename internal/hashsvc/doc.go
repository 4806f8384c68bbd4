// Package hashsvc serves the Poseidon2 sponge hash over HTTP.
//
// Endpoints accept and return JSON by default and CBOR when the request body
// is application/cbor or the Accept header asks for it:
//
//	POST /v1/hash         Hash(inputs, out_len, variable)
//	POST /v1/hash2        HashTwo(a, b)
//	POST /v1/hash2/batch  HashTwo over many pairs
//	POST /v1/reduce       reduce a hex integer modulo the field
//	GET  /health          component health, 503 when unhealthy
//	GET  /metrics         counters, gauges and histogram summaries
//
// Field elements travel as 0x-prefixed hex strings in JSON and as 32 byte
// big-endian strings in CBOR. Client wraps the endpoints for Go callers.
package hashsvc
