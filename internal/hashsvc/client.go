// client.go - HTTP client for the hashing service
package hashsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-errors/errors"

	"honkdrop/field"
	"honkdrop/poseidon2"
)

// StatusError is returned by Client when the service answers with a non-2xx status.
type StatusError struct {
	Code    int
	Kind    string
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("hashsvc: server returned %d (%s): %s", e.Code, e.Kind, e.Message)
}

// Client calls a remote hashing service.
type Client struct {
	baseURL string
	http    *http.Client
	cbor    bool
}

// ClientOption customises a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.http = hc }
}

// WithCBOR makes the client send and accept CBOR bodies instead of JSON.
func WithCBOR() ClientOption {
	return func(c *Client) { c.cbor = true }
}

// NewClient returns a client for the service at baseURL, e.g. http://localhost:8545.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 5 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Hash returns Hash(inputs, outLen, variable) computed by the service.
func (c *Client) Hash(ctx context.Context, inputs []field.Element, outLen int, variable bool) ([]field.Element, error) {
	if outLen < 1 {
		return nil, poseidon2.ErrInvalidOutputLength
	}
	var resp HashResponse
	if err := c.do(ctx, http.MethodPost, "/v1/hash", HashRequest{Inputs: inputs, OutLen: outLen, Variable: variable}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Digest) != outLen {
		return nil, errors.Errorf("hashsvc: expected %d digest lanes, got %d", outLen, len(resp.Digest))
	}
	return resp.Digest, nil
}

// HashTwo returns the node hash of a and b computed by the service.
func (c *Client) HashTwo(ctx context.Context, a, b field.Element) (field.Element, error) {
	var resp PairResponse
	if err := c.do(ctx, http.MethodPost, "/v1/hash2", PairRequest{A: a, B: b}, &resp); err != nil {
		return field.Element{}, err
	}
	return resp.Digest, nil
}

// HashTwoBatch returns the node hash of every pair, in order.
func (c *Client) HashTwoBatch(ctx context.Context, pairs [][2]field.Element) ([]field.Element, error) {
	req := BatchRequest{Pairs: make([]PairRequest, len(pairs))}
	for i, p := range pairs {
		req.Pairs[i] = PairRequest{A: p[0], B: p[1]}
	}
	var resp BatchResponse
	if err := c.do(ctx, http.MethodPost, "/v1/hash2/batch", req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Digests) != len(pairs) {
		return nil, errors.Errorf("hashsvc: expected %d digests, got %d", len(pairs), len(resp.Digests))
	}
	return resp.Digests, nil
}

// Reduce returns value modulo the field modulus, value being a hex integer.
func (c *Client) Reduce(ctx context.Context, value string) (field.Element, error) {
	var resp ReduceResponse
	if err := c.do(ctx, http.MethodPost, "/v1/reduce", ReduceRequest{Value: value}, &resp); err != nil {
		return field.Element{}, err
	}
	return resp.Element, nil
}

// Health returns the service health. An unhealthy service is reported through the
// returned SystemHealth, not as an error.
func (c *Client) Health(ctx context.Context) (*SystemHealth, error) {
	var resp HealthCheckResponse
	err := c.do(ctx, http.MethodGet, "/health", nil, &resp)
	var se *StatusError
	if err != nil && !(errors.As(err, &se) && se.Code == http.StatusServiceUnavailable && resp.Data != nil) {
		return nil, err
	}
	if resp.Data == nil {
		return nil, errors.Errorf("hashsvc: health response carries no data")
	}
	return resp.Data, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := c.marshal(in)
		if err != nil {
			return errors.WrapPrefix(err, "hashsvc: failed to encode request", 0)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return errors.WrapPrefix(err, "hashsvc: failed to create request", 0)
	}
	ct := contentTypeJSON
	if c.cbor {
		ct = contentTypeCBOR
	}
	if in != nil {
		req.Header.Set("Content-Type", ct)
	}
	req.Header.Set("Accept", ct)

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.WrapPrefix(err, "hashsvc: failed to send request", 0)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.WrapPrefix(err, "hashsvc: failed to read response", 0)
	}

	if resp.StatusCode/100 != 2 {
		se := &StatusError{Code: resp.StatusCode, Message: resp.Status}
		var e ErrorResponse
		if c.unmarshal(data, &e) == nil && e.Error != "" {
			se.Kind, se.Message = e.Kind, e.Error
		} else if out != nil {
			// health reports its body with 503
			_ = c.unmarshal(data, out)
		}
		return se
	}
	if out == nil {
		return nil
	}
	if err := c.unmarshal(data, out); err != nil {
		return errors.WrapPrefix(err, "hashsvc: failed to decode response", 0)
	}
	return nil
}

func (c *Client) marshal(v interface{}) ([]byte, error) {
	if c.cbor {
		return field.EncodeCBOR(v)
	}
	return json.Marshal(v)
}

func (c *Client) unmarshal(data []byte, v interface{}) error {
	if c.cbor {
		return field.DecodeCBOR(data, v)
	}
	return json.Unmarshal(data, v)
}
