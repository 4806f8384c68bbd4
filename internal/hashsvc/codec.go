// codec.go - request decoding and response encoding for JSON and CBOR bodies
package hashsvc

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/go-errors/errors"

	"honkdrop/field"
	"honkdrop/poseidon2"
)

const (
	contentTypeJSON = "application/json"
	contentTypeCBOR = "application/cbor"
)

// requestError is a client error with the kind reported in ErrorResponse.
type requestError struct {
	status int
	kind   string
	err    error
}

func (e *requestError) Error() string { return e.err.Error() }
func (e *requestError) Unwrap() error { return e.err }

func badRequest(kind string, format string, args ...interface{}) error {
	return &requestError{status: http.StatusBadRequest, kind: kind, err: errors.Errorf(format, args...)}
}

func mediaType(header string) string {
	if header == "" {
		return contentTypeJSON
	}
	mt, _, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	return mt
}

// wantsCBOR reports whether the response to r should be CBOR: either requested
// through Accept or implied by a CBOR request body.
func wantsCBOR(r *http.Request) bool {
	if accept := r.Header.Get("Accept"); accept != "" {
		for _, part := range strings.Split(accept, ",") {
			if mediaType(strings.TrimSpace(part)) == contentTypeCBOR {
				return true
			}
		}
		return false
	}
	return mediaType(r.Header.Get("Content-Type")) == contentTypeCBOR
}

// decodeRequest reads a JSON or CBOR body of at most maxBytes into v.
func decodeRequest(w http.ResponseWriter, r *http.Request, maxBytes int64, v interface{}) error {
	body := http.MaxBytesReader(w, r.Body, maxBytes)
	defer body.Close()

	switch mediaType(r.Header.Get("Content-Type")) {
	case contentTypeJSON:
		dec := json.NewDecoder(body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(v); err != nil {
			return classifyDecode(err)
		}
		if dec.More() {
			return badRequest(KindBadRequest, "trailing data after JSON body")
		}
	case contentTypeCBOR:
		dec := field.NewCBORDecoder(body)
		if err := dec.Decode(v); err != nil {
			return classifyDecode(err)
		}
		var one [1]byte
		n, err := io.MultiReader(dec.Buffered(), body).Read(one[:])
		if n > 0 {
			return badRequest(KindBadRequest, "trailing data after CBOR body")
		}
		if err != nil && err != io.EOF {
			return classifyDecode(err)
		}
	default:
		return &requestError{
			status: http.StatusUnsupportedMediaType,
			kind:   KindUnsupported,
			err:    errors.Errorf("content type %q is not supported", r.Header.Get("Content-Type")),
		}
	}
	return nil
}

func classifyDecode(err error) error {
	var oor *field.OutOfRangeError
	var enc *field.EncodingError
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &oor):
		return &requestError{status: http.StatusBadRequest, kind: KindOutOfRange, err: err}
	case errors.As(err, &enc):
		return &requestError{status: http.StatusBadRequest, kind: KindEncoding, err: err}
	case errors.As(err, &tooLarge):
		return &requestError{status: http.StatusRequestEntityTooLarge, kind: KindLimit, err: err}
	default:
		return &requestError{status: http.StatusBadRequest, kind: KindBadRequest, err: err}
	}
}

// writeResponse encodes v in the format negotiated for r.
func writeResponse(w http.ResponseWriter, r *http.Request, status int, v interface{}) error {
	if wantsCBOR(r) {
		data, err := field.EncodeCBOR(v)
		if err != nil {
			return err
		}
		w.Header().Set("Content-Type", contentTypeCBOR)
		w.WriteHeader(status)
		_, err = w.Write(data)
		return err
	}
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// errorStatus maps an error to its HTTP status and kind.
func errorStatus(err error) (int, string) {
	var re *requestError
	var oor *field.OutOfRangeError
	switch {
	case errors.As(err, &re):
		return re.status, re.kind
	case errors.Is(err, poseidon2.ErrInvalidOutputLength):
		return http.StatusBadRequest, KindBadOutLength
	case errors.As(err, &oor):
		return http.StatusBadRequest, KindOutOfRange
	default:
		return http.StatusInternalServerError, KindInternal
	}
}
