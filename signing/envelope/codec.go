package envelope

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Encode serializes the envelope into a signature artifact.
//
// JSON -> UTF-8 bytes -> standard padded base64 -> ASCII bytes of the base64 text.
func Encode(e Envelope) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	// names may legitimately contain characters like '&' and '<', keep them verbatim
	enc.SetEscapeHTML(false)
	if err := enc.Encode(e); err != nil {
		return nil, fmt.Errorf("marshal signature envelope: %w", err)
	}
	payload := bytes.TrimSuffix(buf.Bytes(), []byte("\n"))

	out := make([]byte, base64.StdEncoding.EncodedLen(len(payload)))
	base64.StdEncoding.Encode(out, payload)
	return out, nil
}

// Decode is the inverse of Encode.
//
// The artifact is read as a Latin-1 string, base64 decoded with the forgiving rules of
// browser atob implementations (ASCII whitespace is ignored and padding is optional),
// validated as UTF-8 and parsed as JSON. All failures wrap ErrDecode.
// Characters outside the base64 alphabet are reported as Latin-1 characters together with
// their byte offset in data.
// Decode does not validate the result, see Envelope.Validate.
func Decode(data []byte) (Envelope, error) {
	text, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return Envelope{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	payload, err := decodeBase64([]rune(string(text)))
	if err != nil {
		return Envelope{}, fmt.Errorf("%w: invalid base64: %w", ErrDecode, err)
	}

	if !utf8.Valid(payload) {
		return Envelope{}, fmt.Errorf("%w: payload is not valid UTF-8", ErrDecode)
	}

	var e Envelope
	if err := json.Unmarshal(payload, &e); err != nil {
		return Envelope{}, fmt.Errorf("%w: invalid JSON: %w", ErrDecode, err)
	}
	return e, nil
}

// IsSignature reports whether data decodes into a well-formed envelope.
func IsSignature(data []byte) bool {
	e, err := Decode(data)
	if err != nil {
		return false
	}
	return e.Validate() == nil
}

// decodeBase64 decodes Latin-1 text. Every rune of text is one byte of the artifact,
// so rune indexes are artifact offsets.
func decodeBase64(text []rune) ([]byte, error) {
	var sb strings.Builder
	sb.Grow(len(text))
	for i, r := range text {
		switch {
		case r == ' ', r == '\t', r == '\n', r == '\f', r == '\r':
			continue
		case !isBase64Char(r):
			return nil, fmt.Errorf("invalid character %q (%U) at offset %d", r, r, i)
		}
		sb.WriteRune(r)
	}
	s := sb.String()
	if len(s)%4 == 0 {
		s = strings.TrimSuffix(s, "=")
		s = strings.TrimSuffix(s, "=")
	}
	return base64.RawStdEncoding.DecodeString(s)
}

func isBase64Char(r rune) bool {
	return 'A' <= r && r <= 'Z' || 'a' <= r && r <= 'z' || '0' <= r && r <= '9' || r == '+' || r == '/' || r == '='
}
