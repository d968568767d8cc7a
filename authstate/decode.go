package authstate

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/goliatone/go-storefront"
)

// BearerScheme is the authorization scheme used for derived headers.
const BearerScheme = "Bearer"

var (
	// ErrMissingPayload is returned for tokens with fewer than two segments.
	ErrMissingPayload = errors.New("token has no payload segment")
	// ErrInvalidSegmentLength is returned when an unpadded segment has a
	// length with remainder 1 modulo 4, which no base64 input can have.
	ErrInvalidSegmentLength = errors.New("invalid base64 segment length")
	// ErrInvalidEncoding is returned when the payload is not base64.
	ErrInvalidEncoding = errors.New("invalid base64 payload")
	// ErrInvalidPayload is returned when the payload is not a JSON object.
	ErrInvalidPayload = errors.New("payload is not a JSON object")
)

// Decoded is the outcome of decoding a stored token. Exactly one of the two
// branches applies: OK with an identity and header, or Err with the reason.
type Decoded struct {
	Identity Identity
	Header   string
	Err      error
}

// OK reports whether decoding succeeded.
func (d Decoded) OK() bool {
	return d.Err == nil
}

// DecodeToken decodes raw into an identity tagged "jwt" and a bearer header.
// The signature is not verified. Failures wrap storefront.ErrTokenDecoding.
func DecodeToken(raw string) Decoded {
	claims, err := ParseClaimsFromJWT(raw)
	if err != nil {
		return Decoded{
			Identity: Anonymous(),
			Err: storefront.WrapWith(storefront.ErrTokenDecoding, err, map[string]any{
				"reason": reasonOf(err),
			}),
		}
	}

	return Decoded{
		Identity: Identity{
			AuthenticationType: AuthenticationTypeJWT,
			Claims:             claims,
		},
		Header: BearerValue(raw),
	}
}

// BearerValue builds the authorization header value for token. Quote
// characters left over from JSON serialized storage are removed.
func BearerValue(token string) string {
	return BearerScheme + " " + strings.ReplaceAll(token, `"`, "")
}

// ParseClaimsFromJWT reads the claims from the payload segment of token.
func ParseClaimsFromJWT(token string) ([]Claim, error) {
	segments := strings.Split(token, ".")
	if len(segments) < 2 {
		return nil, ErrMissingPayload
	}

	payload, err := ParseBase64WithoutPadding(segments[1])
	if err != nil {
		return nil, err
	}

	return parseClaims(payload)
}

// ParseBase64WithoutPadding restores the "=" padding stripped from a JWT
// segment and decodes it. The URL safe alphabet is tried first, then the
// standard one.
func ParseBase64WithoutPadding(segment string) ([]byte, error) {
	switch len(segment) % 4 {
	case 1:
		return nil, fmt.Errorf("%w: %d", ErrInvalidSegmentLength, len(segment))
	case 2:
		segment += "=="
	case 3:
		segment += "="
	}

	out, err := base64.URLEncoding.DecodeString(segment)
	if err == nil {
		return out, nil
	}
	if out, stdErr := base64.StdEncoding.DecodeString(segment); stdErr == nil {
		return out, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
}

func parseClaims(payload []byte) ([]Claim, error) {
	if !gjson.ValidBytes(payload) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrInvalidPayload)
	}

	doc := gjson.ParseBytes(payload)
	if !doc.IsObject() {
		return nil, fmt.Errorf("%w: got %s", ErrInvalidPayload, doc.Type)
	}

	claims := make([]Claim, 0)
	var nullClaim *string
	doc.ForEach(func(key, value gjson.Result) bool {
		if value.Type == gjson.Null {
			name := key.String()
			nullClaim = &name
			return false
		}
		claims = append(claims, Claim{Type: key.String(), Value: claimValue(value)})
		return true
	})
	if nullClaim != nil {
		return nil, fmt.Errorf("%w: claim %q is null", ErrInvalidPayload, *nullClaim)
	}
	return claims, nil
}

func claimValue(v gjson.Result) string {
	if v.Type == gjson.String {
		return v.Str
	}
	// numbers, booleans, nested objects and arrays keep their JSON text
	return v.Raw
}

func reasonOf(err error) string {
	switch {
	case errors.Is(err, ErrMissingPayload):
		return "missing_payload"
	case errors.Is(err, ErrInvalidSegmentLength):
		return "invalid_segment_length"
	case errors.Is(err, ErrInvalidEncoding):
		return "invalid_encoding"
	case errors.Is(err, ErrInvalidPayload):
		return "invalid_payload"
	default:
		return "unknown"
	}
}
