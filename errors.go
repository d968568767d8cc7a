package storefront

import (
	"net/http"

	"github.com/goliatone/go-errors"
)

const (
	TextCodeTokenDecoding     = "TOKEN_DECODING_FAILED"
	TextCodeCollaborator      = "COLLABORATOR_FAILED"
	TextCodeUpstreamPayment   = "UPSTREAM_PAYMENT_FAILED"
	TextCodeWebhookSignature  = "WEBHOOK_SIGNATURE_INVALID"
	TextCodeWebhookPayload    = "WEBHOOK_PAYLOAD_INVALID"
	TextCodeStorageReadOnly   = "STORAGE_READ_ONLY"
	TextCodeIdentityMissing   = "IDENTITY_MISSING"
	TextCodeInvalidConfig     = "INVALID_CONFIG"
	TextCodeEmptyCart         = "EMPTY_CART"
	TextCodeTokenMalformed    = "TOKEN_MALFORMED"
	TextCodeTokenExpired      = "TOKEN_EXPIRED"
	TextCodeInsufficientScope = "INSUFFICIENT_ROLE"
)

// ErrTokenDecoding is the single class for every failure while decoding a
// stored token into claims. It never leaves the authentication state provider.
var ErrTokenDecoding = errors.New("unable to decode stored token", errors.CategoryBadInput).
	WithTextCode(TextCodeTokenDecoding).
	WithCode(errors.CodeBadRequest)

// ErrCollaborator is returned when a cart, identity or order lookup fails.
var ErrCollaborator = errors.New("collaborator call failed", errors.CategoryOperation).
	WithTextCode(TextCodeCollaborator).
	WithCode(errors.CodeInternal)

// ErrUpstreamPayment is returned when the payment provider rejects a request.
var ErrUpstreamPayment = errors.New("payment provider rejected the request", errors.CategoryExternal).
	WithTextCode(TextCodeUpstreamPayment).
	WithCode(http.StatusBadGateway)

// ErrWebhookSignature is returned when a provider webhook fails verification.
var ErrWebhookSignature = errors.New("invalid webhook signature", errors.CategoryAuth).
	WithTextCode(TextCodeWebhookSignature).
	WithCode(errors.CodeBadRequest)

// ErrWebhookPayload is returned for verified webhooks we cannot act on.
var ErrWebhookPayload = errors.New("invalid webhook payload", errors.CategoryBadInput).
	WithTextCode(TextCodeWebhookPayload).
	WithCode(errors.CodeBadRequest)

// ErrStorageReadOnly is returned when a write is attempted on a read only store.
var ErrStorageReadOnly = errors.New("token storage does not support writes", errors.CategoryInternal).
	WithTextCode(TextCodeStorageReadOnly).
	WithCode(errors.CodeInternal)

// ErrMissingIdentity is returned when a request has no authenticated customer.
var ErrMissingIdentity = errors.New("no authenticated customer in context", errors.CategoryAuth).
	WithTextCode(TextCodeIdentityMissing).
	WithCode(errors.CodeUnauthorized)

// ErrInvalidConfig is returned when configuration fails validation.
var ErrInvalidConfig = errors.New("invalid configuration", errors.CategoryValidation).
	WithTextCode(TextCodeInvalidConfig).
	WithCode(errors.CodeBadRequest)

// ErrEmptyCart is returned when an order is placed for an empty cart.
var ErrEmptyCart = errors.New("cart is empty", errors.CategoryValidation).
	WithTextCode(TextCodeEmptyCart).
	WithCode(errors.CodeBadRequest)

// ErrTokenMalformed is returned for bearer tokens that fail validation.
var ErrTokenMalformed = errors.New("token is malformed", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(errors.CodeUnauthorized)

// ErrTokenExpired is returned for expired bearer tokens.
var ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrInsufficientRole is returned when claims lack a required role.
var ErrInsufficientRole = errors.New("insufficient role", errors.CategoryAuthz).
	WithTextCode(TextCodeInsufficientScope).
	WithCode(errors.CodeForbidden)

// WrapWith clones base, records err as its source and merges meta.
func WrapWith(base *errors.Error, err error, meta map[string]any) error {
	if base == nil {
		return err
	}

	clone := base.Clone()
	if clone == nil {
		clone = base
	}
	if err != nil {
		clone.Source = err
		if meta == nil {
			meta = map[string]any{}
		}
		if _, ok := meta["cause"]; !ok {
			meta["cause"] = err.Error()
		}
	}
	if len(meta) > 0 {
		clone.WithMetadata(meta)
	}
	return clone
}

// HasTextCode reports whether err is a structured error carrying code.
func HasTextCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		return false
	}
	return richErr.TextCode == code
}

// IsTokenDecodingError reports whether err is a token decoding failure.
func IsTokenDecodingError(err error) bool {
	return HasTextCode(err, TextCodeTokenDecoding)
}

// IsCollaboratorError reports whether err came from a failed collaborator call.
func IsCollaboratorError(err error) bool {
	return HasTextCode(err, TextCodeCollaborator)
}

// IsUpstreamPaymentError reports whether err came from the payment provider.
func IsUpstreamPaymentError(err error) bool {
	return HasTextCode(err, TextCodeUpstreamPayment)
}

// HTTPStatus maps err to the status code a handler should answer with.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var richErr *errors.Error
	if errors.As(err, &richErr) && richErr.Code > 0 {
		return richErr.Code
	}
	return http.StatusInternalServerError
}
