// Package apperr defines the failure kinds the screenplay service reports to
// its callers. Every error leaving the core wraps exactly one of these
// sentinels, so callers can branch with errors.Is and map kinds to HTTP
// statuses or metric labels without string matching.
package apperr

import "errors"

var (
	// ErrInvalidContentType is returned when an upload declares a content
	// type outside the accepted set. Checked before any hashing, storage,
	// or model work.
	ErrInvalidContentType = errors.New("unsupported content type")

	// ErrImageDecode is returned when uploaded bytes cannot be decoded or
	// canonicalized as an image.
	ErrImageDecode = errors.New("image decode failed")

	// ErrStorage is returned when the blob or metadata store is unavailable
	// or rejects an operation.
	ErrStorage = errors.New("storage operation failed")

	// ErrModelService is returned on transport, quota, or timeout failures
	// calling the generative model service, or when the service returns an
	// empty response.
	ErrModelService = errors.New("model service call failed")

	// ErrSchemaValidation is returned when the model's structured output is
	// not valid JSON, does not satisfy the scene schema, or contains an
	// unrecognized element discriminator.
	ErrSchemaValidation = errors.New("structured output validation failed")
)

// Kind returns a stable label for the error's failure kind, used for metric
// labels and log fields. Unrecognized errors report as "internal".
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrInvalidContentType):
		return "invalid_content_type"
	case errors.Is(err, ErrImageDecode):
		return "image_decode"
	case errors.Is(err, ErrStorage):
		return "storage"
	case errors.Is(err, ErrModelService):
		return "model_service"
	case errors.Is(err, ErrSchemaValidation):
		return "schema_validation"
	default:
		return "internal"
	}
}
