package errors

import (
	stdErrors "errors"

	"github.com/angelmondragon/storefront-backend/pkg/types"
)

// Public converts err into the body shown to clients and the matching HTTP status.
// Internal messages are replaced by the public message for their code.
func Public(err error) (types.APIError, int) {
	if err == nil {
		err = stdErrors.New("unknown error")
	}
	typed := As(err)
	if typed == nil {
		typed = Wrap(CodeInternal, err, "unexpected error")
	}
	meta := MetadataFor(typed.Code())

	msg := meta.PublicMessage
	if !meta.Retryable {
		if m := typed.Message(); m != "" {
			msg = m
		}
	}
	out := types.APIError{Code: string(typed.Code()), Message: msg}
	if meta.DetailsAllowed {
		out.Details = typed.Details()
	}
	return out, meta.HTTPStatus
}

// FromAPI rebuilds a typed error from a client-facing body.
func FromAPI(apiErr types.APIError) *Error {
	return New(CodeFromString(apiErr.Code), apiErr.Message).WithDetails(apiErr.Details)
}
