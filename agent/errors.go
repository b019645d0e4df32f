package agent

import "errors"

var (
	ErrMissingCredential = errors.New("missing API credential")
	ErrUnknownProvider   = errors.New("unknown provider")
	ErrProviderExists    = errors.New("provider already registered")
	ErrEmptyProviderName = errors.New("provider name is empty")
	ErrEmptyResponse     = errors.New("provider returned empty response")
	ErrUnsupportedRole   = errors.New("unsupported message role")
)
