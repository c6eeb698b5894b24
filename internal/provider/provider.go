package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/manash/imgstudio/pkg/models"
)

var (
	ErrAPIKeyRequired   = errors.New("API key is required")
	ErrGenerationFailed = errors.New("image generation failed")
	ErrEditFailed       = errors.New("image edit failed")
)

// ErrorKind classifies a remote failure so callers can match on the type
// of error instead of sniffing message text.
type ErrorKind int

const (
	KindTransient ErrorKind = iota
	KindAuth
	KindQuota
	KindContentRefusal
	KindTimeout
)

func (k ErrorKind) String() string {
	switch k {
	case KindAuth:
		return "authorization"
	case KindQuota:
		return "quota"
	case KindContentRefusal:
		return "content refusal"
	case KindTimeout:
		return "timeout"
	default:
		return "transient"
	}
}

// APIError is the structured failure returned by the remote client.
type APIError struct {
	Kind    ErrorKind
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s error (status %d)", e.Kind, e.Status)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

// KindOf extracts the classification from an error chain. Errors that are
// not APIErrors are treated as transient.
func KindOf(err error) ErrorKind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindTransient
}

func IsAuth(err error) bool           { return KindOf(err) == KindAuth }
func IsQuota(err error) bool          { return KindOf(err) == KindQuota }
func IsContentRefusal(err error) bool { return KindOf(err) == KindContentRefusal }
func IsTimeout(err error) bool        { return KindOf(err) == KindTimeout }

// ImageResult is the payload returned by a successful create or edit call.
type ImageResult struct {
	Bytes    []byte
	MimeType string
}

// Client is the remote generative-image API consumed by the studio. All
// calls block until the remote model responds or the configured timeout
// elapses.
type Client interface {
	// CreateImage generates an image from a prompt. A non-nil source makes
	// this an image-conditioned generation.
	CreateImage(ctx context.Context, prompt string, opts models.Options, source []byte) (*ImageResult, error)

	// EditImage applies a natural-language instruction to the source image.
	EditImage(ctx context.Context, source []byte, instruction string, opts models.Options) (*ImageResult, error)

	// SuggestVariants returns alternative phrasings for a prompt. Best
	// effort: an empty slice and nil error on any remote failure.
	SuggestVariants(ctx context.Context, prompt string) ([]string, error)
}

// Config carries the transport settings for a concrete client.
type Config struct {
	APIKey     string
	BaseURL    string
	TimeoutSec int
	Verbose    bool
}
