package imagestore

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxImageSize is the largest image accepted for storage.
const MaxImageSize = 10 * 1024 * 1024

// IDPrefix starts every generated image id.
const IDPrefix = "img_"

// AllowedTypes lists the accepted image MIME types.
var AllowedTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// Sentinel errors for image validation.
var (
	ErrImageTooLarge  = errors.New("image too large")
	ErrImageType      = errors.New("unsupported image type")
	ErrInvalidDataURI = errors.New("invalid data URI")
)

// NewImageID returns a fresh id of the form img_<unix-millis>_<uuid>.
func NewImageID(now time.Time) string {
	return IDPrefix + strconv.FormatInt(now.UnixMilli(), 10) + "_" + uuid.NewString()
}

// Reference returns the card text token that embeds the image stored under id.
func Reference(id string) string {
	return "![img:" + id + "]"
}

// EncodeImage validates raw image bytes and returns them as a base64 data URI.
// The type is sniffed from the content, not taken from a file name.
func EncodeImage(data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyData
	}
	if len(data) > MaxImageSize {
		return "", fmt.Errorf("%w: %d bytes (max %d)", ErrImageTooLarge, len(data), MaxImageSize)
	}
	mime := http.DetectContentType(data)
	if !slices.Contains(AllowedTypes, mime) {
		return "", fmt.Errorf("%w: %s", ErrImageType, mime)
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// DecodeDataURI splits a base64 data URI into its MIME type and bytes.
func DecodeDataURI(uri string) (mime string, data []byte, err error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, fmt.Errorf("%w: missing data: prefix", ErrInvalidDataURI)
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("%w: missing comma", ErrInvalidDataURI)
	}
	mime, ok = strings.CutSuffix(meta, ";base64")
	if !ok {
		return "", nil, fmt.Errorf("%w: not base64", ErrInvalidDataURI)
	}
	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
	}
	return mime, data, nil
}
