package manager

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// maxAttachmentBytes caps decoded image payloads.
const maxAttachmentBytes = 8 << 20

// decodeAttachment decodes a base64 image payload and verifies it parses as
// a supported format (png, jpeg, webp). Returns the raw bytes and the
// detected format name.
func decodeAttachment(b64 string) ([]byte, string, error) {
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, "", fmt.Errorf("decode base64: %w", err)
	}
	if len(raw) == 0 {
		return nil, "", errors.New("empty image payload")
	}
	if len(raw) > maxAttachmentBytes {
		return nil, "", fmt.Errorf("image payload %d bytes exceeds %d byte limit", len(raw), maxAttachmentBytes)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, "", fmt.Errorf("parse image: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, "", errors.New("image has no pixels")
	}
	return raw, format, nil
}
