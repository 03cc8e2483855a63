package study

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"regexp"
	"strings"

	"github.com/yolodolo42/edumind/internal/llm"
)

// MaxImageBytes caps uploads sent to the provider.
const MaxImageBytes = 20 << 20

var dataURLPrefix = regexp.MustCompile(`^data:image/(png|jpeg|jpg|webp);base64,`)

// DecodeImage accepts a data URL or bare base64 string.
func DecodeImage(encoded string) (llm.Image, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return llm.Image{}, ErrEmptyInput
	}

	mimeType := ""
	if m := dataURLPrefix.FindStringSubmatch(encoded); m != nil {
		mimeType = "image/" + m[1]
		if m[1] == "jpg" {
			mimeType = "image/jpeg"
		}
		encoded = encoded[len(m[0]):]
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return llm.Image{}, fmt.Errorf("decode image: %w", err)
	}
	return NewImage(data, mimeType)
}

// LoadImage reads an image file from disk.
func LoadImage(path string) (llm.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return llm.Image{}, fmt.Errorf("read image: %w", err)
	}
	return NewImage(data, "")
}

// NewImage validates data and sniffs its MIME type when mimeType is empty.
func NewImage(data []byte, mimeType string) (llm.Image, error) {
	if len(data) == 0 {
		return llm.Image{}, ErrEmptyInput
	}
	if len(data) > MaxImageBytes {
		return llm.Image{}, fmt.Errorf("image is %d bytes, limit is %d", len(data), MaxImageBytes)
	}

	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	switch mimeType {
	case "image/png", "image/jpeg", "image/webp", "image/gif":
	default:
		return llm.Image{}, fmt.Errorf("unsupported image type %q", mimeType)
	}

	return llm.Image{MIMEType: mimeType, Data: data}, nil
}
