package render

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	_ "image/png"
	"os"
	"strings"
)

// EmbeddedImage holds the raw bytes of a rendered image. It is immutable
// once constructed.
type EmbeddedImage struct {
	Data []byte
}

// Save writes the image to disk as a PNG file. A .png extension is
// appended when missing; the path actually written is returned.
func (img *EmbeddedImage) Save(filename string) (string, error) {
	if !strings.HasSuffix(filename, ".png") {
		filename += ".png"
	}
	if err := os.WriteFile(filename, img.Data, 0o644); err != nil {
		return "", fmt.Errorf("render: saving image to %s: %w", filename, err)
	}
	return filename, nil
}

// Image decodes the raw bytes into an in-memory image for further
// manipulation.
func (img *EmbeddedImage) Image() (image.Image, error) {
	decoded, _, err := image.Decode(bytes.NewReader(img.Data))
	if err != nil {
		return nil, fmt.Errorf("render: decoding image bytes: %w", err)
	}
	return decoded, nil
}

// callbackMessage is the JSON envelope the display surface posts back.
type callbackMessage struct {
	ImageURI string `json:"imageURI"`
}

// decodePayload turns one callback message into an image: parse the JSON
// envelope, split the data-URI metadata prefix off, base64-decode the
// remainder.
func decodePayload(msg string) (*EmbeddedImage, error) {
	var payload callbackMessage
	if err := json.Unmarshal([]byte(msg), &payload); err != nil {
		return nil, &DecodeError{Stage: DecodeStageSplit, Err: fmt.Errorf("parsing message envelope: %w", err)}
	}

	parts := strings.SplitN(payload.ImageURI, ",", 2)
	if len(parts) != 2 {
		return nil, &DecodeError{Stage: DecodeStageSplit, Err: fmt.Errorf("imageURI carries no data-URI separator")}
	}

	data, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, &DecodeError{Stage: DecodeStageDecode, Err: err}
	}
	return &EmbeddedImage{Data: data}, nil
}
