package imagecache

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"path"
	"strings"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	"golang.org/x/image/webp"
)

// ErrUnknownFormat is returned for data that matches no supported image format
var ErrUnknownFormat = errors.New("unknown image format")

type decoder func(io.Reader) (image.Image, error)

// sniff picks a decoder from the magic bytes at the start of data.
// image.Decode is not used: the tga package registers an empty magic
// that matches everything.
func sniff(data []byte) (decoder, bool) {
	switch {
	case bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")):
		return png.Decode, true
	case bytes.HasPrefix(data, []byte("\xff\xd8")):
		return jpeg.Decode, true
	case bytes.HasPrefix(data, []byte("GIF8")):
		return gif.Decode, true
	case bytes.HasPrefix(data, []byte("BM")):
		return bmp.Decode, true
	case len(data) >= 12 && string(data[:4]) == "RIFF" && string(data[8:12]) == "WEBP":
		return webp.Decode, true
	}
	return nil, false
}

// Decode decodes image data. TGA has no magic number, so it is selected by
// the extension of name; every other format is sniffed.
func Decode(name string, data []byte) (image.Image, error) {
	dec := decoder(tga.Decode)
	if !strings.EqualFold(path.Ext(stripQuery(name)), ".tga") {
		var ok bool
		if dec, ok = sniff(data); !ok {
			return nil, fmt.Errorf("failed to decode %s: %w", name, ErrUnknownFormat)
		}
	}
	img, err := dec(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return img, nil
}

func stripQuery(url string) string {
	if i := strings.IndexAny(url, "?#"); i >= 0 {
		return url[:i]
	}
	return url
}
