package texmeta

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"
)

// ErrUnsupportedFormat is returned for image files no decoder handles.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// configDecoders decode image headers keyed by lowercase extension.
var configDecoders = map[string]func(io.Reader) (image.Config, error){
	".png":  png.DecodeConfig,
	".jpg":  jpeg.DecodeConfig,
	".jpeg": jpeg.DecodeConfig,
	".gif":  gif.DecodeConfig,
	".bmp":  bmp.DecodeConfig,
	".tif":  tiff.DecodeConfig,
	".tiff": tiff.DecodeConfig,
	".webp": webp.DecodeConfig,
	".tga":  tga.DecodeConfig,
}

// SupportedExt reports whether the dimensions of files with ext can be read.
func SupportedExt(ext string) bool {
	_, ok := configDecoders[strings.ToLower(ext)]
	return ok
}

// readDimensions decodes the image header of path. TGA has no magic number,
// so the decoder is selected by extension rather than sniffed.
func readDimensions(path string) (int, int, error) {
	decode, ok := configDecoders[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return 0, 0, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	cfg, err := decode(bufio.NewReader(f))
	if err != nil {
		return 0, 0, fmt.Errorf("decode %s: %w", path, err)
	}
	return cfg.Width, cfg.Height, nil
}
