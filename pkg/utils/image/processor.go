package image

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"mime/multipart"

	"github.com/chai2010/webp"
)

const encodeQuality = 85

// ProcessImage decodes an uploaded render, re-encodes it at a fixed quality
// and reports its dimensions. Gallery images need width/height stored for the
// frontend masonry layout.
func ProcessImage(file *multipart.FileHeader) (*bytes.Buffer, string, image.Point, error) {
	src, err := file.Open()
	if err != nil {
		return nil, "", image.Point{}, fmt.Errorf("could not open file: %v", err)
	}
	defer src.Close()

	img, format, err := image.Decode(src)
	if err != nil {
		return nil, "", image.Point{}, fmt.Errorf("could not decode image: %v", err)
	}

	buf := new(bytes.Buffer)

	switch format {
	case "jpeg":
		err = jpeg.Encode(buf, img, &jpeg.Options{Quality: encodeQuality})
	case "png":
		err = png.Encode(buf, img)
	case "webp":
		err = webp.Encode(buf, img, &webp.Options{Lossless: false, Quality: encodeQuality})
	default:
		return nil, "", image.Point{}, fmt.Errorf("unsupported image format: %s", format)
	}

	if err != nil {
		return nil, "", image.Point{}, fmt.Errorf("could not encode image: %v", err)
	}

	contentType := fmt.Sprintf("image/%s", format)
	size := img.Bounds().Size()

	return buf, contentType, size, nil
}
