package common

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/nfnt/resize"
	"github.com/wikid-app/feed/internal/model"
	"github.com/wikid-app/feed/pkg/errorx"
	"github.com/wikid-app/feed/pkg/xcontext"
)

// ThumbnailSize bounds the preview shown for a local image attachment until
// the backend returns its own URLs.
const ThumbnailSize = 128

// ReadLocalFile loads a file picked on this device for upload.
func ReadLocalFile(path string) (model.LocalFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.LocalFile{}, err
	}

	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}

	return model.LocalFile{Name: filepath.Base(path), MimeType: mimeType, Data: data}, nil
}

// LocalAttachment builds the attachment displayed by an optimistic message.
// Images get a data URL thumbnail, other files only carry their name.
func LocalAttachment(ctx context.Context, f model.LocalFile) model.Attachment {
	attachment := model.Attachment{Name: f.Name, MimeType: f.MimeType}
	if attachment.MimeCategory() != "image" {
		return attachment
	}

	thumbnail, err := Thumbnail(f.MimeType, f.Data)
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot create thumbnail of %s: %v", f.Name, err)
		return attachment
	}

	attachment.ThumbnailURL = thumbnail
	return attachment
}

// Thumbnail returns a data URL of the image scaled to fit ThumbnailSize.
func Thumbnail(mimeType string, data []byte) (string, error) {
	img, err := decodeImg(mimeType, bytes.NewReader(data))
	if err != nil {
		return "", err
	}

	img = resize.Thumbnail(ThumbnailSize, ThumbnailSize, img, resize.Lanczos2)
	b, err := encodeImg(mimeType, img)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(b)), nil
}

func decodeImg(mimeType string, data io.Reader) (img image.Image, err error) {
	switch mimeType {
	case "image/jpeg":
		img, err = jpeg.Decode(data)
	case "image/png":
		img, err = png.Decode(data)
	case "image/gif":
		img, err = gif.Decode(data)
	default:
		return nil, errorx.New(errorx.BadRequest, "Unsupported image type %s", mimeType)
	}
	return img, err
}

func encodeImg(mimeType string, img image.Image) ([]byte, error) {
	buf := new(bytes.Buffer)

	var err error
	switch mimeType {
	case "image/jpeg":
		err = jpeg.Encode(buf, img, nil)
	case "image/png":
		err = png.Encode(buf, img)
	case "image/gif":
		err = gif.Encode(buf, img, nil)
	default:
		return nil, errorx.New(errorx.BadRequest, "Unsupported image type %s", mimeType)
	}
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
