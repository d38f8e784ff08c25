package memobird

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"

	// Decoders for the image formats the encoder accepts.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// Content is a piece of printable content. The concrete types are Text,
// Image, ImageURL, WebPage and Payload.
type Content interface {
	isContent()
}

// Text is plain text content.
type Text struct {
	Body string
}

// Image is raw image bytes in any supported format (PNG, JPEG, GIF, BMP,
// WebP).
type Image struct {
	Data []byte
}

// ImageURL is an image retrieved from a remote URL before encoding.
type ImageURL struct {
	URL string
}

// WebPage is a web page printed by the service itself; the URL is
// forwarded verbatim and nothing is fetched or encoded locally.
type WebPage struct {
	URL string
}

func (Text) isContent()     {}
func (Image) isContent()    {}
func (ImageURL) isContent() {}
func (WebPage) isContent()  {}

// Payload accumulates multiple text and image parts for a single
// submission. Methods chain; the zero value is ready to use.
type Payload struct {
	parts []payloadPart
}

type payloadPart struct {
	kind  byte // 'T' or 'P'
	text  string
	image []byte
	url   string
}

// NewPayload returns an empty multi-part payload.
func NewPayload() *Payload {
	return &Payload{}
}

// AddText appends a text part.
func (p *Payload) AddText(text string) *Payload {
	p.parts = append(p.parts, payloadPart{kind: 'T', text: text})
	return p
}

// AddImage appends an image part from raw bytes.
func (p *Payload) AddImage(data []byte) *Payload {
	p.parts = append(p.parts, payloadPart{kind: 'P', image: data})
	return p
}

// AddImageURL appends an image part fetched from a URL at encode time.
func (p *Payload) AddImageURL(rawURL string) *Payload {
	p.parts = append(p.parts, payloadPart{kind: 'P', url: rawURL})
	return p
}

// Len returns the number of parts accumulated so far.
func (p *Payload) Len() int { return len(p.parts) }

func (*Payload) isContent() {}

// encodeContent turns content into the wire payload string the service
// expects: base64 parts tagged T: (GBK text) or P: (1-bit BMP), joined
// with pipes. Identical input always produces identical output.
func (c *Client) encodeContent(ctx context.Context, content Content) (string, error) {
	switch v := content.(type) {
	case Text:
		return encodeTextPart(v.Body)
	case Image:
		return c.encodeImagePart(v.Data)
	case ImageURL:
		data, err := c.fetchImage(ctx, v.URL)
		if err != nil {
			return "", err
		}
		return c.encodeImagePart(data)
	case *Payload:
		return c.encodePayload(ctx, v)
	case WebPage:
		// Handled by Submit via the URL endpoint; never encoded locally.
		return "", fmt.Errorf("web page content has no local encoding")
	default:
		return "", fmt.Errorf("unsupported content type %T", content)
	}
}

func (c *Client) encodePayload(ctx context.Context, p *Payload) (string, error) {
	encoded := make([]string, 0, len(p.parts))
	for i, part := range p.parts {
		switch part.kind {
		case 'T':
			text := part.text
			// Text parts followed by another part need a trailing
			// newline so the device starts the next part on a new line.
			if i < len(p.parts)-1 && !strings.HasSuffix(text, "\n") {
				text += "\n"
			}
			s, err := encodeTextPart(text)
			if err != nil {
				return "", err
			}
			encoded = append(encoded, s)
		case 'P':
			data := part.image
			if part.url != "" {
				fetched, err := c.fetchImage(ctx, part.url)
				if err != nil {
					return "", err
				}
				data = fetched
			}
			s, err := c.encodeImagePart(data)
			if err != nil {
				return "", err
			}
			encoded = append(encoded, s)
		}
	}
	return strings.Join(encoded, "|"), nil
}

// encodeTextPart encodes text as the service requires: GBK bytes,
// base64, tagged T:. Runes with no GBK mapping are substituted rather
// than dropped.
func encodeTextPart(body string) (string, error) {
	enc := encoding.ReplaceUnsupported(simplifiedchinese.GBK.NewEncoder())
	gbk, _, err := transform.Bytes(enc, []byte(body))
	if err != nil {
		return "", fmt.Errorf("encoding text as GBK: %w", err)
	}
	return "T:" + base64.StdEncoding.EncodeToString(gbk), nil
}

// encodeImagePart decodes an image, scales it down to the configured
// maximum width, converts it to 1-bit monochrome BMP and base64-encodes
// the result.
func (c *Client) encodeImagePart(data []byte) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", &ImageError{Reason: "decoding image", Err: err}
	}

	img = shrinkToWidth(img, c.maxImageWidth)

	bmpData, err := encodeMonoBMP(toMonochrome(img))
	if err != nil {
		return "", &ImageError{Reason: "encoding BMP", Err: err}
	}

	return "P:" + base64.StdEncoding.EncodeToString(bmpData), nil
}

// shrinkToWidth scales img down so its width does not exceed maxWidth,
// preserving aspect ratio. Images at or below the limit pass through
// untouched; nothing is ever upscaled.
func shrinkToWidth(img image.Image, maxWidth int) image.Image {
	bounds := img.Bounds()
	if maxWidth <= 0 || bounds.Dx() <= maxWidth {
		return img
	}

	height := bounds.Dy() * maxWidth / bounds.Dx()
	if height < 1 {
		height = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)
	return dst
}

// toMonochrome reduces an image to pure black and white by thresholding
// BT.601 luminance at 50%.
func toMonochrome(img image.Image) *image.Gray {
	bounds := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			luma := (299*r + 587*g + 114*b) / 1000
			if luma >= 0x8000 {
				out.SetGray(x-bounds.Min.X, y-bounds.Min.Y, color.Gray{Y: 0xFF})
			}
		}
	}

	return out
}

// splitTextChunks splits text into rune-bounded chunks of at most limit
// runes, preserving order. The whole text is one chunk when it fits.
func splitTextChunks(text string, limit int) []string {
	if limit <= 0 {
		return []string{text}
	}

	runes := []rune(text)
	if len(runes) <= limit {
		return []string{text}
	}

	chunks := make([]string, 0, (len(runes)+limit-1)/limit)
	for start := 0; start < len(runes); start += limit {
		end := start + limit
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}
