package imgresize

import (
	"image"

	"github.com/disintegration/imaging"
)

// ImagingCodec implements interface Codec on top of imaging package.
// Supported formats are jpeg, png, gif, tiff and bmp.
type ImagingCodec struct {
	opts []imaging.EncodeOption
}

// NewImagingCodec returns ImagingCodec instance. Options are applied on Encode
// (e.g. imaging.PNGCompressionLevel).
func NewImagingCodec(opts ...imaging.EncodeOption) *ImagingCodec {
	return &ImagingCodec{opts: opts}
}

// Decode implements interface Codec.
func (ic *ImagingCodec) Decode(path string) (image.Image, error) {
	return imaging.Open(path)
}

// Encode implements interface Codec.
func (ic *ImagingCodec) Encode(img image.Image, path string) error {
	return imaging.Save(img, path, ic.opts...)
}

// AreaResampler implements interface Resampler. Every destination pixel is
// the average of the source pixels it covers (box filter).
type AreaResampler struct {
}

// NewAreaResampler returns AreaResampler instance.
func NewAreaResampler() *AreaResampler {
	return &AreaResampler{}
}

// Resample implements interface Resampler.
func (ar *AreaResampler) Resample(img image.Image, width, height int) image.Image {
	return imaging.Resize(img, width, height, imaging.Box)
}
