//go:build !nogpu

package gpu

// convertBGRAToRGBA copies a width x height BGRA image with rows srcStride
// bytes apart into dst as tightly packed RGBA, swapping the red and blue
// channels. Green and alpha are copied unchanged.
//
// dst must hold at least width*height*4 bytes and src at least
// (height-1)*srcStride + width*4 bytes.
func convertBGRAToRGBA(src, dst []byte, width, height, srcStride int) {
	rowBytes := width * 4
	for y := 0; y < height; y++ {
		s := src[y*srcStride : y*srcStride+rowBytes]
		d := dst[y*rowBytes : (y+1)*rowBytes]
		for i := 0; i < rowBytes; i += 4 {
			d[i+0] = s[i+2]
			d[i+1] = s[i+1]
			d[i+2] = s[i+0]
			d[i+3] = s[i+3]
		}
	}
}
