//go:build !nogpu

package gpu

import "testing"

func TestConvertBGRAToRGBA(t *testing.T) {
	// 2 pixels: BGRA format.
	src := []byte{
		10, 20, 30, 255, // pixel 0: B=10, G=20, R=30, A=255
		0xAA, 0xBB, 0xCC, 0xDD, // pixel 1: B=0xAA, G=0xBB, R=0xCC, A=0xDD
	}
	dst := make([]byte, 8)
	convertBGRAToRGBA(src, dst, 2, 1, 8)

	// Expected RGBA: R=30, G=20, B=10, A=255
	if dst[0] != 30 || dst[1] != 20 || dst[2] != 10 || dst[3] != 255 {
		t.Errorf("pixel 0: expected [30 20 10 255], got %v", dst[0:4])
	}
	// Expected RGBA: R=0xCC, G=0xBB, B=0xAA, A=0xDD
	if dst[4] != 0xCC || dst[5] != 0xBB || dst[6] != 0xAA || dst[7] != 0xDD {
		t.Errorf("pixel 1: expected [CC BB AA DD], got [%02X %02X %02X %02X]",
			dst[4], dst[5], dst[6], dst[7])
	}
}

func TestConvertBGRAToRGBAStripsRowPadding(t *testing.T) {
	// 2x2 image, rows padded to 12 bytes. Padding bytes are 0xEE.
	src := []byte{
		1, 2, 3, 4, 5, 6, 7, 8, 0xEE, 0xEE, 0xEE, 0xEE,
		9, 10, 11, 12, 13, 14, 15, 16, 0xEE, 0xEE, 0xEE, 0xEE,
	}
	dst := make([]byte, 16)
	convertBGRAToRGBA(src, dst, 2, 2, 12)

	want := []byte{
		3, 2, 1, 4, 7, 6, 5, 8,
		11, 10, 9, 12, 15, 14, 13, 16,
	}
	for i := range want {
		if dst[i] != want[i] {
			t.Fatalf("dst = %v, want %v", dst, want)
		}
	}
}

func TestConvertBGRAToRGBAClearWhite(t *testing.T) {
	const w, h = 5, 3
	stride := int(alignedBytesPerRow(w))
	src := make([]byte, stride*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w*4; x++ {
			src[y*stride+x] = 0xFF
		}
	}
	dst := make([]byte, w*h*4)
	convertBGRAToRGBA(src, dst, w, h, stride)
	for i, b := range dst {
		if b != 0xFF {
			t.Fatalf("dst[%d] = %d, want 255", i, b)
		}
	}
}

func TestAlignedBytesPerRow(t *testing.T) {
	tests := []struct {
		width uint32
		want  uint32
	}{
		{1, 256},
		{64, 256},
		{65, 512},
		{800, 3328},
		{1024, 4096},
	}
	for _, tt := range tests {
		if got := alignedBytesPerRow(tt.width); got != tt.want {
			t.Errorf("alignedBytesPerRow(%d) = %d, want %d", tt.width, got, tt.want)
		}
	}
}
