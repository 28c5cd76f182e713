package quadcast

import (
	"bytes"
	"encoding/base64"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/image/bmp"
)

// fakeSource is a frameSource that fills frames with a solid color and
// records how it was driven.
type fakeSource struct {
	fill [4]byte

	uploads  [][]byte
	renders  int
	closes   int
	inFlight atomic.Int32
	overlap  atomic.Bool

	failRender error
	failUpload error
}

func (s *fakeSource) upload(v []byte) error {
	if s.failUpload != nil {
		err := s.failUpload
		s.failUpload = nil
		return err
	}
	s.uploads = append(s.uploads, append([]byte(nil), v...))
	return nil
}

func (s *fakeSource) render(dst []byte) error {
	if s.inFlight.Add(1) > 1 {
		s.overlap.Store(true)
	}
	defer s.inFlight.Add(-1)
	time.Sleep(time.Millisecond)

	if s.failRender != nil {
		err := s.failRender
		s.failRender = nil
		return err
	}
	s.renders++
	for i := 0; i < len(dst); i += 4 {
		copy(dst[i:i+4], s.fill[:])
	}
	return nil
}

func (s *fakeSource) adapterName() string { return "fake" }
func (s *fakeSource) close()              { s.closes++ }

// fakeClock returns times advancing by step on every call.
func fakeClock(step time.Duration) func() time.Time {
	t := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(step)
		return t
	}
}

func newTestRenderer(t *testing.T, src *fakeSource, opts ...RendererOption) *Renderer {
	t.Helper()
	o := defaultOptions()
	o.clock = fakeClock(40 * time.Millisecond)
	for _, opt := range opts {
		opt(&o)
	}
	r, err := newRenderer(&o, src)
	if err != nil {
		t.Fatalf("newRenderer() = %v", err)
	}
	return r
}

// decodeBMPConfig decodes a base64 BMP string and returns its dimensions.
func decodeBMPConfig(t *testing.T, s string) (int, int) {
	t.Helper()
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		t.Fatalf("invalid base64: %v", err)
	}
	cfg, err := bmp.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("invalid BMP: %v", err)
	}
	return cfg.Width, cfg.Height
}

func TestRendererUploadsInitialQuad(t *testing.T) {
	src := &fakeSource{}
	newTestRenderer(t, src)

	if len(src.uploads) != 1 {
		t.Fatalf("uploads = %d, want 1", len(src.uploads))
	}
	want := NewQuad()
	if got := want.AppendBytes(nil); !bytes.Equal(src.uploads[0], got) {
		t.Error("initial upload does not match NewQuad()")
	}
}

func TestRendererGetImageTwice(t *testing.T) {
	src := &fakeSource{fill: [4]byte{255, 255, 255, 255}}
	r := newTestRenderer(t, src)
	defer r.Close()

	for i := 0; i < 2; i++ {
		s, err := r.GetImage()
		if err != nil {
			t.Fatalf("GetImage #%d: %v", i, err)
		}
		w, h := decodeBMPConfig(t, s)
		if w != 800 || h != 600 {
			t.Errorf("GetImage #%d: BMP is %dx%d, want 800x600", i, w, h)
		}
	}

	st := r.Stats()
	if st.Frames != 2 {
		t.Errorf("Stats().Frames = %d, want 2", st.Frames)
	}
	if st.Failed != 0 {
		t.Errorf("Stats().Failed = %d, want 0", st.Failed)
	}
	if r.Busy() {
		t.Error("Busy() = true after GetImage returned")
	}
}

func TestRendererFirstFrameDoesNotRotate(t *testing.T) {
	src := &fakeSource{}
	r := newTestRenderer(t, src)
	defer r.Close()

	if _, err := r.RenderFrame(); err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}
	if got := r.Quad(); got != NewQuad() {
		t.Errorf("quad after first frame = %+v, want unchanged", got)
	}

	if _, err := r.RenderFrame(); err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}
	if got := r.Quad(); got == NewQuad() {
		t.Error("quad unchanged after second frame, want rotated")
	}
	if len(src.uploads) != 3 {
		t.Errorf("uploads = %d, want 3 (initial + one per frame)", len(src.uploads))
	}
}

func TestRendererRenderFramePixels(t *testing.T) {
	src := &fakeSource{fill: [4]byte{30, 20, 10, 255}}
	r := newTestRenderer(t, src, WithSize(4, 3))
	defer r.Close()

	f, err := r.RenderFrame()
	if err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}
	if f.Width() != 4 || f.Height() != 3 {
		t.Fatalf("frame is %dx%d, want 4x3", f.Width(), f.Height())
	}
	if got := f.Pixel(3, 2); got.R != 30 || got.G != 20 || got.B != 10 || got.A != 255 {
		t.Errorf("Pixel(3, 2) = %+v, want {30 20 10 255}", got)
	}
}

func TestRendererFrameFailureRecovers(t *testing.T) {
	tests := []struct {
		name string
		src  func() *fakeSource
	}{
		{"render", func() *fakeSource { return &fakeSource{} }},
		{"upload", func() *fakeSource { return &fakeSource{} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := tt.src()
			r := newTestRenderer(t, src)
			defer r.Close()

			boom := errors.New("device lost")
			if tt.name == "render" {
				src.failRender = boom
			} else {
				src.failUpload = boom
			}

			_, err := r.GetImage()
			if !errors.Is(err, ErrFrameUnavailable) {
				t.Fatalf("err = %v, want ErrFrameUnavailable", err)
			}
			if !errors.Is(err, boom) {
				t.Errorf("err = %v, want wrapped cause", err)
			}

			if _, err := r.GetImage(); err != nil {
				t.Fatalf("GetImage after failure: %v", err)
			}
			st := r.Stats()
			if st.Failed != 1 || st.Frames != 1 {
				t.Errorf("Stats() = %+v, want 1 failed and 1 frame", st)
			}
		})
	}
}

func TestRendererCloseTwice(t *testing.T) {
	src := &fakeSource{}
	r := newTestRenderer(t, src)

	if err := r.Close(); err != nil {
		t.Fatalf("first Close() = %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("second Close() = %v", err)
	}
	if src.closes != 1 {
		t.Errorf("source closed %d times, want 1", src.closes)
	}

	if _, err := r.GetImage(); !errors.Is(err, ErrClosed) {
		t.Errorf("GetImage after Close: err = %v, want ErrClosed", err)
	}
	if _, err := r.RenderFrame(); !errors.Is(err, ErrClosed) {
		t.Errorf("RenderFrame after Close: err = %v, want ErrClosed", err)
	}
}

func TestRendererSerializesCalls(t *testing.T) {
	src := &fakeSource{}
	r := newTestRenderer(t, src, WithSize(8, 8))
	defer r.Close()

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := r.GetImage(); err != nil {
				t.Errorf("GetImage: %v", err)
			}
		}()
	}
	wg.Wait()

	if src.overlap.Load() {
		t.Error("frames rendered concurrently, want serialized")
	}
	if got := r.Stats().Frames; got != 8 {
		t.Errorf("Stats().Frames = %d, want 8", got)
	}
}

func TestNewInvalidSize(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
	}{
		{"zero width", 0, 600},
		{"zero height", 800, 0},
		{"negative", -1, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := New(WithSize(tt.width, tt.height))
			if !errors.Is(err, ErrStartup) || !errors.Is(err, ErrInvalidSize) {
				t.Errorf("err = %v, want ErrStartup and ErrInvalidSize", err)
			}
			if r != nil {
				t.Error("expected nil renderer on error")
			}
		})
	}
}

func TestNewRendererUploadFailure(t *testing.T) {
	src := &fakeSource{failUpload: errors.New("no memory")}
	o := defaultOptions()
	if _, err := newRenderer(&o, src); err == nil {
		t.Fatal("expected error from failed initial upload")
	}
}
