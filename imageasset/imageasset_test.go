package imageasset

import "testing"

func TestEncodeDecodeRoundTripUncompressed(t *testing.T) {
	asset := Asset{
		Width: 4, Height: 4, Depth: 1,
		Format:     FormatRGBA8,
		ColorSpace: ColorSpaceSRGBEncoded,
		PixelData:  []byte{1, 2, 3, 4, 5, 6, 7, 8},
	}
	blob, err := Encode(asset, false)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	got, err := Decode(blob)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if string(got.PixelData) != string(asset.PixelData) {
		t.Errorf("PixelData = %v, want %v", got.PixelData, asset.PixelData)
	}
	if got.Width != asset.Width || got.Height != asset.Height {
		t.Errorf("dimensions = %dx%d, want %dx%d", got.Width, got.Height, asset.Width, asset.Height)
	}
}

// TestEncodeDecodeRoundTripCompressed covers testable property 7: ZSTD
// compress then decompress yields the original pixel bytes.
func TestEncodeDecodeRoundTripCompressed(t *testing.T) {
	pixels := make([]byte, 256*256*4)
	for i := range pixels {
		pixels[i] = byte(i % 251)
	}
	asset := Asset{
		Width: 256, Height: 256, Depth: 1,
		Format:     FormatRGBA8,
		ColorSpace: ColorSpaceData,
		PixelData:  pixels,
	}
	blob, err := Encode(asset, true)
	if err != nil {
		t.Fatalf("Encode(compress=true) error = %v", err)
	}
	if len(blob) >= len(pixels) {
		t.Logf("compressed blob (%d bytes) not smaller than raw (%d bytes); still must round-trip", len(blob), len(pixels))
	}
	got, err := Decode(blob)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(got.PixelData) != len(pixels) {
		t.Fatalf("decoded length = %d, want %d", len(got.PixelData), len(pixels))
	}
	for i := range pixels {
		if got.PixelData[i] != pixels[i] {
			t.Fatalf("decoded byte %d = %d, want %d", i, got.PixelData[i], pixels[i])
		}
	}
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	blob := []byte("BOGUS0000000000000000000000000")
	if _, err := Decode(blob); err == nil {
		t.Error("Decode() with bad magic = nil error, want error")
	}
}

func TestDecodeRejectsTruncatedBlob(t *testing.T) {
	if _, err := Decode([]byte("AR")); err == nil {
		t.Error("Decode() on truncated blob = nil error, want error")
	}
}
