package testsupport

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

// WriteWav writes a minimal valid 16-bit PCM WAV file to path.
func WriteWav(t testing.TB, path string) {
	t.Helper()

	const dataSize = 64
	var buf bytes.Buffer
	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1))          // PCM
	_ = binary.Write(&buf, binary.LittleEndian, uint16(2))          // stereo
	_ = binary.Write(&buf, binary.LittleEndian, uint32(44100))      // rate
	_ = binary.Write(&buf, binary.LittleEndian, uint32(44100*2*2))  // byte rate
	_ = binary.Write(&buf, binary.LittleEndian, uint16(4))          // block align
	_ = binary.Write(&buf, binary.LittleEndian, uint16(16))         // bits
	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(dataSize))
	buf.Write(make([]byte, dataSize))

	writeBytes(t, path, buf.Bytes())
}

// WriteSns writes a minimal SNS container carrying the given beat markers.
func WriteSns(t testing.TB, path string, markers ...uint32) {
	t.Helper()

	var buf bytes.Buffer
	buf.WriteString("SNS2")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(16))
	buf.Write(make([]byte, 16))
	if len(markers) > 0 {
		buf.WriteString("BEAT")
		_ = binary.Write(&buf, binary.LittleEndian, uint32(4+4*len(markers)))
		_ = binary.Write(&buf, binary.LittleEndian, uint32(len(markers)))
		_ = binary.Write(&buf, binary.LittleEndian, markers)
	}

	writeBytes(t, path, buf.Bytes())
}

func writeBytes(t testing.TB, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
