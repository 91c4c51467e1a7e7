package wav

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

const (
	formatPCM        = 1
	formatExtensible = 0xFFFE
)

// Validate performs the cheap precondition checks a recording must pass before
// an encode is dispatched. It reads only the chunk headers, never the samples.
// A nil return means the file is encodable; a non-nil return carries the
// user-facing rejection reason.
func Validate(path string) error {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file not found: %s", path)
		}
		return fmt.Errorf("cannot open file: %v", err)
	}
	defer file.Close()

	var riff [12]byte
	if _, err := io.ReadFull(file, riff[:]); err != nil {
		return errors.New("file too short to be a WAV recording")
	}
	if string(riff[0:4]) != "RIFF" {
		return errors.New("not a RIFF file")
	}
	if string(riff[8:12]) != "WAVE" {
		return errors.New("not a WAVE form")
	}

	info, err := scanChunks(file)
	if err != nil {
		return err
	}
	return info.check()
}

type formatInfo struct {
	haveFmt       bool
	haveData      bool
	audioFormat   uint16
	channels      uint16
	sampleRate    uint32
	bitsPerSample uint16
	dataSize      uint32
}

func scanChunks(r io.Reader) (formatInfo, error) {
	var info formatInfo
	var header [8]byte
	for {
		if _, err := io.ReadFull(r, header[:]); err != nil {
			if info.haveFmt || info.haveData {
				return info, nil
			}
			return info, errors.New("no fmt chunk found")
		}
		id := string(header[0:4])
		size := binary.LittleEndian.Uint32(header[4:8])

		switch id {
		case "fmt ":
			if size < 16 {
				return info, errors.New("fmt chunk truncated")
			}
			var body [16]byte
			if _, err := io.ReadFull(r, body[:]); err != nil {
				return info, errors.New("fmt chunk truncated")
			}
			info.haveFmt = true
			info.audioFormat = binary.LittleEndian.Uint16(body[0:2])
			info.channels = binary.LittleEndian.Uint16(body[2:4])
			info.sampleRate = binary.LittleEndian.Uint32(body[4:8])
			info.bitsPerSample = binary.LittleEndian.Uint16(body[14:16])
			if err := skipChunk(r, size-16); err != nil {
				return info, err
			}
		case "data":
			info.haveData = true
			info.dataSize = size
			// data tends to be the last chunk and can be huge; nothing after
			// it changes the verdict.
			return info, nil
		default:
			if err := skipChunk(r, size); err != nil {
				return info, err
			}
		}
	}
}

func skipChunk(r io.Reader, size uint32) error {
	// Chunks are word aligned; odd sizes carry a pad byte.
	skip := int64(size)
	if size%2 == 1 {
		skip++
	}
	if seeker, ok := r.(io.Seeker); ok {
		_, err := seeker.Seek(skip, io.SeekCurrent)
		return err
	}
	_, err := io.CopyN(io.Discard, r, skip)
	return err
}

func (info formatInfo) check() error {
	if !info.haveFmt {
		return errors.New("no fmt chunk found")
	}
	if info.audioFormat != formatPCM && info.audioFormat != formatExtensible {
		return fmt.Errorf("unsupported audio format code %d (PCM required)", info.audioFormat)
	}
	switch info.bitsPerSample {
	case 8, 16, 24:
	default:
		return errors.New("unsupported bit depth")
	}
	if info.channels == 0 || info.channels > 8 {
		return fmt.Errorf("unsupported channel count %d", info.channels)
	}
	if info.sampleRate == 0 {
		return errors.New("invalid sample rate")
	}
	if !info.haveData || info.dataSize == 0 {
		return errors.New("no audio data")
	}
	return nil
}

// IsWavPath reports whether the path carries a .wav extension. Used for early
// UI filtering only; Validate remains the authority.
func IsWavPath(path string) bool {
	return strings.EqualFold(extOf(path), ".wav")
}

func extOf(path string) string {
	for i := len(path) - 1; i >= 0 && path[i] != '/' && path[i] != '\\'; i-- {
		if path[i] == '.' {
			return path[i:]
		}
	}
	return ""
}
