package sns

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// Container chunk tags. SON files share the SNS chunk layout; only the header
// tag differs.
const (
	tagHeaderSNS = "SNS2"
	tagHeaderSON = "SON2"
	tagBeats     = "BEAT"
)

const maxBeatCount = 1 << 20

// ErrNoBeats is returned when the container parses cleanly but carries no
// beat-marker table.
var ErrNoBeats = errors.New("container has no beat markers")

// ExtractBeats reads the beat-marker table out of an existing SON/SNS
// container. The returned timestamps are opaque encoder ticks, in file order.
func ExtractBeats(path string) ([]uint32, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var header [8]byte
	if _, err := io.ReadFull(file, header[:]); err != nil {
		return nil, errors.New("file too short to be a SON/SNS container")
	}
	switch string(header[0:4]) {
	case tagHeaderSNS, tagHeaderSON:
	default:
		return nil, fmt.Errorf("not a SON/SNS container (tag %q)", string(header[0:4]))
	}
	headerSize := binary.LittleEndian.Uint32(header[4:8])
	if err := skip(file, headerSize); err != nil {
		return nil, errors.New("container header truncated")
	}

	for {
		var chunk [8]byte
		if _, err := io.ReadFull(file, chunk[:]); err != nil {
			return nil, ErrNoBeats
		}
		tag := string(chunk[0:4])
		size := binary.LittleEndian.Uint32(chunk[4:8])
		if tag != tagBeats {
			if err := skip(file, size); err != nil {
				return nil, fmt.Errorf("chunk %q truncated", tag)
			}
			continue
		}
		return readBeatTable(file, size)
	}
}

func readBeatTable(r io.Reader, size uint32) ([]uint32, error) {
	if size < 4 {
		return nil, errors.New("beat table truncated")
	}
	var countBuf [4]byte
	if _, err := io.ReadFull(r, countBuf[:]); err != nil {
		return nil, errors.New("beat table truncated")
	}
	count := binary.LittleEndian.Uint32(countBuf[:])
	if count > maxBeatCount {
		return nil, fmt.Errorf("implausible beat count %d", count)
	}
	if uint64(size) < 4+uint64(count)*4 {
		return nil, errors.New("beat table shorter than declared count")
	}

	markers := make([]uint32, count)
	if err := binary.Read(r, binary.LittleEndian, markers); err != nil {
		return nil, errors.New("beat table truncated")
	}
	return markers, nil
}

func skip(r io.Reader, size uint32) error {
	if seeker, ok := r.(io.Seeker); ok {
		_, err := seeker.Seek(int64(size), io.SeekCurrent)
		return err
	}
	_, err := io.CopyN(io.Discard, r, int64(size))
	return err
}
