package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ErrUnsupportedFormat is returned for audio that is not uncompressed PCM WAV.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// Format describes a PCM stream.
type Format struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

const wavFormatPCM = 1

// ParseWAV reads the fmt and data chunks of a RIFF/WAVE file.
func ParseWAV(data []byte) (Format, []byte, error) {
	r := bytes.NewReader(data)

	var header [12]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return Format{}, nil, fmt.Errorf("%w: short header", ErrUnsupportedFormat)
	}
	if string(header[0:4]) != "RIFF" || string(header[8:12]) != "WAVE" {
		return Format{}, nil, fmt.Errorf("%w: not a RIFF/WAVE file", ErrUnsupportedFormat)
	}

	var (
		format  Format
		haveFmt bool
	)
	for {
		var id [4]byte
		if _, err := io.ReadFull(r, id[:]); err != nil {
			return Format{}, nil, fmt.Errorf("%w: missing data chunk", ErrUnsupportedFormat)
		}
		var size uint32
		if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
			return Format{}, nil, fmt.Errorf("%w: truncated chunk", ErrUnsupportedFormat)
		}

		switch string(id[:]) {
		case "fmt ":
			if size < 16 {
				return Format{}, nil, fmt.Errorf("%w: fmt chunk too small", ErrUnsupportedFormat)
			}
			var fc struct {
				AudioFormat   uint16
				Channels      uint16
				SampleRate    uint32
				ByteRate      uint32
				BlockAlign    uint16
				BitsPerSample uint16
			}
			if err := binary.Read(r, binary.LittleEndian, &fc); err != nil {
				return Format{}, nil, fmt.Errorf("%w: truncated fmt chunk", ErrUnsupportedFormat)
			}
			if fc.AudioFormat != wavFormatPCM {
				return Format{}, nil, fmt.Errorf("%w: compressed WAV (format %d)", ErrUnsupportedFormat, fc.AudioFormat)
			}
			format = Format{SampleRate: int(fc.SampleRate), Channels: int(fc.Channels), BitDepth: int(fc.BitsPerSample)}
			haveFmt = true
			if _, err := r.Seek(int64(size-16)+int64(size&1), io.SeekCurrent); err != nil {
				return Format{}, nil, err
			}
		case "data":
			if !haveFmt {
				return Format{}, nil, fmt.Errorf("%w: data before fmt chunk", ErrUnsupportedFormat)
			}
			if int64(size) > int64(r.Len()) {
				size = uint32(r.Len())
			}
			pcm := make([]byte, size)
			if _, err := io.ReadFull(r, pcm); err != nil {
				return Format{}, nil, err
			}
			return format, pcm, nil
		default:
			if _, err := r.Seek(int64(size)+int64(size&1), io.SeekCurrent); err != nil {
				return Format{}, nil, err
			}
		}
	}
}

// EncodeWAV wraps mono 16-bit samples in a RIFF/WAVE container.
func EncodeWAV(samples []int16, sampleRate int) []byte {
	dataLen := len(samples) * 2
	buf := bytes.NewBuffer(make([]byte, 0, 44+dataLen))

	buf.WriteString("RIFF")
	_ = binary.Write(buf, binary.LittleEndian, uint32(36+dataLen))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	_ = binary.Write(buf, binary.LittleEndian, struct {
		Size          uint32
		AudioFormat   uint16
		Channels      uint16
		SampleRate    uint32
		ByteRate      uint32
		BlockAlign    uint16
		BitsPerSample uint16
	}{16, wavFormatPCM, 1, uint32(sampleRate), uint32(sampleRate * 2), 2, 16})
	buf.WriteString("data")
	_ = binary.Write(buf, binary.LittleEndian, uint32(dataLen))
	_ = binary.Write(buf, binary.LittleEndian, samples)

	return buf.Bytes()
}

// ToDevicePCM converts PCM in format f to signed 16-bit little-endian mono at
// the device sample rate.
func ToDevicePCM(f Format, pcm []byte) ([]byte, error) {
	if f.Channels < 1 || f.SampleRate < 1 {
		return nil, fmt.Errorf("%w: %d channels at %d Hz", ErrUnsupportedFormat, f.Channels, f.SampleRate)
	}

	var frames []int16
	switch f.BitDepth {
	case 8:
		n := len(pcm) / f.Channels
		frames = make([]int16, n)
		for i := 0; i < n; i++ {
			sum := 0
			for c := 0; c < f.Channels; c++ {
				sum += (int(pcm[i*f.Channels+c]) - 128) << 8
			}
			frames[i] = int16(sum / f.Channels)
		}
	case 16:
		frameBytes := 2 * f.Channels
		n := len(pcm) / frameBytes
		frames = make([]int16, n)
		for i := 0; i < n; i++ {
			sum := 0
			for c := 0; c < f.Channels; c++ {
				off := i*frameBytes + 2*c
				sum += int(int16(binary.LittleEndian.Uint16(pcm[off:])))
			}
			frames[i] = int16(sum / f.Channels)
		}
	default:
		return nil, fmt.Errorf("%w: %d-bit samples", ErrUnsupportedFormat, f.BitDepth)
	}

	frames = resample(frames, f.SampleRate, DeviceSampleRate)
	return samplesToBytes(frames), nil
}

func resample(in []int16, from, to int) []int16 {
	if from == to || len(in) == 0 {
		return in
	}
	n := int(int64(len(in)) * int64(to) / int64(from))
	out := make([]int16, n)
	for i := range out {
		pos := float64(i) * float64(from) / float64(to)
		j := int(pos)
		if j >= len(in)-1 {
			out[i] = in[len(in)-1]
			continue
		}
		frac := pos - float64(j)
		out[i] = int16(float64(in[j])*(1-frac) + float64(in[j+1])*frac)
	}
	return out
}

func samplesToBytes(samples []int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[2*i:], uint16(s))
	}
	return out
}
