package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
)

const wavHeaderSize = 44

// EncodeWAV wraps 16-bit mono PCM samples in a RIFF/WAVE container.
func EncodeWAV(samples []int16, sampleRate int) []byte {
	var buf bytes.Buffer
	buf.Grow(wavHeaderSize + len(samples)*2)

	dataSize := len(samples) * 2

	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, int32(36+dataSize))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	_ = binary.Write(&buf, binary.LittleEndian, int32(16))
	_ = binary.Write(&buf, binary.LittleEndian, int16(1))
	_ = binary.Write(&buf, binary.LittleEndian, int16(1))
	_ = binary.Write(&buf, binary.LittleEndian, int32(sampleRate))
	_ = binary.Write(&buf, binary.LittleEndian, int32(sampleRate*2))
	_ = binary.Write(&buf, binary.LittleEndian, int16(2))
	_ = binary.Write(&buf, binary.LittleEndian, int16(16))

	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, int32(dataSize))
	_ = binary.Write(&buf, binary.LittleEndian, samples)

	return buf.Bytes()
}

// DecodePCM returns the samples of a WAV produced by EncodeWAV.
func DecodePCM(wav []byte) ([]int16, error) {
	if len(wav) < wavHeaderSize || string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		return nil, errors.New("not a PCM WAV")
	}

	data := wav[wavHeaderSize:]
	samples := make([]int16, len(data)/2)
	if err := binary.Read(bytes.NewReader(data[:len(samples)*2]), binary.LittleEndian, samples); err != nil {
		return nil, err
	}
	return samples, nil
}

// RMS is the root-mean-square amplitude of samples.
func RMS(samples []int16) float64 {
	if len(samples) == 0 {
		return 0
	}

	var sum float64
	for _, s := range samples {
		v := float64(s)
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(samples)))
}
