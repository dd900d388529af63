package stt

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/hajimehoshi/go-mp3"
)

// Duration estimates the length of an upload in seconds. Unknown formats report 0.
func Duration(data []byte, contentType string) float64 {
	switch baseType(contentType) {
	case "audio/mpeg", "audio/mp3":
		return mp3Duration(data)
	}
	if d, ok := wavDuration(data); ok {
		return d
	}
	return 0
}

// wavDuration walks the RIFF chunks for the fmt byte rate and the data size.
func wavDuration(data []byte) (float64, bool) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return 0, false
	}
	var byteRate uint32
	for off := 12; off+8 <= len(data); {
		id := string(data[off : off+4])
		size := binary.LittleEndian.Uint32(data[off+4 : off+8])
		body := off + 8
		switch id {
		case "fmt ":
			if body+12 > len(data) {
				return 0, false
			}
			byteRate = binary.LittleEndian.Uint32(data[body+8 : body+12])
		case "data":
			if byteRate == 0 {
				return 0, false
			}
			// Streams written before the length is known carry a 0 or oversized size.
			if size == 0 || body+int(size) > len(data) {
				size = uint32(len(data) - body)
			}
			return round2(float64(size) / float64(byteRate)), true
		}
		off = body + int(size) + int(size%2)
	}
	return 0, false
}

func mp3Duration(data []byte) float64 {
	dec, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil || dec.SampleRate() == 0 {
		return 0
	}
	// Decoded output is 16-bit stereo.
	return round2(float64(dec.Length()) / float64(dec.SampleRate()*4))
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
