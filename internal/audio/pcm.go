package audio

import (
	"encoding/binary"

	"github.com/yolodolo42/edumind/internal/llm"
)

// Speech audio formats.
const (
	FormatMP3 = llm.SpeechFormatMP3
	FormatWAV = "wav"
	// FormatPCM is headerless mono signed 16-bit little-endian audio at
	// PCMSampleRate, as returned by Gemini speech models.
	FormatPCM = llm.SpeechFormatPCM
)

// PCMSampleRate is the sample rate of FormatPCM audio.
const PCMSampleRate = 24000

const (
	pcmChannels      = 1
	pcmBitsPerSample = 16
	wavHeaderSize    = 44
)

// WAV prefixes FormatPCM samples with a RIFF header.
func WAV(pcm []byte) []byte {
	blockAlign := pcmChannels * pcmBitsPerSample / 8
	out := make([]byte, wavHeaderSize, wavHeaderSize+len(pcm))

	copy(out[0:4], "RIFF")
	binary.LittleEndian.PutUint32(out[4:8], uint32(36+len(pcm)))
	copy(out[8:12], "WAVE")
	copy(out[12:16], "fmt ")
	binary.LittleEndian.PutUint32(out[16:20], 16)
	binary.LittleEndian.PutUint16(out[20:22], 1) // linear PCM
	binary.LittleEndian.PutUint16(out[22:24], pcmChannels)
	binary.LittleEndian.PutUint32(out[24:28], PCMSampleRate)
	binary.LittleEndian.PutUint32(out[28:32], uint32(PCMSampleRate*blockAlign))
	binary.LittleEndian.PutUint16(out[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(out[34:36], pcmBitsPerSample)
	copy(out[36:40], "data")
	binary.LittleEndian.PutUint32(out[40:44], uint32(len(pcm)))

	return append(out, pcm...)
}

// Container returns audio in a self-describing format for files and
// players that sniff their input. Raw PCM becomes WAV; anything else is
// returned unchanged.
func Container(audio []byte, format string) ([]byte, string) {
	if format == FormatPCM {
		return WAV(audio), FormatWAV
	}
	if format == "" {
		format = FormatMP3
	}
	return audio, format
}
