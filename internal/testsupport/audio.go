package testsupport

// DefaultFrames is the frame count used for generated clips; 130 frames of
// MPEG-1 Layer III at 44.1 kHz run about 3.4 seconds.
const DefaultFrames = 130

const mp3FrameSize = 417

// MP3Frames returns n silent MPEG-1 Layer III frames (128 kbps, 44.1 kHz,
// joint stereo, no CRC), each lasting 1152 samples.
func MP3Frames(n int) []byte {
	out := make([]byte, 0, n*mp3FrameSize)
	for i := 0; i < n; i++ {
		frame := make([]byte, mp3FrameSize)
		frame[0] = 0xFF
		frame[1] = 0xFB
		frame[2] = 0x90
		frame[3] = 0x64
		out = append(out, frame...)
	}
	return out
}
