package engine

import "testing"

// TestTransportCommandVariants exercises the marker interface so a future
// refactor that drops a variant's isTransportCommand() method would fail to
// compile rather than silently losing a command kind.
func TestTransportCommandVariants(t *testing.T) {
	variants := []transportCommand{
		cmdVideoFrame{Bytes: []byte{1}, RTPTS: 90000, IsKeyframe: true},
		cmdAudioFrame{Bytes: []byte{2}, RTPTS: 48000},
		cmdForceKeyframe{},
		cmdStop{},
	}
	for _, v := range variants {
		v.isTransportCommand()
	}
}
