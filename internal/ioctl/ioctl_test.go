package ioctl

import (
	"errors"
	"syscall"
	"testing"
)

func TestPointer(t *testing.T) {
	var mode uint8
	var speed uint32
	tests := []struct {
		Name string
		Cmd  Command
		Want Command
	}{
		{"read-mode", Pointer(Read, &mode, 0x6b01), 0x80016b01},
		{"write-speed", Pointer(Write, &speed, 0x6b04), 0x40046b04},
		{"plain", Encode(None, 0, 0x4600), 0x4600},
	}
	for _, test := range tests {
		t.Run(test.Name, func(it *testing.T) {
			if test.Cmd != test.Want {
				it.Errorf("expected %#08x, got %#08x", uintptr(test.Want), uintptr(test.Cmd))
			}
		})
	}
}

func TestCommandString(t *testing.T) {
	tests := []struct {
		Cmd  Command
		Want string
	}{
		{0x80016b01, "ioctl read 0x6b01 (1 bytes)"},
		{0x40046b04, "ioctl write 0x6b04 (4 bytes)"},
		{0xc0086b05, "ioctl write/read 0x6b05 (8 bytes)"},
		{0x4611, "ioctl 0x4611"},
	}
	for _, test := range tests {
		t.Run(test.Want, func(it *testing.T) {
			if v := test.Cmd.String(); v != test.Want {
				it.Errorf("expected %q, got %q", test.Want, v)
			}
		})
	}
}

func TestCall(t *testing.T) {
	// An invalid descriptor fails before the request is looked at.
	err := Call(^uintptr(0), 0x4611, 0)
	if !errors.Is(err, syscall.EBADF) {
		t.Errorf("expected EBADF, got %v", err)
	}
}
