// Package ioctl wraps the ioctl system call.
package ioctl

import (
	"fmt"
	"reflect"
	"strings"
	"syscall"
)

// Mode is the transfer direction encoded in a command, seen from user space.
type Mode uint8

// Modes
const (
	None Mode = iota
	Write
	Read
)

// Command is an encoded ioctl request: direction in bits 30-31, argument size
// in bits 16-29 and the type and number in the low 16 bits.
type Command uintptr

// Mode of the command.
func (c Command) Mode() Mode { return Mode(c >> 30 & 0x03) }

// Size of the argument in bytes.
func (c Command) Size() int { return int(c >> 16 & 0x3fff) }

func (c Command) String() string {
	var dir []string
	if c.Mode()&Write != 0 {
		dir = append(dir, "write")
	}
	if c.Mode()&Read != 0 {
		dir = append(dir, "read")
	}
	if len(dir) == 0 {
		return fmt.Sprintf("ioctl %#04x", uintptr(c&0xffff))
	}
	return fmt.Sprintf("ioctl %s %#04x (%d bytes)", strings.Join(dir, "/"), uintptr(c&0xffff), c.Size())
}

// Do executes command with a pointer argument, ptr may be nil.
func Do(fd uintptr, command Command, ptr interface{}) error {
	var arg uintptr
	if ptr != nil {
		arg = reflect.ValueOf(ptr).Pointer()
	}
	return Call(fd, uintptr(command), arg)
}

// Call does a plain ioctl system call. The returned error wraps the errno.
func Call(fd, command, arg uintptr) error {
	if _, _, errno := syscall.Syscall(syscall.SYS_IOCTL, fd, command, arg); errno != 0 {
		return fmt.Errorf("%s: %w", Command(command), errno)
	}
	return nil
}

// Encode an ioctl command.
func Encode(mode Mode, size uint16, cmd uintptr) Command {
	return Command(mode)<<30 | Command(size&0x3fff)<<16 | Command(cmd&0xffff)
}

// Pointer encodes cmd for an argument of the type ref points to.
func Pointer(mode Mode, ref interface{}, cmd uintptr) Command {
	return Encode(mode, uint16(reflect.TypeOf(ref).Elem().Size()), cmd)
}
