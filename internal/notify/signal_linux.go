//go:build linux

package notify

import (
	"encoding/binary"
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"

	"hkd-relayer/internal/hotkeys"
)

// siQueue is SI_QUEUE, the si_code sigqueue(3) stamps on queued signals.
const siQueue = -1

// siginfoSize is SI_MAX_SIZE; the kernel copies this many bytes.
const siginfoSize = 128

// sigval mirrors union sigval. sival_int occupies the first four bytes.
type sigval struct {
	_   [0]uintptr
	raw [unsafe.Sizeof(uintptr(0))]byte
}

// siginfo mirrors the head of siginfo_t for the _rt member of _sifields.
type siginfo struct {
	signo int32
	errno int32
	code  int32
	rt    struct {
		pid   int32
		uid   uint32
		value sigval
	}
}

type siginfoBuf struct {
	info siginfo
	_    [siginfoSize - unsafe.Sizeof(siginfo{})]byte
}

// Signal queues a signal carrying the action id as sival_int, the way
// sigqueue(3) does. The target reads it from si_value / ssi_int.
type Signal struct {
	pid  int
	sig  unix.Signal
	self int32
	uid  uint32
}

// NewSignal returns a notifier queueing SIGUSR1 to pid.
func NewSignal(pid int) *Signal {
	return &Signal{
		pid:  pid,
		sig:  unix.SIGUSR1,
		self: int32(unix.Getpid()),
		uid:  uint32(unix.Getuid()),
	}
}

// PID returns the target process id.
func (s *Signal) PID() int { return s.pid }

// Notify queues the signal through rt_sigqueueinfo(2). It returns as soon as
// the kernel accepted or rejected it; ESRCH means the target has exited.
func (s *Signal) Notify(action hotkeys.ActionID) error {
	var buf siginfoBuf
	buf.info.signo = int32(s.sig)
	buf.info.code = siQueue
	buf.info.rt.pid = s.self
	buf.info.rt.uid = s.uid
	binary.NativeEndian.PutUint32(buf.info.rt.value.raw[:4], uint32(action))

	_, _, errno := unix.Syscall(unix.SYS_RT_SIGQUEUEINFO,
		uintptr(s.pid), uintptr(s.sig), uintptr(unsafe.Pointer(&buf)))
	if errno != 0 {
		return fmt.Errorf("queue %s to pid %d: %w", unix.SignalName(s.sig), s.pid, errno)
	}
	return nil
}
