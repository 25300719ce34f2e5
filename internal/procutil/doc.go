// Package procutil looks up running processes through procfs.
// Currently exposes FindPID, which resolves a process by command name the
// way pidof(8) does.
package procutil
