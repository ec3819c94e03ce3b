//go:build !linux

package bootstrap

import "syscall"

// sysProcAttr detaches the spawned broker into its own process group.
func sysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		Setpgid: true,
	}
}
