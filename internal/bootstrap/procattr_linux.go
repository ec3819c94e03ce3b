package bootstrap

import "syscall"

// sysProcAttr detaches the spawned broker into its own process group so it
// outlives the CLI invocation that spawned it. No parent-death signal is
// set, since that would terminate the broker as soon as the CLI exits.
func sysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		Setpgid: true,
	}
}
