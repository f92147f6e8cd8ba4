//go:build !windows

package cli

import "syscall"

var execFunc = syscall.Exec
