//go:build !unix

package main

import "github.com/wippyai/linmem/errors"

func openMmap(uint32) (backing, func() error, error) {
	return nil, nil, errors.Unsupported(errors.PhaseMemory, "mmap backend on this platform")
}
