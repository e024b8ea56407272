//go:build unix

package main

import "github.com/wippyai/linmem/memory"

func openMmap(maxPages uint32) (backing, func() error, error) {
	m, err := memory.NewMmap(memory.MmapConfig{InitialPages: 1, MaxPages: maxPages})
	if err != nil {
		return nil, nil, err
	}
	return m, m.Close, nil
}
