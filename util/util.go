package util

import (
	"log"

	"github.com/mit-pdos/pmlog/common"
)

const Debug uint64 = 0

func DPrintf(level uint64, format string, a ...interface{}) {
	if level <= Debug {
		log.Printf(format, a...)
	}
}

func RoundUp(n uint64, sz uint64) uint64 {
	return (n + sz - 1) / sz * sz
}

// PageAlign rounds n up to the next page boundary.
func PageAlign(n uint64) uint64 {
	return RoundUp(n, common.PageSize)
}

func Min(n uint64, m uint64) uint64 {
	if n < m {
		return n
	} else {
		return m
	}
}
