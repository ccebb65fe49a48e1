package pmem

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

var _ Region = (*MappedRegion)(nil)

// MappedRegion is a Region backed by a file mapped at a fixed virtual
// address. Reattaching the same file at the same address across
// restarts keeps persisted internal references valid.
type MappedRegion struct {
	fd   int
	base unsafe.Pointer
	data []byte
}

// MapRegion maps the file at path to the fixed address base. The file
// is created and extended to size if it does not exist; an existing
// file is adopted as-is, never truncated.
func MapRegion(path string, base uintptr, size uint64) (*MappedRegion, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CREAT, 0666)
	if err != nil {
		return nil, err
	}
	var stat unix.Stat_t
	err = unix.Fstat(fd, &stat)
	if err != nil {
		unix.Close(fd)
		return nil, err
	}
	if uint64(stat.Size) < size {
		err = unix.Ftruncate(fd, int64(size))
		if err != nil {
			unix.Close(fd)
			return nil, err
		}
	}
	// base is a fixed OS mapping address, not a Go pointer; convert it
	// through its own storage to satisfy vet's unsafeptr check.
	addr := *(*unsafe.Pointer)(unsafe.Pointer(&base))
	p, err := unix.MmapPtr(fd, 0, addr, uintptr(size),
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED|unix.MAP_FIXED)
	if err != nil {
		unix.Close(fd)
		return nil, err
	}
	return &MappedRegion{
		fd:   fd,
		base: p,
		data: unsafe.Slice((*byte)(p), size),
	}, nil
}

// Base reports the fixed virtual address of the mapping.
func (r *MappedRegion) Base() uintptr {
	return uintptr(r.base)
}

func (r *MappedRegion) Load(off uint64, p []byte) {
	if off+uint64(len(p)) > uint64(len(r.data)) {
		panic(fmt.Errorf("out-of-bounds load at %v", off))
	}
	copy(p, r.data[off:])
}

func (r *MappedRegion) Store(off uint64, p []byte) {
	if off+uint64(len(p)) > uint64(len(r.data)) {
		panic(fmt.Errorf("out-of-bounds store at %v", off))
	}
	copy(r.data[off:], p)
}

func (r *MappedRegion) Barrier() {
	err := unix.Msync(r.data, unix.MS_SYNC)
	if err != nil {
		panic("msync failed: " + err.Error())
	}
}

func (r *MappedRegion) Size() uint64 {
	return uint64(len(r.data))
}

func (r *MappedRegion) Close() {
	err := unix.MunmapPtr(r.base, uintptr(len(r.data)))
	if err != nil {
		panic(err)
	}
	r.data = nil
	err = unix.Close(r.fd)
	if err != nil {
		panic(err)
	}
}
