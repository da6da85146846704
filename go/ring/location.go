package ring

import (
	"encoding/binary"

	"github.com/minio/highwayhash"
)

// locationKey is a fixed, arbitrary 32-byte key for the HighwayHash used to
// project content addresses onto ring locations. It does not need to be
// secret: the projection only needs to be uniform and stable across a run,
// not adversarially resistant.
var locationKey = [32]byte{
	0x77, 0x69, 0x6e, 0x64, 0x74, 0x75, 0x6e, 0x6e,
	0x65, 0x6c, 0x2d, 0x72, 0x69, 0x6e, 0x67, 0x2d,
	0x6c, 0x6f, 0x63, 0x61, 0x74, 0x69, 0x6f, 0x6e,
	0x2d, 0x68, 0x61, 0x73, 0x68, 0x2d, 0x6b, 0x65,
}

// Locate projects id onto a deterministic 32-bit ring location, used by
// Arc.Contains. Two calls with the same id always return the same location.
func Locate(id [32]byte) uint32 {
	var h, err = highwayhash.New(locationKey[:])
	if err != nil {
		// locationKey is a fixed, correctly-sized constant; this cannot fail.
		panic(err)
	}
	h.Write(id[:])
	var sum = h.Sum(nil)
	return binary.LittleEndian.Uint32(sum[:4])
}
