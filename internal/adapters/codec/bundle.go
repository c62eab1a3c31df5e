package codec

import (
	"go.trai.ch/nftgen/internal/core/domain"
)

// MarshalBundle frames the three marker files into one payload for the
// analysis cache: magic, version, reserved, then each file as u32 length
// followed by its bytes in .iset, .fset, .fset3 order.
func MarshalBundle(b domain.Bundle) []byte {
	files := b.Files()
	size := headerSize
	for _, f := range files {
		size += 4 + len(f.Data)
	}

	w := newWriter(MagicBundle, size)
	for _, f := range files {
		w.u32(uint32(len(f.Data))) //nolint:gosec // marker files are far below 4 GiB
		w.bytes(f.Data)
	}
	return w.buf
}

// UnmarshalBundle reverses MarshalBundle and checks the magic of every file.
func UnmarshalBundle(data []byte) (domain.Bundle, error) {
	r, err := newReader(data, MagicBundle)
	if err != nil {
		return domain.Bundle{}, err
	}

	sections := make([][]byte, 0, 3)
	for _, magic := range []string{MagicIndex, Magic2D, Magic3D} {
		var n uint32
		if err := r.u32s(&n); err != nil {
			return domain.Bundle{}, err
		}
		section, err := r.bytes(int(n))
		if err != nil {
			return domain.Bundle{}, err
		}
		if len(section) < 4 || string(section[:4]) != magic {
			return domain.Bundle{}, r.fail("section does not start with " + magic)
		}
		sections = append(sections, append([]byte(nil), section...))
	}

	if err := r.done(); err != nil {
		return domain.Bundle{}, err
	}
	return domain.Bundle{Index: sections[0], FeatureSet: sections[1], FeatureSet3D: sections[2]}, nil
}
