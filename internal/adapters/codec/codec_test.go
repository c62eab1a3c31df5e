package codec_test

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/nftgen/internal/adapters/codec"
	"go.trai.ch/nftgen/internal/core/domain"
)

func sampleLevel(level, n int) domain.LevelFeatures {
	l := domain.LevelFeatures{Level: level, DPI: 300 / float32(level+1), Width: 500 >> level, Height: 400 >> level}
	for i := range n {
		f := domain.Feature{
			X:           float32(i) + 0.5,
			Y:           float32(2*i) + 0.25,
			Scale:       float32(level + 1),
			Orientation: float32(i) / 10,
			Response:    float32(100 - i),
		}
		for j := range f.Descriptor {
			f.Descriptor[j] = byte(i*31 + j)
		}
		l.Features = append(l.Features, f)
	}
	return l
}

func TestEncode2D_Layout(t *testing.T) {
	level := sampleLevel(0, 2)
	data := codec.Encode2D(level)

	require.Len(t, data, 8+16+2*codec.FeatureRecordSize)
	assert.Equal(t, "ARJS", string(data[:4]))
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(data[4:]))
	assert.Equal(t, uint16(0), binary.LittleEndian.Uint16(data[6:]))
	assert.InDelta(t, 300, math.Float32frombits(binary.LittleEndian.Uint32(data[8:])), 0)
	assert.Equal(t, uint32(500), binary.LittleEndian.Uint32(data[12:]))
	assert.Equal(t, uint32(400), binary.LittleEndian.Uint32(data[16:]))
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(data[20:]))
	// First record: x then y.
	assert.InDelta(t, 0.5, math.Float32frombits(binary.LittleEndian.Uint32(data[24:])), 0)
	assert.InDelta(t, 0.25, math.Float32frombits(binary.LittleEndian.Uint32(data[28:])), 0)
	// Descriptor follows the five floats.
	assert.Equal(t, level.Features[0].Descriptor[:], data[44:76])

	decoded, err := codec.Decode2D(data)
	require.NoError(t, err)
	assert.Equal(t, level, decoded)
}

func TestEncode3D_FinestFirst(t *testing.T) {
	levels := []domain.LevelFeatures{sampleLevel(0, 3), sampleLevel(1, 2), sampleLevel(2, 1)}
	data := codec.Encode3D(levels)

	assert.Equal(t, "AR3D", string(data[:4]))
	assert.Equal(t, uint32(3), binary.LittleEndian.Uint32(data[8:]))
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(data[12:]), "level 0 comes first")

	decoded, err := codec.Decode3D(data)
	require.NoError(t, err)
	require.Len(t, decoded, 3)
	for i, l := range decoded {
		assert.Equal(t, i, l.Level)
		assert.Equal(t, levels[i], l)
	}
}

func TestEncodeIndex(t *testing.T) {
	levels := []domain.LevelFeatures{sampleLevel(0, 3), sampleLevel(1, 2)}
	summary := domain.Summarize(levels)
	data := codec.EncodeIndex(summary)

	require.Len(t, data, 8+16+2*20)
	assert.Equal(t, "ARIS", string(data[:4]))
	assert.Equal(t, uint32(500), binary.LittleEndian.Uint32(data[8:]))
	assert.Equal(t, uint32(400), binary.LittleEndian.Uint32(data[12:]))
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(data[16:]))
	assert.Equal(t, uint32(5), binary.LittleEndian.Uint32(data[20:]))

	decoded, err := codec.DecodeIndex(data)
	require.NoError(t, err)
	assert.Equal(t, summary, decoded)
}

func TestDecode_Rejects(t *testing.T) {
	valid := codec.Encode2D(sampleLevel(0, 2))

	tests := []struct {
		name string
		data []byte
		msg  string
	}{
		{"empty", nil, "shorter than header"},
		{"wrong magic", append([]byte("ARIS"), valid[4:]...), "bad magic"},
		{"future version", withU16(valid, 4, 2), "unsupported version"},
		{"reserved set", withU16(valid, 6, 9), "reserved"},
		{"truncated record", valid[:len(valid)-1], "truncated"},
		{"trailing bytes", append(append([]byte(nil), valid...), 0), "trailing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := codec.Decode2D(tt.data)
			require.ErrorIs(t, err, domain.ErrCodec)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestDecodeIndex_RejectsInconsistentTotal(t *testing.T) {
	data := codec.EncodeIndex(domain.Summarize([]domain.LevelFeatures{sampleLevel(0, 3)}))
	binary.LittleEndian.PutUint32(data[20:], 7)

	_, err := codec.DecodeIndex(data)
	require.ErrorIs(t, err, domain.ErrCodec)
}

func TestDecode3D_HugeCountIsTruncation(t *testing.T) {
	data := codec.Encode3D([]domain.LevelFeatures{sampleLevel(0, 1)})
	binary.LittleEndian.PutUint32(data[8:], math.MaxUint32)

	_, err := codec.Decode3D(data)
	require.ErrorIs(t, err, domain.ErrCodec)
}

func TestBundleFraming(t *testing.T) {
	levels := []domain.LevelFeatures{sampleLevel(0, 2), sampleLevel(1, 1)}
	bundle := domain.Bundle{
		Index:        codec.EncodeIndex(domain.Summarize(levels)),
		FeatureSet:   codec.Encode2D(levels[0]),
		FeatureSet3D: codec.Encode3D(levels),
	}

	payload := codec.MarshalBundle(bundle)
	assert.Equal(t, "NFTB", string(payload[:4]))

	got, err := codec.UnmarshalBundle(payload)
	require.NoError(t, err)
	assert.Equal(t, bundle, got)

	_, err = codec.UnmarshalBundle(payload[:len(payload)-3])
	require.ErrorIs(t, err, domain.ErrCodec)

	swapped := codec.MarshalBundle(domain.Bundle{Index: bundle.FeatureSet, FeatureSet: bundle.Index, FeatureSet3D: bundle.FeatureSet3D})
	_, err = codec.UnmarshalBundle(swapped)
	require.ErrorIs(t, err, domain.ErrCodec)
}

func withU16(data []byte, off int, v uint16) []byte {
	out := append([]byte(nil), data...)
	binary.LittleEndian.PutUint16(out[off:], v)
	return out
}
