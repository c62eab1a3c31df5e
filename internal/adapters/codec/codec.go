package codec

import (
	"go.trai.ch/nftgen/internal/core/domain"
)

// EncodeIndex encodes the image-feature index (.iset).
//
//	header: u32 imageWidth, u32 imageHeight, u32 levelCount, u32 totalFeatures
//	per level: u32 level, f32 dpi, u32 width, u32 height, u32 featureCount
func EncodeIndex(summary domain.FeatureSummary) []byte {
	w := newWriter(MagicIndex, headerSize+16+len(summary.Levels)*levelRecordSize)
	w.u32(uint32(summary.ImageWidth))  //nolint:gosec // image dimensions fit in u32
	w.u32(uint32(summary.ImageHeight)) //nolint:gosec // image dimensions fit in u32
	w.u32(uint32(len(summary.Levels))) //nolint:gosec // bounded by config validation
	w.u32(uint32(summary.TotalFeatures()))

	for _, l := range summary.Levels {
		w.u32(uint32(l.Level)) //nolint:gosec // bounded by config validation
		w.f32(l.DPI)
		w.u32(uint32(l.Width))  //nolint:gosec // image dimensions fit in u32
		w.u32(uint32(l.Height)) //nolint:gosec // image dimensions fit in u32
		w.u32(uint32(l.FeatureCount))
	}
	return w.buf
}

// DecodeIndex decodes an .iset payload.
func DecodeIndex(data []byte) (domain.FeatureSummary, error) {
	r, err := newReader(data, MagicIndex)
	if err != nil {
		return domain.FeatureSummary{}, err
	}

	var width, height, levelCount, total uint32
	if err := r.u32s(&width, &height, &levelCount, &total); err != nil {
		return domain.FeatureSummary{}, err
	}
	if err := r.need(int(levelCount) * levelRecordSize); err != nil {
		return domain.FeatureSummary{}, err
	}

	summary := domain.FeatureSummary{
		ImageWidth:  int(width),
		ImageHeight: int(height),
		Levels:      make([]domain.LevelSummary, 0, levelCount),
	}
	for range levelCount {
		var level, lw, lh, count uint32
		if err := r.u32s(&level); err != nil {
			return domain.FeatureSummary{}, err
		}
		dpi, err := r.f32()
		if err != nil {
			return domain.FeatureSummary{}, err
		}
		if err := r.u32s(&lw, &lh, &count); err != nil {
			return domain.FeatureSummary{}, err
		}
		summary.Levels = append(summary.Levels, domain.LevelSummary{
			Level:        int(level),
			DPI:          dpi,
			Width:        int(lw),
			Height:       int(lh),
			FeatureCount: int(count),
		})
	}

	if err := r.done(); err != nil {
		return domain.FeatureSummary{}, err
	}
	if summary.TotalFeatures() != int(total) {
		return domain.FeatureSummary{}, r.fail("level counts do not add up to the total")
	}
	return summary, nil
}

// Encode2D encodes the finest level as the 2D feature set (.fset).
//
//	header: f32 dpi, u32 width, u32 height, u32 count
//	then count feature records
func Encode2D(level domain.LevelFeatures) []byte {
	w := newWriter(Magic2D, headerSize+featureHeader+len(level.Features)*FeatureRecordSize)
	writeLevelBody(w, level)
	return w.buf
}

// Decode2D decodes an .fset payload. The returned level index is always 0.
func Decode2D(data []byte) (domain.LevelFeatures, error) {
	r, err := newReader(data, Magic2D)
	if err != nil {
		return domain.LevelFeatures{}, err
	}

	level, err := readLevelBody(r)
	if err != nil {
		return domain.LevelFeatures{}, err
	}
	if err := r.done(); err != nil {
		return domain.LevelFeatures{}, err
	}
	return level, nil
}

// Encode3D encodes every level, finest first, as the multi-scale feature set (.fset3).
//
//	header: u32 levelCount
//	per level: u32 level, f32 dpi, u32 width, u32 height, u32 count, then records
func Encode3D(levels []domain.LevelFeatures) []byte {
	size := headerSize + 4
	for _, l := range levels {
		size += 4 + featureHeader + len(l.Features)*FeatureRecordSize
	}

	w := newWriter(Magic3D, size)
	w.u32(uint32(len(levels))) //nolint:gosec // bounded by config validation
	for _, l := range levels {
		w.u32(uint32(l.Level)) //nolint:gosec // bounded by config validation
		writeLevelBody(w, l)
	}
	return w.buf
}

// Decode3D decodes an .fset3 payload.
func Decode3D(data []byte) ([]domain.LevelFeatures, error) {
	r, err := newReader(data, Magic3D)
	if err != nil {
		return nil, err
	}

	var count uint32
	if err := r.u32s(&count); err != nil {
		return nil, err
	}
	// Every level needs at least its index and header.
	if err := r.need(int(count) * (4 + featureHeader)); err != nil {
		return nil, err
	}

	levels := make([]domain.LevelFeatures, 0, count)
	for range count {
		var index uint32
		if err := r.u32s(&index); err != nil {
			return nil, err
		}
		level, err := readLevelBody(r)
		if err != nil {
			return nil, err
		}
		level.Level = int(index)
		levels = append(levels, level)
	}

	if err := r.done(); err != nil {
		return nil, err
	}
	return levels, nil
}

func writeLevelBody(w *writer, l domain.LevelFeatures) {
	w.f32(l.DPI)
	w.u32(uint32(l.Width))  //nolint:gosec // image dimensions fit in u32
	w.u32(uint32(l.Height)) //nolint:gosec // image dimensions fit in u32
	w.u32(uint32(len(l.Features)))
	for _, f := range l.Features {
		w.f32(f.X)
		w.f32(f.Y)
		w.f32(f.Scale)
		w.f32(f.Orientation)
		w.f32(f.Response)
		w.bytes(f.Descriptor[:])
	}
}

func readLevelBody(r *reader) (domain.LevelFeatures, error) {
	dpi, err := r.f32()
	if err != nil {
		return domain.LevelFeatures{}, err
	}

	var width, height, count uint32
	if err := r.u32s(&width, &height, &count); err != nil {
		return domain.LevelFeatures{}, err
	}
	if err := r.need(int(count) * FeatureRecordSize); err != nil {
		return domain.LevelFeatures{}, err
	}

	level := domain.LevelFeatures{
		DPI:      dpi,
		Width:    int(width),
		Height:   int(height),
		Features: make([]domain.Feature, 0, count),
	}
	for range count {
		var f domain.Feature
		for _, dst := range []*float32{&f.X, &f.Y, &f.Scale, &f.Orientation, &f.Response} {
			if *dst, err = r.f32(); err != nil {
				return domain.LevelFeatures{}, err
			}
		}
		desc, err := r.bytes(domain.DescriptorSize)
		if err != nil {
			return domain.LevelFeatures{}, err
		}
		copy(f.Descriptor[:], desc)
		level.Features = append(level.Features, f)
	}
	return level, nil
}
