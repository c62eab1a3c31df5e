package domain

// DescriptorSize is the length in bytes of a binary feature descriptor.
const DescriptorSize = 32

// Feature is a single keypoint with its binary descriptor.
type Feature struct {
	X           float32
	Y           float32
	Scale       float32
	Orientation float32
	Response    float32
	Descriptor  [DescriptorSize]byte
}

// LevelFeatures holds the features extracted at one pyramid level.
type LevelFeatures struct {
	Level    int
	DPI      float32
	Width    int
	Height   int
	Features []Feature
}

// LevelSummary describes one level of a feature set without its features.
type LevelSummary struct {
	Level        int
	DPI          float32
	Width        int
	Height       int
	FeatureCount int
}

// FeatureSummary is the content of a marker index file.
type FeatureSummary struct {
	ImageWidth  int
	ImageHeight int
	Levels      []LevelSummary
}

// TotalFeatures returns the number of features across all levels.
func (s FeatureSummary) TotalFeatures() int {
	total := 0
	for _, l := range s.Levels {
		total += l.FeatureCount
	}
	return total
}

// Summarize builds the index summary of a pyramid. The image dimensions are
// those of the finest level.
func Summarize(levels []LevelFeatures) FeatureSummary {
	summary := FeatureSummary{Levels: make([]LevelSummary, 0, len(levels))}
	if len(levels) > 0 {
		summary.ImageWidth = levels[0].Width
		summary.ImageHeight = levels[0].Height
	}
	for _, l := range levels {
		summary.Levels = append(summary.Levels, LevelSummary{
			Level:        l.Level,
			DPI:          l.DPI,
			Width:        l.Width,
			Height:       l.Height,
			FeatureCount: len(l.Features),
		})
	}
	return summary
}
