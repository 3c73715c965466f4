package alchemy

import "fmt"

// Quality is an ordered crafted-item tier
type Quality int

const (
	QualityCommon Quality = iota
	QualityUncommon
	QualityRare
	QualityEpic
	QualityLegendary
)

// TopQuality is the highest reachable tier
const TopQuality = QualityLegendary

var qualityNames = map[Quality]string{
	QualityCommon:    "common",
	QualityUncommon:  "uncommon",
	QualityRare:      "rare",
	QualityEpic:      "epic",
	QualityLegendary: "legendary",
}

// String returns the lowercase tier name
func (q Quality) String() string {
	if name, ok := qualityNames[q]; ok {
		return name
	}
	return fmt.Sprintf("quality(%d)", int(q))
}

// ParseQuality converts a tier name back to a Quality
func ParseQuality(name string) (Quality, error) {
	for q, n := range qualityNames {
		if n == name {
			return q, nil
		}
	}
	return QualityCommon, fmt.Errorf("unknown quality %q", name)
}

// MarshalText implements encoding.TextMarshaler
func (q Quality) MarshalText() ([]byte, error) {
	return []byte(q.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (q *Quality) UnmarshalText(text []byte) error {
	parsed, err := ParseQuality(string(text))
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}

// ItemKey is the inventory key for an item at a tier
func ItemKey(itemID string, q Quality) string {
	return itemID + ":" + q.String()
}

// DefaultUpgradeChances holds the chance of promoting from the keyed tier to
// the next one
func DefaultUpgradeChances() map[Quality]float64 {
	return map[Quality]float64{
		QualityCommon:   0.30,
		QualityUncommon: 0.15,
		QualityRare:     0.05,
		QualityEpic:     0.01,
	}
}
