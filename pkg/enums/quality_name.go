package enums

import "strings"

// QualityName is a playback quality tier. Plans cap streams at one of these.
type QualityName string

const (
	QualitySD  QualityName = "SD"
	QualityHD  QualityName = "HD"
	QualityUHD QualityName = "UHD"
)

// qualityNames is ordered from lowest to highest tier.
var qualityNames = valueSet[QualityName]{QualitySD, QualityHD, QualityUHD}

func (q QualityName) String() string { return string(q) }

func (q QualityName) IsValid() bool { return qualityNames.contains(q) }

// Rank orders tiers so SD < HD < UHD. Unknown values rank zero.
func (q QualityName) Rank() int { return qualityNames.rank(q) }

// ParseQualityName accepts any casing.
func ParseQualityName(value string) (QualityName, error) {
	return qualityNames.parse("quality name", strings.ToUpper(strings.TrimSpace(value)))
}
