package enums

// TitleType separates single-feature titles from episodic ones.
type TitleType string

const (
	TitleTypeMovie  TitleType = "MOVIE"
	TitleTypeSeries TitleType = "SERIES"
)

var titleTypes = valueSet[TitleType]{TitleTypeMovie, TitleTypeSeries}

func (t TitleType) String() string { return string(t) }

func (t TitleType) IsValid() bool { return titleTypes.contains(t) }

// HasSeasons reports whether episodes are grouped under numbered seasons.
func (t TitleType) HasSeasons() bool { return t == TitleTypeSeries }

func ParseTitleType(value string) (TitleType, error) {
	return titleTypes.parse("title type", value)
}
