package sources

const (
	NaturalEarthCountriesURL = "https://naciscdn.org/naturalearth/110m/cultural/ne_110m_admin_0_countries.zip"
)
