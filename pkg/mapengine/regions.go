package mapengine

const IndiaName = "India"

// EuropeCountries are the dataset names highlighted as Europe. Names missing
// from the dataset are skipped.
var EuropeCountries = []string{
	"Germany", "France", "Italy", "Spain", "United Kingdom", "Poland",
	"Netherlands", "Belgium", "Greece", "Portugal", "Czech Republic",
	"Hungary", "Sweden", "Austria", "Switzerland", "Denmark", "Finland",
	"Norway", "Ireland", "Croatia", "Slovakia", "Slovenia", "Estonia",
	"Latvia", "Lithuania", "Luxembourg", "Malta", "Cyprus", "Bulgaria",
	"Romania",
}

// FilterByNames keeps the rows whose name is in names, in dataset order.
func FilterByNames(all []Country, names []string) []Country {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	var out []Country
	for _, c := range all {
		if _, ok := set[c.Name]; ok {
			out = append(out, c)
		}
	}
	return out
}

func FilterByName(all []Country, name string) []Country {
	var out []Country
	for _, c := range all {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// CropToExtent keeps the rows whose bounding box touches e.
func CropToExtent(all []Country, e Extent) []Country {
	var out []Country
	for _, c := range all {
		if c.Bounds.Intersects(e) {
			out = append(out, c)
		}
	}
	return out
}

// Regions are the three layers drawn on every map.
type Regions struct {
	World  []Country
	Europe []Country
	India  []Country
}

func SelectRegions(all []Country, s Style) Regions {
	world := all
	if s.CropWorld {
		world = CropToExtent(all, s.Extent)
	}
	return Regions{
		World:  world,
		Europe: FilterByNames(all, EuropeCountries),
		India:  FilterByName(all, IndiaName),
	}
}
