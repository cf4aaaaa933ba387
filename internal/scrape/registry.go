package scrape

// Store is one competitor storefront the engine knows how to visit.
type Store struct {
	Name    string
	BaseURL string
}

// DefaultStores is the fixed registry of competitor stores. Kept as data so
// adding a store never touches scraping logic.
var DefaultStores = []Store{
	{Name: "Made Trade", BaseURL: "https://www.madetrade.com"},
	{Name: "EarthHero", BaseURL: "https://earthhero.com"},
	{Name: "GOODEE", BaseURL: "https://www.goodeeworld.com"},
	{Name: "Package Free Shop", BaseURL: "https://packagefreeshop.com"},
	{Name: "The Citizenry", BaseURL: "https://www.thecitizenry.com"},
	{Name: "Ten Thousand Villages", BaseURL: "https://www.tenthousandvillages.com"},
	{Name: "NOVICA", BaseURL: "https://www.novica.com"},
	{Name: "The Little Market", BaseURL: "https://thelittlemarket.com"},
	{Name: "DoneGood", BaseURL: "https://donegood.co"},
	{Name: "Folksy", BaseURL: "https://folksy.com"},
	{Name: "IndieCart", BaseURL: "https://indiecart.com"},
	{Name: "Zero Waste Store", BaseURL: "https://zerowaste.store"},
	{Name: "EcoRoots", BaseURL: "https://ecoroots.us"},
	{Name: "Wild Minimalist", BaseURL: "https://wildminimalist.com"},
}

// FilterStores keeps registry entries whose name appears in names. An empty
// filter keeps everything.
func FilterStores(registry []Store, names []string) []Store {
	if len(names) == 0 {
		return registry
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	var out []Store
	for _, s := range registry {
		if want[s.Name] {
			out = append(out, s)
		}
	}
	return out
}
