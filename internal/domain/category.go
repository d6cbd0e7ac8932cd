package domain

// Well-known category names. Category-specific travel behavior keys off these.
const (
	CategoryWork      = "work"
	CategoryGroceries = "groceries"
	CategorySchools   = "schools"
)

// A named group of destinations of interest.
// For dynamically resolved categories (groceries) Destinations holds the
// brand names searched for in the property's suburb rather than addresses.
type Category struct {
	Name         string
	Destinations []string
}

// Dynamic reports whether destinations are resolved per property via place search.
func (c Category) Dynamic() bool { return c.Name == CategoryGroceries }

// Immutable, ordered set of categories injected into the distance engine.
type Locations struct {
	categories []Category
}

func NewLocations(categories ...Category) Locations {
	out := make([]Category, 0, len(categories))
	for _, c := range categories {
		dests := make([]string, len(c.Destinations))
		copy(dests, c.Destinations)
		out = append(out, Category{Name: c.Name, Destinations: dests})
	}
	return Locations{categories: out}
}

// DefaultLocations returns the built-in Sydney points of interest.
func DefaultLocations() Locations {
	return NewLocations(
		Category{
			Name:         CategoryWork,
			Destinations: []string{"Wynard Station Sydney, NSW"},
		},
		Category{
			Name:         CategoryGroceries,
			Destinations: []string{"Woolworths", "Coles", "Aldi", "IGA"},
		},
		Category{
			Name:         CategorySchools,
			Destinations: []string{"Sydney Grammar School, College Street, Darlinghurst"},
		},
	)
}

// Names returns category names in configured order.
func (l Locations) Names() []string {
	names := make([]string, 0, len(l.categories))
	for _, c := range l.categories {
		names = append(names, c.Name)
	}
	return names
}

// Lookup returns a copy of the named category.
func (l Locations) Lookup(name string) (Category, bool) {
	for _, c := range l.categories {
		if c.Name == name {
			dests := make([]string, len(c.Destinations))
			copy(dests, c.Destinations)
			return Category{Name: c.Name, Destinations: dests}, true
		}
	}
	return Category{}, false
}

// A single point of interest.
// Chain is only set for destinations found via place search and is the
// brand used to identity-match search results.
type Destination struct {
	Name        string
	DisplayName string
	Address     string
	Chain       string
}

// StaticDestination builds a destination whose name doubles as its address.
func StaticDestination(address string) Destination {
	return Destination{Name: address, Address: address}
}
