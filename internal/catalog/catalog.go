// Package catalog holds the service packages, vehicle classes, time slots,
// served cities and the price table. A Catalog is immutable once built.
package catalog

import "fmt"

type Package struct {
	ID          string         `yaml:"id" json:"id"`
	Label       string         `yaml:"label" json:"label"`
	Description string         `yaml:"description" json:"description"`
	Duration    string         `yaml:"duration" json:"duration"`
	Prices      map[string]int `yaml:"prices" json:"prices"`
}

type CarClass struct {
	ID    string `yaml:"id" json:"id"`
	Label string `yaml:"label" json:"label"`
}

type Slot struct {
	ID    string `yaml:"id" json:"id"`
	Label string `yaml:"label" json:"label"`
}

// LineItem is one package priced for a vehicle class.
type LineItem struct {
	Package string `json:"package"`
	Label   string `json:"label"`
	Price   int    `json:"price"`
}

// Definition is the serializable form of a catalog.
type Definition struct {
	DefaultCity string     `yaml:"default_city" json:"defaultCity"`
	Cities      []string   `yaml:"cities" json:"cities"`
	Packages    []Package  `yaml:"packages" json:"packages"`
	Cars        []CarClass `yaml:"cars" json:"cars"`
	Slots       []Slot     `yaml:"slots" json:"slots"`
}

type Catalog struct {
	def      Definition
	packages map[string]Package
	cars     map[string]CarClass
	slots    map[string]Slot
	cities   map[string]struct{}
}

// New validates def and builds the lookup indexes.
func New(def Definition) (*Catalog, error) {
	c := &Catalog{
		packages: make(map[string]Package, len(def.Packages)),
		cars:     make(map[string]CarClass, len(def.Cars)),
		slots:    make(map[string]Slot, len(def.Slots)),
		cities:   make(map[string]struct{}, len(def.Cities)),
	}

	for _, car := range def.Cars {
		if car.ID == "" {
			return nil, fmt.Errorf("car class %q has empty id", car.Label)
		}
		if _, dup := c.cars[car.ID]; dup {
			return nil, fmt.Errorf("duplicate car class id: %s", car.ID)
		}
		c.cars[car.ID] = car
	}

	for _, slot := range def.Slots {
		if slot.ID == "" {
			return nil, fmt.Errorf("slot %q has empty id", slot.Label)
		}
		if _, dup := c.slots[slot.ID]; dup {
			return nil, fmt.Errorf("duplicate slot id: %s", slot.ID)
		}
		c.slots[slot.ID] = slot
	}

	for _, city := range def.Cities {
		c.cities[city] = struct{}{}
	}
	if def.DefaultCity != "" {
		if _, ok := c.cities[def.DefaultCity]; !ok {
			return nil, fmt.Errorf("default city %q is not in the city list", def.DefaultCity)
		}
	}

	pkgs := make([]Package, 0, len(def.Packages))
	for _, p := range def.Packages {
		if p.ID == "" {
			return nil, fmt.Errorf("package %q has empty id", p.Label)
		}
		if _, dup := c.packages[p.ID]; dup {
			return nil, fmt.Errorf("duplicate package id: %s", p.ID)
		}
		prices := make(map[string]int, len(p.Prices))
		for carID, price := range p.Prices {
			if _, ok := c.cars[carID]; !ok {
				return nil, fmt.Errorf("package %s: price for unknown car class %s", p.ID, carID)
			}
			if price < 0 {
				return nil, fmt.Errorf("package %s: negative price for %s", p.ID, carID)
			}
			prices[carID] = price
		}
		p.Prices = prices
		c.packages[p.ID] = p
		pkgs = append(pkgs, p)
	}

	c.def = Definition{
		DefaultCity: def.DefaultCity,
		Cities:      append([]string(nil), def.Cities...),
		Packages:    pkgs,
		Cars:        append([]CarClass(nil), def.Cars...),
		Slots:       append([]Slot(nil), def.Slots...),
	}
	return c, nil
}

// Price returns the price of pkg for car, or 0 when the pair is not in the table.
func (c *Catalog) Price(pkg, car string) int {
	p, ok := c.packages[pkg]
	if !ok {
		return 0
	}
	return p.Prices[car]
}

// CalculateTotal sums the price of every selected package for car.
// Repeated package ids are counted once.
func (c *Catalog) CalculateTotal(packages []string, car string) int {
	if len(packages) == 0 || car == "" {
		return 0
	}
	seen := make(map[string]struct{}, len(packages))
	total := 0
	for _, pkg := range packages {
		if _, dup := seen[pkg]; dup {
			continue
		}
		seen[pkg] = struct{}{}
		total += c.Price(pkg, car)
	}
	return total
}

// Breakdown prices each package against the current table, in selection order.
func (c *Catalog) Breakdown(packages []string, car string) []LineItem {
	items := make([]LineItem, 0, len(packages))
	seen := make(map[string]struct{}, len(packages))
	for _, pkg := range packages {
		if _, dup := seen[pkg]; dup {
			continue
		}
		seen[pkg] = struct{}{}
		items = append(items, LineItem{
			Package: pkg,
			Label:   c.PackageLabel(pkg),
			Price:   c.Price(pkg, car),
		})
	}
	return items
}

func (c *Catalog) HasPackage(id string) bool {
	_, ok := c.packages[id]
	return ok
}

func (c *Catalog) HasCar(id string) bool {
	_, ok := c.cars[id]
	return ok
}

func (c *Catalog) HasSlot(id string) bool {
	_, ok := c.slots[id]
	return ok
}

func (c *Catalog) HasCity(city string) bool {
	_, ok := c.cities[city]
	return ok
}

// PackageLabel falls back to the id for unknown packages.
func (c *Catalog) PackageLabel(id string) string {
	if p, ok := c.packages[id]; ok {
		return p.Label
	}
	return id
}

func (c *Catalog) CarLabel(id string) string {
	if car, ok := c.cars[id]; ok {
		return car.Label
	}
	return id
}

func (c *Catalog) SlotLabel(id string) string {
	if s, ok := c.slots[id]; ok {
		return s.Label
	}
	return id
}

func (c *Catalog) DefaultCity() string {
	return c.def.DefaultCity
}

// Definition returns a deep copy of the catalog contents.
func (c *Catalog) Definition() Definition {
	out := Definition{
		DefaultCity: c.def.DefaultCity,
		Cities:      append([]string(nil), c.def.Cities...),
		Cars:        append([]CarClass(nil), c.def.Cars...),
		Slots:       append([]Slot(nil), c.def.Slots...),
		Packages:    make([]Package, 0, len(c.def.Packages)),
	}
	for _, p := range c.def.Packages {
		prices := make(map[string]int, len(p.Prices))
		for k, v := range p.Prices {
			prices[k] = v
		}
		p.Prices = prices
		out.Packages = append(out.Packages, p)
	}
	return out
}
