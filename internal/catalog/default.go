package catalog

const (
	PackageQuick      = "quick"
	PackageDeep       = "deep"
	PackageRubbing    = "rubbing"
	PackageWindshield = "windshield"
)

const (
	CarHatchback = "hatchback"
	CarSedan     = "sedan"
	CarCompact   = "compact"
	CarSUV5      = "suv5"
	CarSUV7      = "suv7"
)

// DefaultDefinition is the canonical catalog served when no catalog file is configured.
func DefaultDefinition() Definition {
	return Definition{
		DefaultCity: "Jaipur",
		Cities:      []string{"Jaipur", "Gurgaon", "Delhi", "Noida", "Pune", "Bengaluru"},
		Packages: []Package{
			{
				ID:          PackageQuick,
				Label:       "Quick Shine",
				Description: "Keep your ride shining bright and rolling right with regular car cleaning.",
				Duration:    "Around 1 hr",
				Prices:      map[string]int{CarHatchback: 399, CarSedan: 399, CarCompact: 399, CarSUV5: 449, CarSUV7: 449},
			},
			{
				ID:          PackageDeep,
				Label:       "Deep Cleaning",
				Description: "A deep clean inside and out that makes your car shine like new.",
				Duration:    "Around 2-3 hrs",
				Prices:      map[string]int{CarHatchback: 799, CarSedan: 999, CarCompact: 999, CarSUV5: 1199, CarSUV7: 1399},
			},
			{
				ID:          PackageRubbing,
				Label:       "Rubbing & Polishing",
				Description: "Machine rubbing and polishing that restores paint gloss.",
				Duration:    "Around 2-3 hrs",
				Prices:      map[string]int{CarHatchback: 1399, CarSedan: 1599, CarCompact: 1599, CarSUV5: 1799, CarSUV7: 1799},
			},
			{
				ID:          PackageWindshield,
				Label:       "Windshield Polishing",
				Description: "Glass polishing that turns a foggy windshield clear again.",
				Duration:    "Around 2 hrs",
				Prices:      map[string]int{CarHatchback: 799, CarSedan: 899, CarCompact: 899, CarSUV5: 999, CarSUV7: 999},
			},
		},
		Cars: []CarClass{
			{ID: CarHatchback, Label: "Hatchback"},
			{ID: CarSedan, Label: "Sedan"},
			{ID: CarCompact, Label: "Compact SUV"},
			{ID: CarSUV5, Label: "SUV 5 Seater"},
			{ID: CarSUV7, Label: "SUV 7 Seater"},
		},
		Slots: []Slot{
			{ID: "slot1", Label: "9am - 11am"},
			{ID: "slot2", Label: "11am - 1pm"},
			{ID: "slot3", Label: "1pm - 3pm"},
			{ID: "slot4", Label: "3pm - 5pm"},
		},
	}
}

// Default returns the canonical catalog.
func Default() *Catalog {
	c, err := New(DefaultDefinition())
	if err != nil {
		panic("catalog: invalid default definition: " + err.Error())
	}
	return c
}
