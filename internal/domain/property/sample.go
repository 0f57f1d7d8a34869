package property

// Sample returns a fully filled record: a 120 m² house in Brussels.
func Sample() *Features {
	num := func(f float64) *float64 { return &f }
	txt := func(s string) *Value { v := Text(s); return &v }
	return &Features{
		BathroomCount:     num(1),
		BedroomCount:      num(3),
		Fireplace:         txt("No"),
		Furnished:         txt("No"),
		Garden:            txt("Yes"),
		GardenArea:        num(50),
		LivingArea:        num(120),
		NumberOfFacades:   num(2),
		SwimmingPool:      txt("No"),
		Terrace:           txt("Yes"),
		PostalCode:        num(1000),
		TypeOfProperty:    txt("House"),
		Kitchen:           txt("INSTALLED"),
		PEB:               txt("C"),
		StateOfBuilding:   txt("GOOD"),
		SubtypeOfProperty: txt("house"),
		TypeOfSale:        txt("residential_sale"),
		ConstructionYear:  num(1990),
		District:          txt("Brussels"),
	}
}

// Defaults returns the form's initial values: the first option of every
// select and zero for numbers.
func Defaults() Record {
	rec := make(Record, len(schema))
	for _, c := range schema {
		if len(c.Options) > 0 {
			rec[c.Name] = Text(c.Options[0])
			continue
		}
		rec[c.Name] = Number(0)
	}
	return rec
}
