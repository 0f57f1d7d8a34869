// Package property describes the Property Features record: its columns, their
// enumerations, validation and the normalization applied before encoding.
package property

// Kind classifies how a column is submitted and treated.
type Kind string

const (
	// Numeric columns carry non-negative numbers.
	Numeric Kind = "numeric"
	// Flag columns carry Yes/No (or 1/0).
	Flag Kind = "flag"
	// Categorical columns carry one value of a fixed enumeration.
	Categorical Kind = "categorical"
)

// Column names, as used on the wire and by the model artifact.
const (
	BathroomCount     = "BathroomCount"
	BedroomCount      = "BedroomCount"
	Fireplace         = "Fireplace"
	Furnished         = "Furnished"
	Garden            = "Garden"
	GardenArea        = "GardenArea"
	LivingArea        = "LivingArea"
	NumberOfFacades   = "NumberOfFacades"
	SwimmingPool      = "SwimmingPool"
	Terrace           = "Terrace"
	PostalCode        = "PostalCode"
	TypeOfProperty    = "TypeOfProperty"
	Kitchen           = "Kitchen"
	PEB               = "PEB"
	StateOfBuilding   = "StateOfBuilding"
	SubtypeOfProperty = "SubtypeOfProperty"
	TypeOfSale        = "TypeOfSale"
	ConstructionYear  = "ConstructionYear"
	District          = "District"
)

// Column describes one attribute of the record.
type Column struct {
	Name    string   `json:"name"`
	Label   string   `json:"label"`
	Kind    Kind     `json:"kind"`
	Encoded bool     `json:"target_encoded"`
	Options []string `json:"options,omitempty"`
}

// Enumerations offered by the form. The endpoint itself does not enforce membership.
var (
	YesNo = []string{"Yes", "No"}

	PropertyTypes = []string{"House", "Appartment"}

	PropertySubtypes = []string{
		"house", "appartment", "villa", "ground_floor", "duplex", "penthouse",
		"apartment_block", "mixed_use_building", "flat_studio", "service_flat",
		"mansion", "kot", "town_house", "bungalow", "loft", "coubntry_cottage",
		"exeptional_property", "farmhouse", "triplex", "chalet", "castle",
		"manor_house", "pavillon", "other_property",
	}

	SaleTypes = []string{"residential_sale", "residential_monthly_rent"}

	KitchenStates = []string{
		"NOT_INSTALLED", "INSTALLED", "USA_INSTALLED", "SEMI_EQUIPPED",
		"USA_SEMI_EQUIPPED", "HYPER_EQUIPPED", "USA_HYPER_EQUIPPED",
	}

	EnergyRatings = []string{"A++", "A+", "A", "B", "C", "D", "E", "F", "G"}

	BuildingStates = []string{
		"AS_NEW", "GOOD", "TO_BE_DONE_UP", "TO_RENOVATE", "JUST_RENOVATED", "TO_RESTORE",
	}

	Districts = []string{
		"Brussels", "Antwerp", "Liège", "Brugge", "Gent", "Halle-Vilvoorde", "Turnhout",
		"Nivelles", "Leuven", "Oostend", "Kortrijk", "Aalst", "Mechelen", "Namur",
		"Charleroi", "Hasselt", "Veurne", "Sint-Niklaas", "Mons", "Verviers", "Roeselare",
		"Dendermonde", "Tournai", "Oudenaarde", "Soignies", "Tielt", "Thuin", "Dinant",
		"Maaseik", "Eeklo", "Tongeren", "Mouscron", "Huy", "Ath", "Diksmuide",
		"Marche-en-Famenne", "Arlon", "Waremme", "Neufchâteau", "Virton", "Ieper",
		"Bastogne", "Philippeville",
	}
)

// schema lists the columns in model-input order.
var schema = []Column{
	{Name: BathroomCount, Label: "BathroomCount", Kind: Numeric},
	{Name: BedroomCount, Label: "BedroomCount", Kind: Numeric},
	{Name: Fireplace, Label: "Fireplace", Kind: Flag, Options: YesNo},
	{Name: Furnished, Label: "Furnished", Kind: Flag, Options: YesNo},
	{Name: Garden, Label: "Garden", Kind: Flag, Options: YesNo},
	{Name: GardenArea, Label: "Garden Area", Kind: Numeric},
	{Name: LivingArea, Label: "Living Area", Kind: Numeric},
	{Name: NumberOfFacades, Label: "Number of Facades", Kind: Numeric},
	{Name: SwimmingPool, Label: "Swimming Pool", Kind: Flag, Options: YesNo},
	{Name: Terrace, Label: "Terrace", Kind: Flag, Options: YesNo},
	{Name: PostalCode, Label: "Postal Code", Kind: Numeric},
	{Name: TypeOfProperty, Label: "TypeOfProperty", Kind: Categorical, Encoded: true, Options: PropertyTypes},
	{Name: Kitchen, Label: "Kitchen", Kind: Categorical, Encoded: true, Options: KitchenStates},
	{Name: PEB, Label: "PEB", Kind: Categorical, Encoded: true, Options: EnergyRatings},
	{Name: StateOfBuilding, Label: "State Of Building", Kind: Categorical, Encoded: true, Options: BuildingStates},
	{Name: SubtypeOfProperty, Label: "SubtypeOfProperty", Kind: Categorical, Encoded: true, Options: PropertySubtypes},
	{Name: TypeOfSale, Label: "TypeOfSale", Kind: Categorical, Encoded: true, Options: SaleTypes},
	{Name: ConstructionYear, Label: "Construction Year", Kind: Numeric, Encoded: true},
	{Name: District, Label: "District", Kind: Categorical, Encoded: true, Options: Districts},
}

// formOrder is the order in which the form presents the columns.
var formOrder = []string{
	TypeOfProperty, SubtypeOfProperty, TypeOfSale, LivingArea, PostalCode,
	BathroomCount, BedroomCount, Furnished, Fireplace, Kitchen, PEB,
	StateOfBuilding, NumberOfFacades, Garden, GardenArea, SwimmingPool,
	Terrace, ConstructionYear, District,
}

// Schema returns a copy of all columns in model-input order.
func Schema() []Column {
	out := make([]Column, len(schema))
	copy(out, schema)
	return out
}

// FormColumns returns the columns in the order the form shows them.
func FormColumns() []Column {
	out := make([]Column, 0, len(formOrder))
	for _, name := range formOrder {
		c, _ := Lookup(name)
		out = append(out, c)
	}
	return out
}

// Names returns the column names in model-input order.
func Names() []string {
	out := make([]string, len(schema))
	for i, c := range schema {
		out[i] = c.Name
	}
	return out
}

// EncodedColumns returns the columns replaced by the target encoder.
func EncodedColumns() []string {
	var out []string
	for _, c := range schema {
		if c.Encoded {
			out = append(out, c.Name)
		}
	}
	return out
}

// Lookup finds a column by name.
func Lookup(name string) (Column, bool) {
	for _, c := range schema {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}
