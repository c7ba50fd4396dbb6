package catalog

// Default returns the built-in equipment catalog used when no catalog file is
// configured.
func Default() *Catalog {
	return MustNew(defaultDefinitions())
}

func controls(st, sw, sen, rel, va int) Controls {
	return Controls{Starter: st, Switch: sw, Sensor: sen, Relay: rel, Valve: va}
}

func sized(typ, name string, model PricingModel, min, max, rate float64, c Controls, presets ...Preset) EquipmentType {
	return EquipmentType{
		ID:              typ + "-1",
		Type:            typ,
		Name:            name,
		PricingModel:    model,
		Range:           &SpecRange{Min: min, Max: max},
		UnitRate:        rate,
		DefaultControls: c,
		Presets:         presets,
	}
}

func fixed(typ, name string, base float64, c Controls, options ...Option) EquipmentType {
	return EquipmentType{
		ID:              typ + "-1",
		Type:            typ,
		Name:            name,
		PricingModel:    Fixed,
		UnitRate:        base,
		DefaultControls: c,
		Options:         options,
	}
}

func defaultDefinitions() []EquipmentType {
	none := controls(0, 0, 0, 0, 0)
	return []EquipmentType{
		sized("rtu", "Rooftop Unit (RTU)", PerTon, 1, 50, 2800, controls(1, 1, 0, 0, 0)),
		sized("boiler", "Boiler", PerBTU, 100000, 6500000, 0.04, controls(0, 5, 0, 0, 0)),
		sized("chiller", "Chiller", PerTon, 20, 500, 3500, controls(2, 2, 4, 3, 2)),
		sized("ahu", "Air Handling Unit (AHU)", PerHP, 2, 100, 1000, controls(0, 5, 0, 0, 0),
			Preset{2, 12000}, Preset{5, 19000}, Preset{15, 29000},
			Preset{30, 55000}, Preset{50, 70000}, Preset{100, 100000}),
		sized("pump", "Base Mount Pump", PerHP, 0.33, 25, 1000, none,
			Preset{0.33, 750}, Preset{0.5, 1000}, Preset{1, 1000}, Preset{1.5, 1500},
			Preset{2, 2500}, Preset{3, 4500}, Preset{5, 7500}, Preset{10, 14000},
			Preset{15, 15000}, Preset{20, 22000}, Preset{25, 26000}),
		sized("fan", "Fan", PerHP, 0.25, 50, 950, controls(1, 1, 1, 1, 0)),
		sized("cooling-tower", "Cooling Tower", PerHP, 10, 30, 2000, none,
			Preset{10, 14000}, Preset{25, 26000}, Preset{30, 60000}),
		fixed("vav", "VAV Box", 1500, controls(0, 1, 2, 1, 1)),
		sized("compressor", "Air Compressor", PerHP, 5, 7.5, 1500, controls(1, 1, 1, 1, 1),
			Preset{5, 7500}, Preset{7.5, 10000}),
		sized("exhaust-fan", "Exhaust Fan", PerHP, 0.08, 15, 1500, controls(0, 1, 0, 0, 0),
			Preset{0.08, 450}, Preset{0.25, 850}, Preset{0.33, 1000}, Preset{0.5, 1200},
			Preset{1, 1950}, Preset{2, 2700}, Preset{3, 4700}, Preset{5, 7700}, Preset{15, 15000}),
		fixed("heat-exchanger", "Heat Exchanger", 8500, controls(0, 0, 2, 0, 2)),
		fixed("humidifier", "Humidifier", 1500, none),
		sized("air-drier", "Air Drier", PerHP, 1, 1, 2000, none, Preset{1, 2000}),
		fixed("co-monitor", "CO Monitor", 3000, none),
		fixed("gas-monitor", "Gas Monitor", 5000, none),
		fixed("ductless-split", "Ductless Split", 3000, controls(1, 1, 0, 0, 0),
			Option{"Standard", 3000}, Option{"Premium", 6000}),
		fixed("dust-collector", "Dust Collector", 5000, controls(0, 0, 0, 0, 2)),
		fixed("fan-coil", "Fan Coil Unit", 1000, none),
		fixed("force-flow", "Force Flow Convector", 900, none),
		fixed("furnace", "Furnace", 4500, none),
		sized("split-system", "Split System", PerTon, 1, 20, 2800, controls(1, 1, 0, 0, 0)),
		sized("condensing-unit", "Condensing Unit", PerTon, 1, 20, 2000, controls(1, 1, 0, 0, 0)),
		fixed("hepa-unit", "HEPA Unit (Residential)", 2000, none),
		fixed("hrv", "HRV (Commercial)", 2000, none,
			Option{"Small", 2000}, Option{"Medium", 6000}, Option{"Large", 8000}),
		fixed("ice-machine", "Ice Machine", 500, none,
			Option{"Small", 500}, Option{"Medium", 1500}, Option{"Large", 3000}),
		sized("makeup-air", "Make Up Air", PerHP, 3, 40, 1500, controls(1, 1, 1, 1, 1),
			Preset{3, 15000}, Preset{5, 20000}, Preset{7.5, 25000},
			Preset{10, 35000}, Preset{25, 45000}, Preset{40, 65000}),
		fixed("radiant-heater", "Radiant Tube Heaters", 4000, controls(1, 1, 0, 0, 0),
			Option{"Less than 60 ft", 4000}, Option{"60 ft or more", 5000}),
		fixed("strip-heater", "Strip Heaters (Electric)", 2000, controls(0, 1, 0, 0, 0)),
		fixed("unit-heater", "Unit Heaters", 3500, controls(1, 1, 0, 0, 0)),
		fixed("water-heater", "Water Heaters (Hot Water)", 1200, controls(1, 1, 0, 0, 0),
			Option{"25 gallons", 900}, Option{"40 gallons", 1200}, Option{"100 gallons", 12000}),
		fixed("tankless-water-heater", "Water Heaters (Electric - Tankless)", 800, controls(1, 1, 0, 0, 0),
			Option{"19 gallons", 800}, Option{"200,000 BTU Tankless", 6000}),
	}
}
