package domain

// World-wide average carbon intensity of electricity generation, used when
// neither a live provider nor a country-level average can serve a resolution.
//
// Source: IEA, Electricity 2025, emissions chapter (2024 global average).
// https://www.iea.org/reports/electricity-2025/emissions
const (
	// WorldAverageIntensity is the global average in gCO2eq/kWh.
	WorldAverageIntensity = 445.0

	// WorldAverageIntensityYear is the reference year the average was
	// published for. Rendered alongside the value in fallback messages.
	WorldAverageIntensityYear = 2024
)
