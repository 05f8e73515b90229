package catalog

// Market-average fallbacks used when a key is absent from every table.
const (
	MarketPricePerFoot  = 3.50
	MarketPricePerSqFt  = 2.03
	MarketHardwarePrice = 50.00
	DefaultWeightPerFt  = 2.0
	MildSteelDensity    = 0.2833
)

// Price per linear foot, market averages.
var pricePerFoot = map[string]float64{
	"sq_tube_2x2_11ga":     3.50,
	"sq_tube_2x2_14ga":     2.75,
	"sq_tube_2x2_16ga":     2.25,
	"sq_tube_1.5x1.5_11ga": 2.75,
	"sq_tube_1.5x1.5_14ga": 2.25,
	"sq_tube_1.5x1.5_16ga": 1.85,
	"sq_tube_1x1_11ga":     1.75,
	"sq_tube_1x1_14ga":     1.50,
	"sq_tube_1x1_16ga":     1.25,
	"sq_tube_2.5x2.5_11ga": 4.50,
	"sq_tube_3x3_11ga":     5.50,
	"sq_tube_4x4_11ga":     7.50,

	"rect_tube_2x4_11ga": 5.50,
	"rect_tube_2x3_11ga": 4.50,
	"rect_tube_2x1_11ga": 2.50,

	"round_tube_1.5_11ga":  4.65,
	"round_tube_1.5_14ga":  3.50,
	"round_tube_1.25_14ga": 3.00,
	"round_tube_2_11ga":    5.50,
	"dom_tube_1.75x0.120":  6.25,

	"sq_bar_0.75":  1.50,
	"sq_bar_0.625": 1.10,
	"sq_bar_0.5":   0.85,
	"sq_bar_1.0":   2.25,

	"round_bar_0.5":   0.85,
	"round_bar_0.625": 1.10,
	"round_bar_0.75":  1.50,

	"flat_bar_1x0.25":    1.75,
	"flat_bar_1.5x0.25":  2.50,
	"flat_bar_1x0.1875":  1.40,
	"flat_bar_0.75x0.25": 1.35,
	"flat_bar_2x0.25":    3.40,
	"flat_bar_3x0.25":    4.95,

	"angle_1.5x1.5x0.125": 1.60,
	"angle_2x2x0.1875":    2.80,
	"angle_2x2x0.25":      3.50,

	"channel_6x8.2": 8.20,
	"channel_4x5.4": 5.40,

	"pipe_4_sch40":   6.00,
	"pipe_6_sch40":   12.00,
	"pipe_3.5_sch40": 5.00,
	"pipe_3_sch40":   4.00,
}

// Price per square foot for sheet and expanded metal.
var pricePerSqFt = map[string]float64{
	"expanded_metal_13ga": 1.40,
	"expanded_metal_16ga": 1.10,
	"expanded_metal_10ga": 1.90,
	"sheet_11ga":          2.65,
	"sheet_14ga":          2.03,
	"sheet_16ga":          1.56,
}

// Per-unit prices for miscellaneous items.
var pricePerUnit = map[string]float64{
	"concrete_per_cuyd": 175.00,
	"post_cap_4x4":      8.00,
	"post_cap_6x6":      12.00,
}

// Stock weights in lb/ft.
var stockWeights = map[string]float64{
	"sq_tube_1x1_11ga":       0.857,
	"sq_tube_1x1_14ga":       0.700,
	"sq_tube_1x1_16ga":       0.581,
	"sq_tube_1.25x1.25_11ga": 1.147,
	"sq_tube_1.5x1.5_11ga":   1.403,
	"sq_tube_1.5x1.5_14ga":   1.120,
	"sq_tube_1.5x1.5_16ga":   0.960,
	"sq_tube_2x2_11ga":       1.951,
	"sq_tube_2x2_14ga":       1.600,
	"sq_tube_2x2_16ga":       1.316,
	"sq_tube_2.5x2.5_11ga":   2.495,
	"sq_tube_3x3_11ga":       3.090,
	"sq_tube_4x4_11ga":       4.180,

	"rect_tube_4x2_11ga":   2.799,
	"rect_tube_2x4_11ga":   2.799,
	"rect_tube_3x2_11ga":   2.150,
	"rect_tube_2x3_11ga":   2.150,
	"rect_tube_3x1.5_11ga": 1.840,
	"rect_tube_2x1_11ga":   1.140,

	"round_tube_1.5_11ga":  1.769,
	"round_tube_1.5_14ga":  1.140,
	"round_tube_1.25_14ga": 0.940,
	"round_tube_2_11ga":    2.390,
	"dom_tube_1.75x0.120":  2.090,

	"sq_bar_0.5":   0.850,
	"sq_bar_0.625": 1.328,
	"sq_bar_0.75":  1.913,
	"sq_bar_1.0":   3.400,

	"round_bar_0.5":   0.668,
	"round_bar_0.625": 1.043,
	"round_bar_0.75":  1.502,

	"flat_bar_1x0.25":     0.850,
	"flat_bar_1.5x0.25":   1.275,
	"flat_bar_1x0.1875":   0.638,
	"flat_bar_0.75x0.25":  0.638,
	"flat_bar_2x0.25":     1.701,
	"flat_bar_3x0.25":     2.550,
	"flat_bar_0.1875x1.5": 0.956,
	"flat_bar_0.1875x2":   1.275,
	"flat_bar_0.1875x3":   1.913,
	"flat_bar_0.25x2":     1.701,
	"flat_bar_0.25x3":     2.550,
	"flat_bar_0.25x4":     3.400,
	"flat_bar_0.25x5":     4.253,
	"flat_bar_0.375x3":    3.826,
	"flat_bar_0.5x2":      3.400,
	"flat_bar_0.5x4":      6.800,
	"flat_bar_0.5x6":      10.200,

	"angle_1.5x1.5x0.125": 1.230,
	"angle_2x2x0.1875":    2.440,
	"angle_2x2x0.25":      3.190,
	"angle_3x3x0.25":      4.900,
	"angle_3x3x0.375":     7.200,
	"angle_4x4x0.25":      6.600,

	"channel_3x4.1": 4.100,
	"channel_4x5.4": 5.400,
	"channel_6x8.2": 8.200,

	"pipe_3_sch40":   7.580,
	"pipe_3.5_sch40": 9.110,
	"pipe_4_sch40":   10.790,
	"pipe_6_sch40":   18.970,

	"dom_round_1od_0.125wall":   1.028,
	"dom_round_1.5od_11ga":      1.769,
	"dom_round_1.5od_0.125wall": 1.611,
	"dom_round_2od_0.125wall":   2.194,
}

// Densities in lb/in³.
var densities = map[string]float64{
	"mild_steel":    MildSteelDensity,
	"stainless_304": 0.2890,
	"stainless_316": 0.2890,
	"aluminum_6061": 0.0975,
	"aluminum_5052": 0.0970,
	"dom_tubing":    MildSteelDensity,
	"square_tubing": MildSteelDensity,
	"angle_iron":    MildSteelDensity,
	"flat_bar":      MildSteelDensity,
	"plate":         MildSteelDensity,
}

// Sheet gauge to thickness in inches.
var gaugeThickness = map[string]float64{
	"10ga": 0.1345,
	"11ga": 0.1196,
	"12ga": 0.1046,
	"14ga": 0.0747,
	"16ga": 0.0598,
	"18ga": 0.0478,
	"20ga": 0.0359,
}
