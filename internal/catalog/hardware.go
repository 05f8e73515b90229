package catalog

import "github.com/Simplici0/fabquote/internal/domain"

// HardwareSpec is a bought-in component and its supplier offers.
type HardwareSpec struct {
	Category string
	Options  []domain.PricingOption
}

var hardwareCatalog = map[string]HardwareSpec{
	"heavy_duty_weld_hinge_pair": {
		Category: "hinge",
		Options: []domain.PricingOption{
			{Supplier: "McMaster-Carr", Price: 125.00, LeadDays: 3},
			{Supplier: "Amazon", Price: 95.00, LeadDays: 5},
			{Supplier: "Grainger", Price: 140.00, LeadDays: 2},
		},
	},
	"standard_weld_hinge_pair": {
		Category: "hinge",
		Options: []domain.PricingOption{
			{Supplier: "McMaster-Carr", Price: 60.00, LeadDays: 3},
			{Supplier: "Amazon", Price: 45.00, LeadDays: 5},
			{Supplier: "Grainger", Price: 65.00, LeadDays: 2},
		},
	},
	"ball_bearing_hinge_pair": {
		Category: "hinge",
		Options: []domain.PricingOption{
			{Supplier: "McMaster-Carr", Price: 150.00, LeadDays: 3},
			{Supplier: "Amazon", Price: 120.00, LeadDays: 5},
			{Supplier: "Grainger", Price: 165.00, LeadDays: 2},
		},
	},
	"spring_hinge_pair": {
		Category: "hinge",
		Options: []domain.PricingOption{
			{Supplier: "McMaster-Carr", Price: 75.00, LeadDays: 3},
			{Supplier: "Amazon", Price: 55.00, LeadDays: 5},
			{Supplier: "Grainger", Price: 80.00, LeadDays: 2},
		},
	},
	"gravity_latch": {
		Category: "latch",
		Options: []domain.PricingOption{
			{Supplier: "McMaster-Carr", Price: 35.00, LeadDays: 3},
			{Supplier: "Amazon", Price: 28.00, LeadDays: 5},
			{Supplier: "Grainger", Price: 40.00, LeadDays: 2},
		},
	},
	"magnetic_latch": {
		Category: "latch",
		Options: []domain.PricingOption{
			{Supplier: "McMaster-Carr", Price: 50.00, LeadDays: 3},
			{Supplier: "Amazon", Price: 38.00, LeadDays: 5},
			{Supplier: "Grainger", Price: 55.00, LeadDays: 2},
		},
	},
	"keyed_deadbolt": {
		Category: "latch",
		Options: []domain.PricingOption{
			{Supplier: "McMaster-Carr", Price: 65.00, LeadDays: 3},
			{Supplier: "Amazon", Price: 50.00, LeadDays: 5},
			{Supplier: "Grainger", Price: 75.00, LeadDays: 2},
		},
	},
	"pool_code_latch": {
		Category: "latch",
		Options: []domain.PricingOption{
			{Supplier: "McMaster-Carr", Price: 85.00, LeadDays: 3},
			{Supplier: "Amazon", Price: 70.00, LeadDays: 5},
			{Supplier: "Grainger", Price: 90.00, LeadDays: 2},
		},
	},
	"electric_strike": {
		Category: "latch",
		Options: []domain.PricingOption{
			{Supplier: "McMaster-Carr", Price: 120.00, LeadDays: 3},
			{Supplier: "Amazon", Price: 95.00, LeadDays: 5},
			{Supplier: "Grainger", Price: 135.00, LeadDays: 2},
		},
	},
	"liftmaster_la412": {
		Category: "operator",
		Options: []domain.PricingOption{
			{Supplier: "LiftMaster Dealer", Price: 1350.00, PartNumber: "LA412", LeadDays: 5},
			{Supplier: "Amazon", Price: 1450.00, LeadDays: 7},
			{Supplier: "Gate Depot", Price: 1295.00, PartNumber: "LA412", LeadDays: 4},
		},
	},
	"us_automatic_patriot": {
		Category: "operator",
		Options: []domain.PricingOption{
			{Supplier: "US Automatic Dealer", Price: 950.00, PartNumber: "Patriot", LeadDays: 5},
			{Supplier: "Amazon", Price: 1050.00, LeadDays: 7},
			{Supplier: "Gate Depot", Price: 895.00, LeadDays: 4},
		},
	},
	"liftmaster_rsw12u": {
		Category: "operator",
		Options: []domain.PricingOption{
			{Supplier: "LiftMaster Dealer", Price: 1100.00, PartNumber: "RSW12U", LeadDays: 5},
			{Supplier: "Amazon", Price: 1200.00, LeadDays: 7},
			{Supplier: "Gate Depot", Price: 1050.00, PartNumber: "RSW12U", LeadDays: 4},
		},
	},
	"liftmaster_csw24u": {
		Category: "operator",
		Options: []domain.PricingOption{
			{Supplier: "LiftMaster Dealer", Price: 1800.00, PartNumber: "CSW24U", LeadDays: 5},
			{Supplier: "Amazon", Price: 1950.00, LeadDays: 7},
			{Supplier: "Gate Depot", Price: 1750.00, PartNumber: "CSW24U", LeadDays: 4},
		},
	},
	"roller_carriage_standard": {
		Category: "roller_carriage",
		Options: []domain.PricingOption{
			{Supplier: "McMaster-Carr", Price: 195.00, LeadDays: 3},
			{Supplier: "Amazon", Price: 165.00, LeadDays: 5},
			{Supplier: "Grainger", Price: 220.00, LeadDays: 2},
		},
	},
	"roller_carriage_heavy": {
		Category: "roller_carriage",
		Options: []domain.PricingOption{
			{Supplier: "McMaster-Carr", Price: 325.00, LeadDays: 3},
			{Supplier: "Amazon", Price: 280.00, LeadDays: 5},
			{Supplier: "Grainger", Price: 370.00, LeadDays: 2},
		},
	},
	"gate_stop": {
		Category: "hardware",
		Options: []domain.PricingOption{
			{Supplier: "McMaster-Carr", Price: 15.00, LeadDays: 3},
			{Supplier: "Amazon", Price: 12.00, LeadDays: 5},
			{Supplier: "Grainger", Price: 18.00, LeadDays: 2},
		},
	},
	"hydraulic_closer": {
		Category: "hardware",
		Options: []domain.PricingOption{
			{Supplier: "McMaster-Carr", Price: 185.00, LeadDays: 3},
			{Supplier: "Amazon", Price: 150.00, LeadDays: 5},
			{Supplier: "Grainger", Price: 200.00, LeadDays: 2},
		},
	},
	"cane_bolt": {
		Category: "hardware",
		Options: []domain.PricingOption{
			{Supplier: "McMaster-Carr", Price: 35.00, LeadDays: 3},
			{Supplier: "Amazon", Price: 25.00, LeadDays: 5},
			{Supplier: "Grainger", Price: 40.00, LeadDays: 2},
		},
	},
	"surface_drop_rod": {
		Category: "hardware",
		Options: []domain.PricingOption{
			{Supplier: "McMaster-Carr", Price: 45.00, LeadDays: 3},
			{Supplier: "Amazon", Price: 35.00, LeadDays: 5},
			{Supplier: "Grainger", Price: 50.00, LeadDays: 2},
		},
	},
	"flush_bolt": {
		Category: "hardware",
		Options: []domain.PricingOption{
			{Supplier: "McMaster-Carr", Price: 55.00, LeadDays: 3},
			{Supplier: "Amazon", Price: 42.00, LeadDays: 5},
			{Supplier: "Grainger", Price: 60.00, LeadDays: 2},
		},
	},
	"surface_mount_flange": {
		Category: "railing_mount",
		Options: []domain.PricingOption{
			{Supplier: "McMaster-Carr", Price: 18.00, LeadDays: 3},
			{Supplier: "Amazon", Price: 14.00, LeadDays: 5},
			{Supplier: "Grainger", Price: 22.00, LeadDays: 2},
		},
	},
	"cable_tensioner": {
		Category: "railing_hardware",
		Options: []domain.PricingOption{
			{Supplier: "McMaster-Carr", Price: 22.00, LeadDays: 3},
			{Supplier: "Amazon", Price: 18.00, LeadDays: 5},
			{Supplier: "CableRail", Price: 25.00, LeadDays: 7},
		},
	},
	"cable_end_fitting": {
		Category: "railing_hardware",
		Options: []domain.PricingOption{
			{Supplier: "McMaster-Carr", Price: 8.00, LeadDays: 3},
			{Supplier: "Amazon", Price: 6.00, LeadDays: 5},
			{Supplier: "CableRail", Price: 10.00, LeadDays: 7},
		},
	},
	"leveling_foot": {
		Category: "furniture",
		Options: []domain.PricingOption{
			{Supplier: "McMaster-Carr", Price: 5.00, LeadDays: 3},
			{Supplier: "Amazon", Price: 3.50, LeadDays: 5},
			{Supplier: "Grainger", Price: 6.00, LeadDays: 2},
		},
	},
	"hasp_padlock": {
		Category: "latch",
		Options: []domain.PricingOption{
			{Supplier: "McMaster-Carr", Price: 18.00, LeadDays: 3},
			{Supplier: "Amazon", Price: 12.00, LeadDays: 5},
			{Supplier: "Grainger", Price: 20.00, LeadDays: 2},
		},
	},
	"d_ring_shackle": {
		Category: "offroad",
		Options: []domain.PricingOption{
			{Supplier: "Amazon", Price: 25.00, LeadDays: 5},
			{Supplier: "Summit Racing", Price: 32.00, LeadDays: 4},
			{Supplier: "4 Wheel Parts", Price: 35.00, LeadDays: 3},
		},
	},
	"led_module_kit": {
		Category: "electrical",
		Options: []domain.PricingOption{
			{Supplier: "Amazon", Price: 85.00, LeadDays: 5},
			{Supplier: "SuperBright LEDs", Price: 110.00, LeadDays: 4},
			{Supplier: "Grainger", Price: 125.00, LeadDays: 2},
		},
	},
	"burner_ring_kit": {
		Category: "gas",
		Options: []domain.PricingOption{
			{Supplier: "Amazon", Price: 120.00, LeadDays: 5},
			{Supplier: "Warming Trends", Price: 185.00, LeadDays: 7},
			{Supplier: "Grainger", Price: 160.00, LeadDays: 2},
		},
	},
	"exhaust_vband_clamp": {
		Category: "exhaust",
		Options: []domain.PricingOption{
			{Supplier: "Amazon", Price: 22.00, LeadDays: 5},
			{Supplier: "McMaster-Carr", Price: 28.00, LeadDays: 3},
			{Supplier: "Summit Racing", Price: 32.00, LeadDays: 4},
		},
	},
	"exhaust_hanger": {
		Category: "exhaust",
		Options: []domain.PricingOption{
			{Supplier: "Amazon", Price: 8.00, LeadDays: 5},
			{Supplier: "McMaster-Carr", Price: 12.00, LeadDays: 3},
			{Supplier: "Summit Racing", Price: 14.00, LeadDays: 4},
		},
	},
	"trailer_coupler": {
		Category: "trailer",
		Options: []domain.PricingOption{
			{Supplier: "Amazon", Price: 55.00, LeadDays: 5},
			{Supplier: "McMaster-Carr", Price: 65.00, LeadDays: 3},
			{Supplier: "Grainger", Price: 70.00, LeadDays: 2},
		},
	},
	"safety_chain_pair": {
		Category: "trailer",
		Options: []domain.PricingOption{
			{Supplier: "Amazon", Price: 25.00, LeadDays: 5},
			{Supplier: "McMaster-Carr", Price: 30.00, LeadDays: 3},
			{Supplier: "Grainger", Price: 35.00, LeadDays: 2},
		},
	},
	"tongue_jack": {
		Category: "trailer",
		Options: []domain.PricingOption{
			{Supplier: "Amazon", Price: 45.00, LeadDays: 5},
			{Supplier: "McMaster-Carr", Price: 55.00, LeadDays: 3},
			{Supplier: "Grainger", Price: 60.00, LeadDays: 2},
		},
	},
}
