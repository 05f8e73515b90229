package domain

// JobType is one of the fixed fabrication categories. It selects both the
// question tree and the calculation strategy.
type JobType string

const (
	JobCantileverGate      JobType = "cantilever_gate"
	JobSwingGate           JobType = "swing_gate"
	JobStraightRailing     JobType = "straight_railing"
	JobStairRailing        JobType = "stair_railing"
	JobRepairDecorative    JobType = "repair_decorative"
	JobOrnamentalFence     JobType = "ornamental_fence"
	JobCompleteStair       JobType = "complete_stair"
	JobSpiralStair         JobType = "spiral_stair"
	JobWindowSecurityGrate JobType = "window_security_grate"
	JobBalconyRailing      JobType = "balcony_railing"
	JobFurnitureTable      JobType = "furniture_table"
	JobUtilityEnclosure    JobType = "utility_enclosure"
	JobBollard             JobType = "bollard"
	JobRepairStructural    JobType = "repair_structural"
	JobCustomFab           JobType = "custom_fab"
	JobOffroadBumper       JobType = "offroad_bumper"
	JobRockSlider          JobType = "rock_slider"
	JobRollCage            JobType = "roll_cage"
	JobExhaustCustom       JobType = "exhaust_custom"
	JobTrailerFab          JobType = "trailer_fab"
	JobStructuralFrame     JobType = "structural_frame"
	JobFurnitureOther      JobType = "furniture_other"
	JobSignFrame           JobType = "sign_frame"
	JobLEDSignCustom       JobType = "led_sign_custom"
	JobProductFiretable    JobType = "product_firetable"
)

// AllJobTypes lists every job type in a stable order.
var AllJobTypes = []JobType{
	JobCantileverGate,
	JobSwingGate,
	JobStraightRailing,
	JobStairRailing,
	JobRepairDecorative,
	JobOrnamentalFence,
	JobCompleteStair,
	JobSpiralStair,
	JobWindowSecurityGrate,
	JobBalconyRailing,
	JobFurnitureTable,
	JobUtilityEnclosure,
	JobBollard,
	JobRepairStructural,
	JobCustomFab,
	JobOffroadBumper,
	JobRockSlider,
	JobRollCage,
	JobExhaustCustom,
	JobTrailerFab,
	JobStructuralFrame,
	JobFurnitureOther,
	JobSignFrame,
	JobLEDSignCustom,
	JobProductFiretable,
}

// Known reports whether j is one of the fixed job types.
func (j JobType) Known() bool {
	for _, k := range AllJobTypes {
		if k == j {
			return true
		}
	}
	return false
}

// IsGate reports whether j is a gate job.
func (j JobType) IsGate() bool {
	return j == JobCantileverGate || j == JobSwingGate
}
