package sweep

// DefaultPlan is the int8 PRNG-key sweep: four pinned axes and eight seeds.
func DefaultPlan() Plan {
	return Plan{
		Name:      "int8_prng",
		RunPrefix: "int8_sweep",
		Axes: Axes{
			Remat:    []string{"full"},
			Int8:     []string{"true"},
			Dtype:    []string{"bfloat16"},
			FwdQuant: []string{"false"},
			PRNGKey:  []string{"4", "5", "6", "7", "8", "9", "10", "11"},
		},
		Command: CommandTemplate{
			Setup:  "bash setup.sh MODE=stable",
			Script: "MaxText/configs/v5e/int8_sweep.sh",
		},
	}
}
