package modifier

// Generic default modifiers. These are generic values for the initial
// visible reflectance and transmittance in a model; there is no guarantee
// they match the surfaces being modeled. The reflectance or transmittance
// is encoded in the identifier so the values are visible in the output.
var (
	// Opaque surface defaults.
	GenericFloor   = Plastic{Name: "generic_floor_0.20", R: 0.2, G: 0.2, B: 0.2}
	GenericWall    = Plastic{Name: "generic_wall_0.50", R: 0.5, G: 0.5, B: 0.5}
	GenericCeiling = Plastic{Name: "generic_ceiling_0.80", R: 0.8, G: 0.8, B: 0.8}
	GenericDoor    = Plastic{Name: "generic_opaque_door_0.50", R: 0.5, G: 0.5, B: 0.5}

	// Shade defaults.
	GenericInteriorShade = Plastic{Name: "generic_interior_shade_0.50", R: 0.5, G: 0.5, B: 0.5}
	GenericExteriorShade = Plastic{Name: "generic_exterior_shade_0.35", R: 0.35, G: 0.35, B: 0.35}
	GenericContext       = Plastic{Name: "generic_context_0.20", R: 0.2, G: 0.2, B: 0.2}

	// Glazing defaults, from visible transmittance.
	GenericInteriorWindow = mustGlassFromTransmittance("generic_interior_window_vis_0.88", 0.88)
	GenericExteriorWindow = mustGlassFromTransmittance("generic_exterior_window_vis_0.64", 0.64)

	// Special-purpose modifiers used by simulation workflows.
	AirWall   = Glass{Name: "air_wall", R: 1, G: 1, B: 1}
	Black     = Plastic{Name: "black"}
	WhiteGlow = Glow{Name: "white_glow", R: 1, G: 1, B: 1, MaxRadius: 0}
)

func mustGlassFromTransmittance(name string, transmittance float64) Glass {
	g, err := GlassFromTransmittance(name, transmittance)
	if err != nil {
		panic("modifier: " + err.Error())
	}
	return g
}
