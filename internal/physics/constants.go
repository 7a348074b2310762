package physics

const (
	// G is the gravitational constant in m^3 kg^-1 s^-2.
	G = 6.67428e-11

	// AU is one astronomical unit in metres.
	AU = 149.6e9

	// Day is one day in seconds, the default timestep.
	Day = 86400.0

	// SunMass is the solar mass in kilograms.
	SunMass = 1.98892e30

	DefaultTrailCapacity = 4096
)
