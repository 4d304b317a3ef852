package noise

// ClimateScale is the number of blocks per torus period of the climate axes.
const ClimateScale = 256.0

// Seed offsets that decorrelate the axes.
const (
	elevationSalt   = 1347
	temperatureSalt = 2349
	moistureSalt    = 3243
	detailSalt      = 7919
)

// Provider holds every noise axis of one world seed.
type Provider struct {
	seed        uint64
	terrain     *Fbm
	elevation   *Fbm
	temperature *Fbm
	moisture    *Fbm
	detail      *Perlin
}

// NewProvider derives all axes from seed.
func NewProvider(seed uint64) *Provider {
	s := uint32(seed)
	climate := []float64{1, 2, 2, 1}
	return &Provider{
		seed:        seed,
		terrain:     NewFbm(s, []float64{-4, 1, 1, 0}),
		elevation:   NewFbm(s^elevationSalt, climate),
		temperature: NewFbm(s^temperatureSalt, climate),
		moisture:    NewFbm(s^moistureSalt, climate),
		detail:      NewPerlin(int64(seed ^ detailSalt)),
	}
}

// Seed returns the world seed.
func (p *Provider) Seed() uint64 { return p.seed }

// Terrain is the base terrain source handed to biome surfaces.
func (p *Provider) Terrain() *Fbm { return p.terrain }

// Detail is the Perlin detail source handed to biome surfaces.
func (p *Provider) Detail() *Perlin { return p.detail }

// Climate samples elevation, temperature and moisture at a world point,
// each mapped into [0, 5].
func (p *Provider) Climate(x, z float64) (elevation, temperature, moisture float64) {
	u, v := x/ClimateScale, z/ClimateScale
	toRange := func(n float64) float64 { return MapRange(-1.5, 1.5, 0, 5, n) }
	return toRange(Torus(p.elevation, u, v)),
		toRange(Torus(p.temperature, u, v)),
		toRange(Torus(p.moisture, u, v))
}
