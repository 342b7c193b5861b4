package rugdex

// Option configures the embedded client.
type Option func(*clientConfig)

type clientConfig struct {
	csvPath   string
	imagesDir string

	tagger Tagger

	buildWorkers int
	imageWeight  float64
	textWeight   float64
}

// WithCatalogCSV sets the Shopify product export the client loads its
// catalog from.
func WithCatalogCSV(path string) Option {
	return func(c *clientConfig) {
		c.csvPath = path
	}
}

// WithImagesDir sets the directory holding the catalog product images.
// Relative image paths from the CSV are resolved against it.
func WithImagesDir(dir string) Option {
	return func(c *clientConfig) {
		c.imagesDir = dir
	}
}

// WithTagger overrides the part-of-speech tagger used by the query
// attribute parser. The default is the built-in English tagger.
func WithTagger(t Tagger) Option {
	return func(c *clientConfig) {
		c.tagger = t
	}
}

// WithBuildWorkers sets the number of workers embedding the catalog at
// startup.
func WithBuildWorkers(n int) Option {
	return func(c *clientConfig) {
		c.buildWorkers = n
	}
}

// WithFusionWeights overrides the visual search fusion weights. The
// defaults favor the room image over the text preference.
func WithFusionWeights(image, text float64) Option {
	return func(c *clientConfig) {
		c.imageWeight = image
		c.textWeight = text
	}
}
