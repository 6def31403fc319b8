package voterquery

import "go.uber.org/zap"

type clientConfig struct {
	dumpPath     string
	maxSkipRatio float64
	batchSize    int

	driver          string
	addrs           []string
	username        string
	password        string
	keyPrefix       string
	dimensions      int
	hnswM           int
	hnswEFConstruct int

	embedder  Embedder
	generator Generator

	openaiAPIKey   string
	openaiBaseURL  string
	embeddingModel string
	chatModel      string
	temperature    float32

	topK              int
	maxListSize       int
	charBudget        int
	phoneticThreshold float64

	logger *zap.Logger
}

// Option configures the Client.
type Option func(*clientConfig)

// WithDump sets the path to the source SQL dump.
func WithDump(path string) Option {
	return func(c *clientConfig) { c.dumpPath = path }
}

// WithMaxSkipRatio bounds the tolerated fraction of malformed dump rows.
func WithMaxSkipRatio(ratio float64) Option {
	return func(c *clientConfig) { c.maxSkipRatio = ratio }
}

// WithEmbedBatchSize sets how many record texts go into one embedding call.
func WithEmbedBatchSize(n int) Option {
	return func(c *clientConfig) { c.batchSize = n }
}

// WithRedis selects the redis vector index driver.
func WithRedis(addrs []string, password string) Option {
	return func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = addrs
		c.password = password
	}
}

// WithRedisAuth sets the redis username for ACL setups.
func WithRedisAuth(username string) Option {
	return func(c *clientConfig) { c.username = username }
}

// WithKeyPrefix sets the redis key namespace.
func WithKeyPrefix(prefix string) Option {
	return func(c *clientConfig) { c.keyPrefix = prefix }
}

// WithDimensions sets the embedding vector dimensionality.
func WithDimensions(dim int) Option {
	return func(c *clientConfig) { c.dimensions = dim }
}

// WithHNSW tunes the redis HNSW index parameters.
func WithHNSW(m, efConstruct int) Option {
	return func(c *clientConfig) {
		c.hnswM = m
		c.hnswEFConstruct = efConstruct
	}
}

// WithEmbedder supplies a custom embedding provider.
func WithEmbedder(e Embedder) Option {
	return func(c *clientConfig) { c.embedder = e }
}

// WithGenerator supplies a custom generation provider.
func WithGenerator(g Generator) Option {
	return func(c *clientConfig) { c.generator = g }
}

// WithOpenAI selects the built-in OpenAI providers for embedding and
// generation. baseURL may be empty for the public API.
func WithOpenAI(apiKey, baseURL string) Option {
	return func(c *clientConfig) {
		c.openaiAPIKey = apiKey
		c.openaiBaseURL = baseURL
	}
}

// WithModels overrides the OpenAI embedding and chat models.
func WithModels(embeddingModel, chatModel string) Option {
	return func(c *clientConfig) {
		c.embeddingModel = embeddingModel
		c.chatModel = chatModel
	}
}

// WithTemperature overrides the generation sampling temperature.
func WithTemperature(t float32) Option {
	return func(c *clientConfig) { c.temperature = t }
}

// WithTopK bounds lookup and semantic retrieval size.
func WithTopK(k int) Option {
	return func(c *clientConfig) { c.topK = k }
}

// WithListCap bounds listing retrieval size.
func WithListCap(n int) Option {
	return func(c *clientConfig) { c.maxListSize = n }
}

// WithCharBudget bounds the assembled context size in bytes.
func WithCharBudget(n int) Option {
	return func(c *clientConfig) { c.charBudget = n }
}

// WithPhoneticThreshold sets the minimum phonetic similarity for a lookup hit.
func WithPhoneticThreshold(t float64) Option {
	return func(c *clientConfig) { c.phoneticThreshold = t }
}

// WithLogger attaches a zap logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *clientConfig) { c.logger = l }
}
