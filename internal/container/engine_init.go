package container

import (
	"productsim/embedding"
	"productsim/features"
	"productsim/normalization"
	"productsim/normalization/algorithms"
	"productsim/similarity"
)

// initEngine собирает цепочку нормализатор -> признаки -> эмбеддинги -> калькулятор
func (c *Container) initEngine() error {
	cfg := c.Config

	c.Normalizer = normalization.NewProductNormalizer(cfg.NormalizerCacheSize, c.Logger)

	extractorOpts := []features.ExtractorOption{features.WithLogger(c.Logger)}
	if cfg.Stemming {
		stemmer, err := algorithms.NewStemmer(cfg.StemmerLanguage, cfg.NormalizerCacheSize)
		if err != nil {
			return err
		}
		extractorOpts = append(extractorOpts, features.WithStemmer(stemmer))
		c.Logger.Info("token stemming enabled", "language", stemmer.Language())
	}
	c.Extractor = features.NewExtractor(c.Normalizer, extractorOpts...)

	opts := []similarity.Option{
		similarity.WithExtractor(c.Extractor),
		similarity.WithLogger(c.Logger),
	}

	if cfg.EmbeddingEnabled {
		engine, err := embedding.NewEngine(cfg.Embedding, c.Logger)
		if err != nil {
			return err
		}
		c.Embedding = engine
		opts = append(opts, similarity.WithEmbedding(engine))
	}

	calc, err := similarity.NewCalculator(opts...)
	if err != nil {
		return err
	}
	c.Calculator = calc
	return nil
}
