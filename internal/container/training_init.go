package container

import (
	"productsim/training"
)

// initTrainer создает тренер и восстанавливает корпус из хранилища.
// Модели не сохраняются между запусками: после рестарта нужно обучить заново.
func (c *Container) initTrainer() error {
	cfg := c.Config

	opts := []training.TrainerOption{
		training.WithMinExamples(cfg.MinTrainingExamples),
		training.WithValidationFraction(cfg.ValidationFraction),
		training.WithWorkingThreshold(cfg.SimilarityThreshold),
		training.WithLogger(c.Logger),
	}
	if c.TrainingDB != nil {
		opts = append(opts, training.WithStore(c.TrainingDB))
	}

	trainer, err := training.NewTrainer(c.Calculator, opts...)
	if err != nil {
		return err
	}
	if _, err := trainer.LoadFromStore(); err != nil {
		return err
	}
	c.Trainer = trainer
	return nil
}
