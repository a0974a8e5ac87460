package container

import (
	"productsim/database"
)

// initTrainingDB открывает SQLite хранилище размеченных пар
func (c *Container) initTrainingDB() error {
	path := c.Config.TrainingDatabasePath
	if path == "" {
		c.Logger.Warn("training database path is empty, labeled pairs are kept in memory only")
		return nil
	}

	db, err := database.NewTrainingDB(path, c.Logger)
	if err != nil {
		return err
	}
	c.TrainingDB = db
	return nil
}
