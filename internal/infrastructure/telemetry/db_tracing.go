package telemetry

import (
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RegisterDBTracing installs the otelgorm plugin so each query becomes a
// child span of the request. Query variables are left out of the span.
func RegisterDBTracing(db *gorm.DB, driver string, logger *zap.Logger) error {
	system := "postgresql"
	if driver == "sqlite" {
		system = "sqlite"
	}
	plugin := otelgorm.NewPlugin(
		otelgorm.WithDBName(system),
		otelgorm.WithoutQueryVariables(),
	)
	if err := db.Use(plugin); err != nil {
		return err
	}
	if logger != nil {
		logger.Info("Database tracing enabled", zap.String("db_system", system))
	}
	return nil
}
