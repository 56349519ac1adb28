package gormdb

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sousamj2/explicolivais/internal/domain/entity"
	"github.com/sousamj2/explicolivais/pkg/database"
)

// newTestDB opens a private in-memory sqlite database with the full schema
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, database.AutoMigrate(db))
	return db
}

func newQuestion(number, year int) entity.Question {
	return entity.Question{
		UUID:            uuid.NewString(),
		Number:          number,
		Year:            year,
		Formatting:      entity.FormattingText,
		PossibleAnswers: "Não sei, a, b",
		ScoringSystem:   "0,5,-2",
	}
}
