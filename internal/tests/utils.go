package tests

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/jpfraneto/rebrnd-backend-sub000/internal/sqlite"
	"gorm.io/gorm"
)

// GetInMemorySqliteDatabaseConnection returns a gorm connection to a fresh,
// uniquely named in-memory sqlite database. Each call gets its own database so
// tests never observe each other's rows.
func GetInMemorySqliteDatabaseConnection() (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := sqlite.NewGormSqliteFromSqlite(sqlite.NewSqlite(dsn))
	if err != nil {
		return nil, err
	}
	return db, nil
}
