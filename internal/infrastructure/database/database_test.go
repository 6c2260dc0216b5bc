package database

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"rpgserver/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestDSN(t *testing.T) {
	mysqlCfg := &config.DatabaseConfig{
		Driver: "mysql", Host: "db", Port: 3306, User: "u", Password: "p", Name: "rpg",
	}
	assert.Equal(t, "u:p@tcp(db:3306)/rpg?charset=utf8mb4&parseTime=True&loc=Local", DSN(mysqlCfg))

	pgCfg := &config.DatabaseConfig{
		Driver: "postgres", Host: "db", Port: 5432, User: "u", Password: "p", Name: "rpg", SSLMode: "disable",
	}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=rpg sslmode=disable TimeZone=UTC", DSN(pgCfg))

	explicit := &config.DatabaseConfig{Driver: "postgres", DSN: "postgres://x"}
	assert.Equal(t, "postgres://x", DSN(explicit))
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(&config.DatabaseConfig{Driver: "sqlite"}, slog.Default())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sqlite")
}

func TestGormLogger_Trace(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	l := NewGormLogger(logger, 10*time.Millisecond)

	fc := func() (string, int64) { return "SELECT 1", 1 }

	l.Trace(context.Background(), time.Now(), fc, gorm.ErrRecordNotFound)
	assert.Empty(t, buf.String(), "record not found is not an error")

	l.Trace(context.Background(), time.Now(), fc, errors.New("boom"))
	assert.Contains(t, buf.String(), "SQL 执行失败")
	assert.Contains(t, buf.String(), "boom")

	buf.Reset()
	l.Trace(context.Background(), time.Now().Add(-time.Second), fc, nil)
	assert.Contains(t, buf.String(), "慢查询")

	buf.Reset()
	l.LogMode(gormlogger.Silent).Trace(context.Background(), time.Now(), fc, errors.New("boom"))
	assert.Empty(t, buf.String())
}
