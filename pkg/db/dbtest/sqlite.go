// Package dbtest opens throwaway sqlite databases carrying the manifest schema.
package dbtest

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Decimal columns are TEXT so shopspring values round-trip without float loss.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS shipping_plans (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE IF NOT EXISTS clients (
  id TEXT PRIMARY KEY,
  company_name TEXT NOT NULL,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL DEFAULT 'client',
  shipping_plan_id TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE IF NOT EXISTS shipping_rates (
  id TEXT PRIMARY KEY,
  origin TEXT NOT NULL,
  destination TEXT NOT NULL,
  shipping_plan_id TEXT,
  minimum_weight TEXT NOT NULL,
  minimum_price TEXT NOT NULL,
  additional_price_per_kg TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE IF NOT EXISTS manifest_infos (
  id TEXT PRIMARY KEY,
  date DATE NOT NULL,
  awb_no TEXT NOT NULL,
  "from" TEXT NOT NULL,
  "to" TEXT NOT NULL,
  flt TEXT,
  manifest_no TEXT NOT NULL UNIQUE,
  user_id TEXT NOT NULL,
  delivery_date DATE,
  created_at DATETIME,
  updated_at DATETIME,
  deleted_at DATETIME
);`,
	`CREATE TABLE IF NOT EXISTS manifest_lists (
  id TEXT PRIMARY KEY,
  manifest_info_id TEXT NOT NULL,
  consignor_id TEXT NOT NULL,
  consignee_name TEXT NOT NULL,
  cn_no TEXT NOT NULL,
  pcs INTEGER NOT NULL,
  kg INTEGER NOT NULL,
  gram INTEGER NOT NULL DEFAULT 0,
  total_price TEXT NOT NULL,
  discount TEXT,
  origin TEXT NOT NULL,
  destination TEXT NOT NULL,
  remarks TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_shipping_rates_lane_plan ON shipping_rates (origin, destination, shipping_plan_id) WHERE shipping_plan_id IS NOT NULL;`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_shipping_rates_lane_default ON shipping_rates (origin, destination) WHERE shipping_plan_id IS NULL;`,
	`CREATE INDEX IF NOT EXISTS idx_manifest_lists_cn_no ON manifest_lists (cn_no);`,
}

// Open returns a private in-memory database with every table created.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_loc=UTC", name)
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
		NowFunc:                func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	for _, stmt := range schema {
		if err := conn.Exec(stmt).Error; err != nil {
			t.Fatalf("apply schema: %v", err)
		}
	}
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return conn
}
