package data

import (
	"log"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// MustDB opens the audit database: MySQL when a DSN is configured, a local
// sqlite file otherwise.
func MustDB(mysqlDSN, sqlitePath string) *gorm.DB {
	if mysqlDSN != "" {
		db, err := gorm.Open(mysql.Open(mysqlDSN), &gorm.Config{})
		if err != nil {
			log.Fatalf("mysql: %v", err)
		}
		return db
	}

	db, err := gorm.Open(sqlite.Open(sqlitePath), &gorm.Config{})
	if err != nil {
		log.Fatalf("sqlite: %v", err)
	}
	return db
}

// MustRedis connects to redis from a URL.
func MustRedis(url string) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	return redis.NewClient(opt)
}
