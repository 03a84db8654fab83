package db

import (
	"database/sql"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
)

const driverName = "mysql"

// DSN は接続文字列を組み立てる。
// clientFoundRows: UPDATE の RowsAffected を「変更行数」ではなく「一致行数」で返させる。
// 同値への更新も 1 行として数えないと、0 行検知による中断が誤発火する。
func DSN(c DatabaseConfig) string {
	mc := mysql.NewConfig()
	mc.User = c.Username
	mc.Passwd = c.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
	mc.DBName = c.DBName
	mc.ParseTime = true
	mc.Loc = time.UTC
	mc.ClientFoundRows = true
	mc.MultiStatements = true // goose のマイグレーション用
	mc.Timeout = 3 * time.Second
	mc.ReadTimeout = 5 * time.Second
	mc.WriteTimeout = 5 * time.Second
	return mc.FormatDSN()
}

func Connect(c DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open(driverName, DSN(c))
	if err != nil {
		return nil, fmt.Errorf("接続準備に失敗: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("DB接続に失敗: %w", err)
	}

	db.SetMaxOpenConns(40)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return db, nil
}
