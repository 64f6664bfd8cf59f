// Package sqlstore は database/sql 経由の永続 Todo ストア。
// MySQL / PostgreSQL / SQLite を Dialect で切り替える。
package sqlstore

import (
	"fmt"
	"strconv"
	"strings"
)

// Dialect は RDB ごとの差分（ドライバ名・プレースホルダ・採番方法・DDL）をまとめたもの。
type Dialect struct {
	// Name は設定値（mysql / postgres / sqlite）。
	Name string
	// DriverName は sql.Open に渡すドライバ名。
	DriverName string

	// dollarPlaceholders が true なら ? を $1, $2... に書き換える。
	dollarPlaceholders bool
	// returningID が true なら INSERT ... RETURNING id で ID を受け取る（LastInsertId 非対応のため）。
	returningID bool

	createTable string
}

var (
	MySQL = Dialect{
		Name:       "mysql",
		DriverName: "mysql",
		createTable: `CREATE TABLE IF NOT EXISTS todos (
	id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
	title TEXT NOT NULL,
	description TEXT NOT NULL,
	completed BOOLEAN NOT NULL DEFAULT FALSE
)`,
	}

	Postgres = Dialect{
		Name:               "postgres",
		DriverName:         "pgx",
		dollarPlaceholders: true,
		returningID:        true,
		createTable: `CREATE TABLE IF NOT EXISTS todos (
	id BIGSERIAL PRIMARY KEY,
	title TEXT NOT NULL,
	description TEXT NOT NULL,
	completed BOOLEAN NOT NULL DEFAULT FALSE
)`,
	}

	// AUTOINCREMENT を付けて削除済み ID の再利用を防ぐ。
	SQLite = Dialect{
		Name:       "sqlite",
		DriverName: "sqlite",
		createTable: `CREATE TABLE IF NOT EXISTS todos (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	description TEXT NOT NULL,
	completed BOOLEAN NOT NULL DEFAULT FALSE
)`,
	}
)

// DialectFor は設定値から Dialect を引く。
func DialectFor(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "mysql":
		return MySQL, nil
	case "postgres", "postgresql", "pgx":
		return Postgres, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	default:
		return Dialect{}, fmt.Errorf("unsupported db driver %q", name)
	}
}

// rebind は ? プレースホルダを dialect に合わせて書き換える。
func (d Dialect) rebind(query string) string {
	if !d.dollarPlaceholders {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
