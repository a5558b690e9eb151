package main

import (
	_ "github.com/denisenkom/go-mssqldb"
	_ "github.com/duckdb/duckdb-go/v2"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	_ "github.com/sijms/go-ora/v2"

	"warehouse-sync/cmd"
)

func main() {
	cmd.Execute()
}
