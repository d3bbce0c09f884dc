// Command dbxdemo is a small driver-agnostic exercise harness for the
// dbx library: open a session against any registered backend, run a
// query with no Into adapters supplied up front, and walk the
// dynamically described result set row by row.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	_ "github.com/caspiandb/dbx/backends/mysql"
	_ "github.com/caspiandb/dbx/backends/odbc"
	_ "github.com/caspiandb/dbx/backends/oracle"
	_ "github.com/caspiandb/dbx/backends/postgres"
	_ "github.com/caspiandb/dbx/backends/sqlite"
	"github.com/caspiandb/dbx/pkg/dbx/backend"
	"github.com/caspiandb/dbx/pkg/dbx/row"
	"github.com/caspiandb/dbx/pkg/dbx/session"
)

var (
	driver = flag.String("driver", "sqlite", "registered backend name: postgres, mysql, sqlite, oracle, odbc")
	dsn    = flag.String("dsn", ":memory:", "driver-specific connection string")
	query  = flag.String("query", "select 1 as one", "query to run; no :name placeholders are bound in this demo")
)

func printUsage() {
	fmt.Println("Usage: dbxdemo -driver <name> -dsn <connection string> [-query <sql>]")
	fmt.Println("Runs the given query and prints each dynamically described column for every row.")
}

func main() {
	flag.Usage = printUsage
	flag.Parse()

	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "dbxdemo:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	s, err := session.Open(ctx, *driver, *dsn)
	if err != nil {
		return fmt.Errorf("open %s session: %w", *driver, err)
	}
	defer s.Close()

	stmt := s.NewStatement()
	defer stmt.CleanUp(ctx)

	if err := stmt.Prepare(ctx, *query, backend.HintOneTime); err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	if err := stmt.DefineAndBind(ctx); err != nil {
		return fmt.Errorf("define and bind: %w", err)
	}
	if err := stmt.Execute(ctx, true); err != nil {
		return fmt.Errorf("execute: %w", err)
	}

	if stmt.Row() == nil {
		fmt.Println("no rows described (non-SELECT, or empty result)")
		return nil
	}

	if stmt.GotData() {
		printRow(stmt.Row())
	}
	for {
		got, err := stmt.Fetch(ctx, 1)
		if err != nil {
			return fmt.Errorf("fetch: %w", err)
		}
		if !got {
			break
		}
		printRow(stmt.Row())
	}

	return nil
}

func printRow(r *row.Row) {
	for i := 0; i < r.Size(); i++ {
		prop := r.Properties[i]
		fmt.Printf("  %-20s %v\n", prop.Name, holderValue(prop.Type, r.Holders[i]))
	}
	fmt.Println()
}

func holderValue(t backend.LogicalType, h row.Holder) any {
	switch t {
	case backend.LogicalString:
		return h.Str
	case backend.LogicalDate:
		return h.Time
	case backend.LogicalDouble:
		return h.Num
	case backend.LogicalInteger:
		return h.Int
	case backend.LogicalUnsignedLong:
		return h.UInt
	default:
		return h.Str
	}
}
