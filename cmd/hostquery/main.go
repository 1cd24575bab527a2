//go:build sqlite_vtable
// +build sqlite_vtable

// hostquery runs one SQL query against the live host state tables.
// Build with -tags sqlite_vtable (required by the sqlite driver's
// virtual table support).
package main

import (
	"context"
	"os"

	kingpin "github.com/alecthomas/kingpin/v2"
	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"

	"github.com/hostquery/hostquery/config"
	"github.com/hostquery/hostquery/logging"
	"github.com/hostquery/hostquery/providers"
	"github.com/hostquery/hostquery/sqlengine"
)

var (
	app = kingpin.New("hostquery",
		"Query live operating system state with SQL.")

	config_path = app.Flag("config", "Path to a yaml config file.").
			Short('c').String()

	disable_cache = app.Flag("disable_hash_cache",
		"Always compute file digests fresh.").Bool()

	verbose = app.Flag("verbose", "Enable debug logging.").
		Short('v').Bool()

	query = app.Arg("query", "The SQL query to run.").Required().String()
)

func main() {
	app.UsageTemplate(kingpin.CompactUsageTemplate)
	kingpin.MustParse(app.Parse(os.Args[1:]))

	if *verbose {
		logging.SetLevel(logrus.DebugLevel)
	}

	config_obj := config.GetDefaultConfig()
	if *config_path != "" {
		loaded, err := config.LoadConfig(*config_path)
		kingpin.FatalIfError(err, "Unable to load config.")
		config_obj = loaded
	}
	if *disable_cache {
		config_obj.EnableHashCache = false
	}

	registry, cache, err := providers.NewStandardRegistry(config_obj)
	kingpin.FatalIfError(err, "Unable to register tables.")
	defer cache.Close()

	engine, err := sqlengine.NewEngine(registry)
	kingpin.FatalIfError(err, "Unable to start the SQL engine.")
	defer engine.Close()

	rows, err := engine.Query(context.Background(), *query)
	kingpin.FatalIfError(err, "Query failed.")

	if len(rows) == 0 {
		return
	}

	writer := tablewriter.NewWriter(os.Stdout)
	writer.SetHeader(rows[0].Keys())
	for _, row := range rows {
		cells := make([]string, 0, len(row.Keys()))
		for _, key := range row.Keys() {
			value, _ := row.GetString(key)
			cells = append(cells, value)
		}
		writer.Append(cells)
	}
	writer.Render()
}
