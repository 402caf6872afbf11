// Command inspect dumps the Badger store of a stopped or running server.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"room-chat/repositories"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/kelseyhightower/envconfig"
	"github.com/olekukonko/tablewriter"
)

type Config struct {
	BadgerFilepath string `envconfig:"BADGER_FILEPATH" default:"./data/badger"`
	// INSPECT_COLOURS enables colorized kinds
	Colours bool `envconfig:"INSPECT_COLOURS" default:"true"`
	// INSPECT_MAX_DETAIL truncates the CBOR diagnostic column
	MaxDetail int `envconfig:"INSPECT_MAX_DETAIL" default:"120"`
}

var kindColours = map[string]color.Color{
	"room":    color.FgGreen,
	"member":  color.FgCyan,
	"message": color.FgYellow,
	"user":    color.FgMagenta,
}

func main() {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatal("Config error: ", err)
	}
	dbPath := flag.String("db", cfg.BadgerFilepath, "Path to badger DB")
	prefix := flag.String("prefix", "", "Prefix to scan (room:, member:, msg:, user:...)")
	flag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Kind", "Size", "Detail"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	counts := map[string]int{}
	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(*prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()
			key := string(item.Key())
			kind, cborValue := repositories.Kind(item.Key())
			counts[kind]++

			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			detail := string(value)
			if cborValue {
				if detail, err = repositories.Diagnose(value); err != nil {
					detail = fmt.Sprintf("undecodable: %v", err)
				}
			}
			table.Append([]string{key, paint(cfg, kind), fmt.Sprintf("%d", len(value)), truncate(detail, cfg.MaxDetail)})
		}
		return nil
	})
	if err != nil {
		log.Fatal(err)
	}

	table.Render()
	fmt.Println()
	for kind, n := range counts {
		fmt.Printf("%s: %d\n", paint(cfg, kind), n)
	}
}

func paint(cfg Config, kind string) string {
	c, ok := kindColours[kind]
	if !cfg.Colours || !ok {
		return kind
	}
	return c.Render(kind)
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true)
	return badger.Open(opts)
}
