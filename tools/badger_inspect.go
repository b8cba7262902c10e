package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/olekukonko/tablewriter"

	"safespace/domain"
)

// Dumps the shared message log straight from BadgerDB, bypassing the client.
// Handy when two tabs disagree and you need to see what is actually stored.
func main() {
	dbPath := flag.String("db", "safespace.db", "Path to badger DB")
	key := flag.String("key", "safespace_messages", "Shared log key to dump")
	flag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"#", "Timestamp", "Sender", "Text"})
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

	err = db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(*key))
		if err == badger.ErrKeyNotFound {
			fmt.Printf("Key %q not found\n", *key)
			return nil
		}
		if err != nil {
			return err
		}

		return item.Value(func(v []byte) error {
			var messages []domain.Message
			if err := json.Unmarshal(v, &messages); err != nil {
				fmt.Printf("Error unmarshaling key %s: %v\n", *key, err)
				return nil
			}
			for i, m := range messages {
				table.Append([]string{
					fmt.Sprint(i + 1),
					m.Timestamp,
					m.Sender,
					m.Text,
				})
			}
			return nil
		})
	})

	if err != nil {
		log.Fatal(err)
	}

	table.Render()
}

func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true).
		WithValueLogFileSize(10 * 1024 * 1024)

	db, err := badger.Open(opts)
	if err != nil {
		// Corrupted value log: open once in write mode to truncate, then retry
		if strings.Contains(err.Error(), "Log truncate required") {
			repairOpts := badger.DefaultOptions(path).
				WithLogger(nil).WithBypassLockGuard(true)

			db, err = badger.Open(repairOpts)
			if err != nil {
				return nil, fmt.Errorf("repair failed: %w", err)
			}

			db.Close()
			return badger.Open(opts)
		}
		return nil, err
	}
	return db, nil
}
