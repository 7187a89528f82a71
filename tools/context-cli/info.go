package main

import (
	"fmt"
	"log"

	"github.com/urfave/cli/v2"

	"github.com/Fidelio-foundation/Fidelio/backend"
	"github.com/Fidelio-foundation/Fidelio/state"
)

var getInfoCommand = cli.Command{
	Action: getInfo,
	Name:   "info",
	Usage:  "prints summary information about a context directory",
	Flags: []cli.Flag{
		&dbDirectoryFlag,
		&dbKindFlag,
	},
}

func getInfo(cliCtx *cli.Context) (err error) {
	dir := cliCtx.String(dbDirectoryFlag.Name)
	log.Printf("Opening context in %v ...", dir)
	db, err := openBackend(cliCtx)
	if err != nil {
		return err
	}
	engine, err := state.NewContext(db, 0)
	if err != nil {
		_ = db.Close()
		return err
	}
	defer func() {
		log.Printf("Closing context in %v ...", dir)
		if closeError := engine.Close(); closeError != nil {
			if err == nil {
				err = closeError
			} else {
				log.Printf("Failure closing context: %v", closeError)
			}
		}
	}()

	if hash, exists := engine.GetLastCommitHash(); exists {
		fmt.Printf("Last commit:    %v (%v)\n", hash, hash.Base58())
	} else {
		fmt.Printf("Last commit:    none\n")
	}
	head, exists, err := engine.HeadBlockHash()
	if err != nil {
		return err
	}
	if exists {
		fmt.Printf("Head block:     %v\n", head)
	} else {
		fmt.Printf("Head block:     none\n")
	}
	fmt.Printf("Applied blocks: %d\n", engine.AppliedBlocks())

	entries, err := countEntries(db)
	if err != nil {
		return err
	}
	fmt.Printf("Stored entries: %d\n", entries)
	return nil
}

// countEntries walks the entry table space of the backend.
func countEntries(db backend.Backend) (uint64, error) {
	iterator := db.NewIterator(backend.EntrySpace.Prefix())
	defer iterator.Release()
	var count uint64
	for iterator.Next() {
		count++
	}
	return count, iterator.Error()
}
