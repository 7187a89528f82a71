package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/Fidelio-foundation/Fidelio/backend/memory"
	"github.com/Fidelio-foundation/Fidelio/replay"
	"github.com/Fidelio-foundation/Fidelio/state"
)

var (
	actionFileFlag = cli.StringFlag{
		Name:     "file",
		Usage:    "the recorded action file to replay",
		Required: true,
	}
)

var replayCommand = cli.Command{
	Action: replayFile,
	Name:   "replay",
	Usage:  "feeds a recorded action file through a fresh in-memory engine",
	Flags: []cli.Flag{
		&actionFileFlag,
	},
}

func replayFile(cliCtx *cli.Context) error {
	path := cliCtx.String(actionFileFlag.Name)
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	engine, err := state.NewContext(memory.NewBackend(), 0)
	if err != nil {
		return err
	}
	defer engine.Close()
	replayer := replay.NewReplayer(engine, 0)

	log.Printf("Replaying %v ...", path)
	decoder := replay.NewDecoder(file)
	for {
		action, err := decoder.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		if err := replayer.Apply(action); err != nil {
			return fmt.Errorf("failed to apply %s action %d; %w", action.Kind, replayer.Events(), err)
		}
	}

	fmt.Printf("Applied actions: %d\n", replayer.Events())
	fmt.Printf("Merkle root:     %v\n", engine.GetMerkleRoot())
	if hash, exists := engine.GetLastCommitHash(); exists {
		fmt.Printf("Last commit:     %v (%v)\n", hash, hash.Base58())
	} else {
		fmt.Printf("Last commit:     none\n")
	}
	return nil
}
