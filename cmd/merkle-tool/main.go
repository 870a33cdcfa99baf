// Command merkle-tool builds claim trees from entitlement CSVs, prints proofs
// and publishes tree documents to the S3 archive.
//
// Usage:
//
//	merkle-tool build  -in entitlements.csv [-out tree.json] [-upload]
//	merkle-tool proof  (-tree tree.json | -root 0x...) -account 0x...
//	merkle-tool verify (-tree tree.json | -root 0x...)
//
// The CSV holds one "account,amount" row per entitlement; a header row is
// skipped. Amounts are decimal base units.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cyphera/cyphera-airdrop/internal/logger"
)

func main() {
	logger.InitLogger(os.Getenv("STAGE"))
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	t := &tool{stdout: os.Stdout, stderr: os.Stderr, pretty: isTerminal(os.Stdout), archive: openArchive}
	if err := t.run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
