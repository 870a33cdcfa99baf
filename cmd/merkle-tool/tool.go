package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"math/big"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/term"

	"github.com/cyphera/cyphera-airdrop/internal/config"
	"github.com/cyphera/cyphera-airdrop/internal/merkle"
	"github.com/cyphera/cyphera-airdrop/internal/treestore"
)

var errUsage = errors.New("usage: merkle-tool build|proof|verify [flags]")

// archive is what the tool needs from treestore.Archive.
type archive interface {
	Put(ctx context.Context, doc *treestore.Document) (string, error)
	Get(ctx context.Context, root common.Hash) (*treestore.Document, error)
}

type tool struct {
	stdout io.Writer
	stderr io.Writer
	pretty bool
	// archive is opened lazily, only by commands that touch S3.
	archive func(ctx context.Context) (archive, error)
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func openArchive(ctx context.Context) (archive, error) {
	cfg, err := config.LoadTool()
	if err != nil {
		return nil, err
	}
	if cfg.Archive.Bucket == "" {
		return nil, errors.New("TREE_ARCHIVE_BUCKET must be set")
	}
	awsCfg, err := config.LoadAWSConfig(ctx, cfg.AWS)
	if err != nil {
		return nil, err
	}
	return treestore.NewArchive(treestore.NewS3Client(awsCfg), cfg.Archive.Bucket, cfg.Archive.Prefix), nil
}

func (t *tool) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	switch args[0] {
	case "build":
		return t.build(ctx, args[1:])
	case "proof":
		return t.proof(ctx, args[1:])
	case "verify":
		return t.verify(ctx, args[1:])
	default:
		return fmt.Errorf("unknown command %q: %w", args[0], errUsage)
	}
}

func (t *tool) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(t.stderr)
	return fs
}

func (t *tool) build(ctx context.Context, args []string) error {
	fs := t.flags("build")
	in := fs.String("in", "", "entitlements CSV (account,amount)")
	out := fs.String("out", "", "write the tree document here instead of stdout")
	upload := fs.Bool("upload", false, "publish the document to the S3 archive")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		return errors.New("build: -in is required")
	}

	f, err := os.Open(*in)
	if err != nil {
		return err
	}
	defer f.Close()

	entitlements, err := readEntitlements(f)
	if err != nil {
		return err
	}
	doc, err := treestore.BuildDocument(entitlements)
	if err != nil {
		return err
	}

	if *out != "" {
		raw, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(*out, raw, 0o644); err != nil {
			return err
		}
	} else if err := t.writeJSON(doc); err != nil {
		return err
	}

	fmt.Fprintf(t.stderr, "root %s, %d claims, total %s\n", doc.Root.Hex(), len(doc.Claims), doc.Total)
	if !*upload {
		return nil
	}
	a, err := t.archive(ctx)
	if err != nil {
		return err
	}
	uri, err := a.Put(ctx, doc)
	if err != nil {
		return err
	}
	fmt.Fprintf(t.stderr, "published %s\n", uri)
	return nil
}

func (t *tool) proof(ctx context.Context, args []string) error {
	fs := t.flags("proof")
	treePath, root := treeFlags(fs)
	account := fs.String("account", "", "claimant address")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if !common.IsHexAddress(*account) {
		return fmt.Errorf("proof: invalid -account %q", *account)
	}

	doc, err := t.loadDocument(ctx, *treePath, *root)
	if err != nil {
		return err
	}
	claims := doc.ClaimsFor(common.HexToAddress(*account))
	if len(claims) == 0 {
		return fmt.Errorf("%s has no claim under root %s", *account, doc.Root.Hex())
	}
	return t.writeJSON(claims)
}

func (t *tool) verify(ctx context.Context, args []string) error {
	fs := t.flags("verify")
	treePath, root := treeFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	doc, err := t.loadDocument(ctx, *treePath, *root)
	if err != nil {
		return err
	}
	if err := doc.Verify(); err != nil {
		return err
	}
	fmt.Fprintf(t.stdout, "ok: %d claims verify against %s\n", len(doc.Claims), doc.Root.Hex())
	return nil
}

func treeFlags(fs *flag.FlagSet) (*string, *string) {
	return fs.String("tree", "", "tree document file"),
		fs.String("root", "", "fetch the tree document with this root from the S3 archive")
}

func (t *tool) loadDocument(ctx context.Context, path, root string) (*treestore.Document, error) {
	switch {
	case path != "" && root != "":
		return nil, errors.New("-tree and -root are mutually exclusive")
	case path != "":
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		var doc treestore.Document
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", path, err)
		}
		return &doc, nil
	case root != "":
		a, err := t.archive(ctx)
		if err != nil {
			return nil, err
		}
		return a.Get(ctx, common.HexToHash(root))
	default:
		return nil, errors.New("one of -tree or -root is required")
	}
}

func (t *tool) writeJSON(v any) error {
	enc := json.NewEncoder(t.stdout)
	if t.pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

// readEntitlements parses "account,amount" rows. A first row whose account
// column is not an address is treated as a header.
func readEntitlements(r io.Reader) ([]merkle.Entitlement, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 2
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read entitlements: %w", err)
	}
	if len(rows) > 0 && !common.IsHexAddress(strings.TrimSpace(rows[0][0])) {
		rows = rows[1:]
	}

	out := make([]merkle.Entitlement, 0, len(rows))
	for i, row := range rows {
		account := strings.TrimSpace(row[0])
		if !common.IsHexAddress(account) {
			return nil, fmt.Errorf("row %d: invalid account %q", i+1, account)
		}
		amount, ok := new(big.Int).SetString(strings.TrimSpace(row[1]), 10)
		if !ok || amount.Sign() < 0 {
			return nil, fmt.Errorf("row %d: invalid amount %q", i+1, row[1])
		}
		out = append(out, merkle.Entitlement{Account: common.HexToAddress(account), Amount: amount})
	}
	return out, nil
}
