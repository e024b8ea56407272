// Command structinfo prints struct layouts and exercises the in-memory lists.
//
//	structinfo                             # layouts of the built-in list types
//	structinfo -schema types.yaml -json    # layouts of a schema file as JSON
//	structinfo -demo wazero 1,2,3 0x10,b101 ""
//
// Each positional argument of -demo is one inner list of comma-separated
// integers. Values may be decimal, 0x-prefixed hex or b-prefixed binary.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"fortio.org/safecast"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/linmem/alloc"
	"github.com/wippyai/linmem/list"
	"github.com/wippyai/linmem/memory"
	"github.com/wippyai/linmem/schema"
)

type options struct {
	schemaFile string
	only       string
	asJSON     bool
	backend    string
	maxPages   uint32
}

func main() {
	var (
		schemaFile = flag.String("schema", "", "Schema file (.yaml, .yml or .json); default is the list types")
		only       = flag.String("struct", "", "Print a single struct")
		asJSON     = flag.Bool("json", false, "Print layouts as JSON")
		backend    = flag.String("demo", "", "Run the list-of-lists demo on a memory backend: buffer, mmap or wazero")
		maxPages   = flag.Uint("max-pages", 0, "Page limit of the demo memory (0 = backend default)")
		verbose    = flag.Bool("v", false, "Verbose logging")
	)
	flag.Parse()

	logger := zap.NewNop()
	if *verbose {
		if dev, err := zap.NewDevelopment(); err == nil {
			logger = dev
		}
	}
	defer func() { _ = logger.Sync() }()
	memory.SetLogger(logger.Named("memory"))
	alloc.SetLogger(logger.Named("alloc"))
	list.SetLogger(logger.Named("list"))

	pages, err := safecast.Convert[uint32](*maxPages)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: -max-pages: %v\n", err)
		os.Exit(1)
	}

	opts := options{
		schemaFile: *schemaFile,
		only:       *only,
		asJSON:     *asJSON,
		backend:    *backend,
		maxPages:   pages,
	}
	r := renderer{styled: term.IsTerminal(int(os.Stdout.Fd()))}
	if err := run(context.Background(), os.Stdout, r, opts, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, out io.Writer, r renderer, opts options, args []string) error {
	if opts.backend != "" {
		lists, err := parseLists(args)
		if err != nil {
			return err
		}
		return runDemo(ctx, out, r, opts.backend, opts.maxPages, lists)
	}

	s, err := loadSchema(opts.schemaFile)
	if err != nil {
		return err
	}
	infos := s.Describe()
	if opts.only != "" {
		t, ok := s.Lookup(opts.only)
		if !ok {
			return fmt.Errorf("struct %q not found", opts.only)
		}
		infos = []schema.StructInfo{schema.Describe(t)}
	}

	if opts.asJSON {
		return writeJSON(out, infos)
	}
	for i, info := range infos {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintln(out, r.structTable(info))
	}
	return nil
}

func loadSchema(path string) (*schema.Schema, error) {
	if path == "" {
		return schema.New(list.IntNodeType, list.IntListListNodeType, list.HeaderType)
	}
	return schema.Load(path)
}
