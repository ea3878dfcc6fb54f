// vdump packs and prints luna constant pools.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/tliron/commonlog"

	"github.com/chazu/luna/config"
	"github.com/chazu/luna/vm"
	"github.com/chazu/luna/vm/wire"

	_ "github.com/tliron/commonlog/simple"
)

var log = commonlog.GetLogger("luna.vdump")

func main() {
	configDir := flag.String("config", ".", "Directory to start the luna.toml search from")
	pack := flag.String("pack", "", "Write the literal arguments to this pool file instead of dumping")
	inspect := flag.Bool("inspect", false, "Print the inspector tree for every constant")
	verbose := flag.Bool("v", false, "Verbose output (overrides log.verbosity)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: vdump [options] pool.cbor\n")
		fmt.Fprintf(os.Stderr, "       vdump [options] -pack out.cbor literal...\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  vdump -pack k.cbor nil 42 1.0 '\"name\"' {}\n")
		fmt.Fprintf(os.Stderr, "  vdump -inspect k.cbor\n")
	}
	flag.Parse()

	cfg, err := config.FindAndLoad(*configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	verbosity := cfg.Log.Verbosity
	if *verbose {
		verbosity = 2
	}
	commonlog.Configure(verbosity, cfg.LogPath())
	if cfg.Path != "" {
		log.Infof("using configuration %s", cfg.Path)
	}

	codec, err := wire.New(wire.Options{MaxDepth: cfg.Wire.MaxDepth, MaxItems: cfg.Wire.MaxItems})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *pack != "" {
		err = runPack(codec, *pack, flag.Args())
	} else {
		if flag.NArg() != 1 {
			flag.Usage()
			os.Exit(2)
		}
		err = runDump(os.Stdout, codec, cfg, flag.Arg(0), *inspect)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runPack(codec *wire.Codec, out string, literals []string) error {
	values := make([]vm.Value, 0, len(literals))
	for _, lit := range literals {
		v, err := parseLiteral(lit)
		if err != nil {
			return err
		}
		values = append(values, v)
	}
	data, err := codec.Marshal(values)
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, data, 0644); err != nil {
		return fmt.Errorf("cannot write %s: %w", out, err)
	}
	log.Infof("wrote %d constants to %s (%s)", len(values), out, humanize.Bytes(uint64(len(data))))
	return nil
}

func runDump(w io.Writer, codec *wire.Codec, cfg *config.Config, path string, inspect bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", path, err)
	}
	values, err := codec.Unmarshal(data)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	var total int64
	for i, v := range values {
		display, err := render(v, cfg.Display.StrictText)
		if err != nil {
			return fmt.Errorf("constant %d: %w", i, err)
		}
		cost := vm.Footprint(v)
		total += cost
		fmt.Fprintf(w, "%4d  %-12s %-24s %s  (%s)\n", i, v.Kind(), v.Debug(), display, humanize.Bytes(uint64(cost)))
		if inspect {
			r := vm.Inspect(v, vm.InspectOptions{Depth: cfg.Display.Depth, Width: cfg.Display.Width})
			fmt.Fprint(w, r.String())
		}
	}
	fmt.Fprintf(w, "%d constants, %s of value storage, %s on disk\n",
		len(values),
		humanize.Bytes(uint64(total)+uint64(len(values))*uint64(vm.ValueSize())),
		humanize.Bytes(uint64(len(data))))
	return nil
}

// render returns the user-facing form of v. In strict mode strings must be
// valid UTF-8.
func render(v vm.Value, strict bool) (string, error) {
	if strict && v.IsString() {
		return v.Text()
	}
	return v.String(), nil
}
