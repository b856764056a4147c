// Command dualcas is a small CLI over the dual-replica artifact store:
// digest inspection, verified dual writes, mirror pairs, phase-routed
// scheduling and store snapshots.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"xdao.co/dualcas/artifact"
	"xdao.co/dualcas/config"
	"xdao.co/dualcas/mirror"
	"xdao.co/dualcas/registry"
	"xdao.co/dualcas/storage/bundle"
	"xdao.co/dualcas/storage/memstore"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		printUsage(errOut)
		return 2
	}

	switch args[0] {
	case "hashers":
		return cmdHashers(args[1:], out, errOut)
	case "store":
		return cmdStore(args[1:], out, errOut)
	case "verify":
		return cmdVerify(args[1:], out, errOut)
	case "mirror":
		return cmdMirror(args[1:], out, errOut)
	case "cycle":
		return cmdCycle(args[1:], out, errOut)
	case "snapshot":
		return cmdSnapshot(args[1:], out, errOut)
	case "restore":
		return cmdRestore(args[1:], out, errOut)
	case "help", "-h", "--help":
		printUsage(out)
		return 0
	default:
		fmt.Fprintf(errOut, "unknown command: %s\n\n", args[0])
		printUsage(errOut)
		return 2
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "dualcas: dual-replica content-addressable store CLI")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  dualcas hashers [<file>]")
	fmt.Fprintln(w, "  dualcas store [--config <yaml>] [--sync] <file> [<file> ...]")
	fmt.Fprintln(w, "  dualcas verify [--config <yaml>] <file> [<file> ...]")
	fmt.Fprintln(w, "  dualcas mirror --transform identity|reverse|complement [--hasher <name>] <file>")
	fmt.Fprintln(w, "  dualcas cycle [--config <yaml>] [--stores <n>] [--balance]")
	fmt.Fprintln(w, "  dualcas snapshot --out <path> [--hasher <name>] <file> [<file> ...]")
	fmt.Fprintln(w, "  dualcas restore [--hasher <name>] <path>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Notes:")
	fmt.Fprintln(w, "  - hashers lists registered algorithms; with a file it prints every digest")
	fmt.Fprintln(w, "  - verify stores each file into both replicas and reports consistency")
	fmt.Fprintln(w, "  - snapshot writes a deterministic zstd TAR; restore lists its digests")
}

func loadConfig(path string, errOut io.Writer) (config.Config, bool) {
	if path == "" {
		return config.Config{}, true
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		fmt.Fprintf(errOut, "load config: %v\n", err)
		return config.Config{}, false
	}
	return cfg, true
}

func cmdHashers(args []string, out io.Writer, errOut io.Writer) int {
	fs := pflag.NewFlagSet("hashers", pflag.ContinueOnError)
	fs.SetOutput(errOut)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() > 1 {
		fmt.Fprintln(errOut, "usage: dualcas hashers [<file>]")
		return 2
	}

	var content []byte
	if fs.NArg() == 1 {
		b, err := os.ReadFile(fs.Arg(0))
		if err != nil {
			fmt.Fprintf(errOut, "read file: %v\n", err)
			return 1
		}
		content = b
	}

	for _, name := range registry.Names() {
		if content == nil {
			fmt.Fprintln(out, name)
			continue
		}
		h, err := registry.Open(name)
		if err != nil {
			fmt.Fprintf(errOut, "open hasher %q: %v\n", name, err)
			return 1
		}
		fmt.Fprintf(out, "%s\t%s\n", name, h.Sum(content))
	}
	return 0
}

func cmdStore(args []string, out io.Writer, errOut io.Writer) int {
	fs := pflag.NewFlagSet("store", pflag.ContinueOnError)
	fs.SetOutput(errOut)
	configPath := fs.String("config", "", "YAML replica config")
	sync := fs.Bool("sync", false, "pad the lagging replica afterwards")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(errOut, "usage: dualcas store [--config <yaml>] [--sync] <file> [<file> ...]")
		return 2
	}

	cfg, ok := loadConfig(*configPath, errOut)
	if !ok {
		return 1
	}
	pair, err := cfg.NewReplicaPair()
	if err != nil {
		fmt.Fprintf(errOut, "build replica pair: %v\n", err)
		return 1
	}

	for _, path := range fs.Args() {
		b, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(errOut, "read %s: %v\n", path, err)
			return 1
		}
		p, d, err := pair.DualStore(b)
		if err != nil {
			fmt.Fprintf(errOut, "%s: %v\n", path, err)
			return 1
		}
		fmt.Fprintf(out, "%s\tprimary=%s\tdual=%s\n", path, p, d)
	}

	if *sync {
		if err := pair.Synchronize(); err != nil {
			fmt.Fprintf(errOut, "synchronize: %v\n", err)
			return 1
		}
	}
	fmt.Fprintf(out, "phase=%s combined_cycle=%d synchronized=%t\n",
		pair.Phase(), pair.CombinedCycle(), pair.IsSynchronized())
	return 0
}

func cmdVerify(args []string, out io.Writer, errOut io.Writer) int {
	fs := pflag.NewFlagSet("verify", pflag.ContinueOnError)
	fs.SetOutput(errOut)
	configPath := fs.String("config", "", "YAML replica config")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(errOut, "usage: dualcas verify [--config <yaml>] <file> [<file> ...]")
		return 2
	}

	cfg, ok := loadConfig(*configPath, errOut)
	if !ok {
		return 1
	}
	vrs, err := cfg.NewVerifiedStore()
	if err != nil {
		fmt.Fprintf(errOut, "build verified store: %v\n", err)
		return 1
	}
	hasher, err := cfg.Primary.NewHasher()
	if err != nil {
		fmt.Fprintf(errOut, "open hasher: %v\n", err)
		return 1
	}

	status := 0
	for _, path := range fs.Args() {
		b, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(errOut, "read %s: %v\n", path, err)
			return 1
		}
		p, s, err := vrs.DualStore(artifact.New(b, hasher))
		if err != nil {
			fmt.Fprintf(errOut, "%s: %v\n", path, err)
			status = 1
			continue
		}
		fmt.Fprintf(out, "%s\tprimary=%s\tsecondary=%s\n", path, p, s)
	}

	stats := vrs.Stats()
	fmt.Fprintf(out, "policy=%s primary=%d secondary=%d consistent=%t\n",
		stats.Policy, stats.PrimaryCount, stats.SecondaryCount, stats.Consistent)
	if !stats.Consistent {
		status = 1
	}
	return status
}

func cmdMirror(args []string, out io.Writer, errOut io.Writer) int {
	fs := pflag.NewFlagSet("mirror", pflag.ContinueOnError)
	fs.SetOutput(errOut)
	transform := fs.String("transform", "reverse", "identity, reverse or complement")
	hasherName := fs.String("hasher", "sha2-256", "digest algorithm")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: dualcas mirror --transform identity|reverse|complement [--hasher <name>] <file>")
		return 2
	}

	h, err := registry.Open(*hasherName)
	if err != nil {
		fmt.Fprintf(errOut, "open hasher: %v\n", err)
		return 1
	}
	content, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(errOut, "read file: %v\n", err)
		return 1
	}

	original := artifact.New(content, h)
	var pair *mirror.Pair
	switch *transform {
	case "identity":
		pair = mirror.NewIdentity(original, h)
	case "reverse":
		pair = mirror.NewByteReversed(original, h)
	case "complement":
		pair = mirror.NewBitComplement(original, h)
	default:
		fmt.Fprintf(errOut, "unknown transform: %s\n", *transform)
		return 2
	}

	orig, derived := pair.Digests()
	fmt.Fprintf(out, "kind=%s original=%s derived=%s identity=%t strength=%.1f\n",
		pair.Kind(), orig, derived, pair.IsIdentity(), pair.Strength())
	return 0
}

func cmdCycle(args []string, out io.Writer, errOut io.Writer) int {
	fs := pflag.NewFlagSet("cycle", pflag.ContinueOnError)
	fs.SetOutput(errOut)
	configPath := fs.String("config", "", "YAML replica config")
	stores := fs.Int("stores", 10, "number of phase-routed stores to run")
	balance := fs.Bool("balance", false, "pad the lagging replica afterwards")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 0 || *stores < 0 {
		fmt.Fprintln(errOut, "usage: dualcas cycle [--config <yaml>] [--stores <n>] [--balance]")
		return 2
	}

	cfg, ok := loadConfig(*configPath, errOut)
	if !ok {
		return 1
	}
	sched, err := cfg.NewScheduler()
	if err != nil {
		fmt.Fprintf(errOut, "build scheduler: %v\n", err)
		return 1
	}

	for i := 0; i < *stores; i++ {
		if _, err := sched.Store([]byte(fmt.Sprintf("artifact-%04d", i))); err != nil {
			fmt.Fprintf(errOut, "store %d: %v\n", i, err)
			return 1
		}
	}
	if *balance {
		if err := sched.Balance(); err != nil {
			fmt.Fprintf(errOut, "balance: %v\n", err)
			return 1
		}
	}

	c := sched.Cycle()
	stats := sched.Stats()
	fmt.Fprintf(out, "step=%d phase=%d phase_step=%d\n", c.Step(), c.Phase(), c.PhaseStep())
	fmt.Fprintf(out, "ops=%d primary=%d dual=%d ratio=%.3f balanced=%t\n",
		stats.TotalOps, stats.PrimaryOps, stats.DualOps, stats.Ratio, stats.Balanced)
	return 0
}

func cmdSnapshot(args []string, out io.Writer, errOut io.Writer) int {
	fs := pflag.NewFlagSet("snapshot", pflag.ContinueOnError)
	fs.SetOutput(errOut)
	outPath := fs.String("out", "", "snapshot output path")
	hasherName := fs.String("hasher", "sha2-256", "digest algorithm")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *outPath == "" || fs.NArg() == 0 {
		fmt.Fprintln(errOut, "usage: dualcas snapshot --out <path> [--hasher <name>] <file> [<file> ...]")
		return 2
	}

	h, err := registry.Open(*hasherName)
	if err != nil {
		fmt.Fprintf(errOut, "open hasher: %v\n", err)
		return 1
	}
	s := memstore.New()
	for _, path := range fs.Args() {
		b, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(errOut, "read %s: %v\n", path, err)
			return 1
		}
		id, err := s.Put(artifact.New(b, h))
		if err != nil {
			fmt.Fprintf(errOut, "store %s: %v\n", path, err)
			return 1
		}
		fmt.Fprintf(out, "%s\t%s\n", path, id)
	}

	f, err := os.Create(*outPath)
	if err != nil {
		fmt.Fprintf(errOut, "create snapshot: %v\n", err)
		return 1
	}
	exportErr := bundle.Export(f, s, h, s.Digests(), bundle.ExportOptions{IncludeIndex: true})
	if closeErr := f.Close(); exportErr == nil {
		exportErr = closeErr
	}
	if exportErr != nil {
		fmt.Fprintf(errOut, "write snapshot: %v\n", exportErr)
		return 1
	}
	fmt.Fprintf(out, "wrote %d artifacts to %s\n", s.Len(), *outPath)
	return 0
}

func cmdRestore(args []string, out io.Writer, errOut io.Writer) int {
	fs := pflag.NewFlagSet("restore", pflag.ContinueOnError)
	fs.SetOutput(errOut)
	hasherName := fs.String("hasher", "sha2-256", "digest algorithm the snapshot was taken under")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: dualcas restore [--hasher <name>] <path>")
		return 2
	}

	h, err := registry.Open(*hasherName)
	if err != nil {
		fmt.Fprintf(errOut, "open hasher: %v\n", err)
		return 1
	}
	f, err := os.Open(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(errOut, "open snapshot: %v\n", err)
		return 1
	}
	defer f.Close()

	s := memstore.New()
	ids, err := bundle.Import(f, s, h)
	if err != nil {
		fmt.Fprintf(errOut, "import snapshot: %v\n", err)
		return 1
	}
	for _, id := range ids {
		a, err := s.Get(id)
		if err != nil {
			fmt.Fprintf(errOut, "get %s: %v\n", id, err)
			return 1
		}
		fmt.Fprintf(out, "%s\t%d bytes\n", id, a.Len())
	}
	fmt.Fprintf(out, "restored %d artifacts\n", len(ids))
	return 0
}
