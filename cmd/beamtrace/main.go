// Command beamtrace traces specular reflection paths through a scene file
// and reports the resulting beam tree.
//
//	beamtrace [flags] scene.beam
//
// Settings are resolved in order: built-in defaults, the scene's own
// (settings ...) form, the config file, then flags.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/chazu/beamtrace/pkg/beamtree"
	"github.com/chazu/beamtrace/pkg/pipeline"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

type options struct {
	config  string
	output  string
	verbose bool
	example bool

	maxOrder     int
	nearDistance float64
	epsilon      float64
	traversal    string
	roots        string
	maxBeams     int
}

func parseFlags(args []string, stderr io.Writer) (*options, []string, pipeline.Overrides, error) {
	fs := flag.NewFlagSet("beamtrace", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "usage: beamtrace [flags] scene.beam\n\nA scene of - is read from standard input.\n\n")
		fs.PrintDefaults()
	}

	o := &options{}
	fs.StringVar(&o.config, "config", "", "config file with a [trace] section (default $"+ConfigEnv+")")
	fs.StringVar(&o.output, "o", "", "write the JSON result to this file, - for standard output")
	fs.BoolVar(&o.verbose, "v", false, "log every expanded beam and anomaly")
	fs.BoolVar(&o.example, "example-config", false, "print an example config file and exit")
	fs.IntVar(&o.maxOrder, "max-order", 0, "highest reflection order to trace")
	fs.Float64Var(&o.nearDistance, "near-distance", 0, "image-plane depth of beams that do not start on a face")
	fs.Float64Var(&o.epsilon, "epsilon", 0, "orientation tolerance")
	fs.StringVar(&o.traversal, "traversal", "", "depth-first or breadth-first")
	fs.StringVar(&o.roots, "roots", "", "comma-separated cube faces that seed beams, or all")
	fs.IntVar(&o.maxBeams, "max-beams", 0, "stop after this many beams, 0 is unlimited")

	if err := fs.Parse(args); err != nil {
		return nil, nil, pipeline.Overrides{}, err
	}

	// Only flags given on the command line override anything.
	var ov pipeline.Overrides
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "max-order":
			ov.MaxOrder = &o.maxOrder
		case "near-distance":
			ov.NearDistance = &o.nearDistance
		case "epsilon":
			ov.Epsilon = &o.epsilon
		case "traversal":
			ov.Traversal = o.traversal
		case "roots":
			ov.Roots = splitList(o.roots)
			if len(ov.Roots) == 1 && ov.Roots[0] == "all" {
				ov.Roots = beamtree.AllRoots.Names()
			}
		case "max-beams":
			ov.MaxBeams = &o.maxBeams
		}
	})
	return o, fs.Args(), ov, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	logger := log.New(stderr, "beamtrace: ", 0)

	o, rest, flagOv, err := parseFlags(args, stderr)
	if err != nil {
		if err == flag.ErrHelp {
			return exitOK
		}
		return exitUsage
	}
	if o.example {
		fmt.Fprint(stdout, ExampleConfig)
		return exitOK
	}
	if len(rest) != 1 {
		logger.Printf("expected exactly one scene file, got %d", len(rest))
		return exitUsage
	}

	fileOv, cfgPath, err := loadConfig(o.config)
	if err != nil {
		logger.Print(err)
		return exitError
	}
	if cfgPath != "" && o.verbose {
		logger.Printf("using config %s", cfgPath)
	}

	source, err := readScene(rest[0], stdin)
	if err != nil {
		logger.Print(err)
		return exitError
	}

	p := pipeline.New()
	p.Verbose = o.verbose
	if o.verbose {
		p.Logger = logger
	}
	res := p.Run(source, fileOv.Merge(flagOv))

	for _, w := range res.Warnings {
		logger.Printf("warning: %v", w)
	}
	for _, e := range res.Errors {
		logger.Printf("error: %v", e)
	}

	if o.output != "" {
		if err := writeResult(o.output, stdout, res); err != nil {
			logger.Print(err)
			return exitError
		}
	}
	if o.output != "-" {
		printSummary(stdout, res)
	}

	if !res.OK() {
		return exitError
	}
	return exitOK
}

func readScene(path string, stdin io.Reader) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("reading scene: %w", err)
	}
	return string(data), nil
}

// createFile opens the -o target. Tests replace it.
var createFile = func(path string) (io.WriteCloser, error) { return os.Create(path) }

func writeResult(path string, stdout io.Writer, res *pipeline.Result) (err error) {
	w := stdout
	if path != "-" {
		f, cerr := createFile(path)
		if cerr != nil {
			return fmt.Errorf("writing result: %w", cerr)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("writing result: %w", cerr)
			}
		}()
		w = f
	}
	return encodeResult(w, res)
}

func encodeResult(w io.Writer, res *pipeline.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("writing result: %w", err)
	}
	return nil
}

func printSummary(w io.Writer, res *pipeline.Result) {
	if res.Snapshot == nil {
		fmt.Fprintf(w, "%d faces, nothing traced\n", res.Faces)
		return
	}
	st := res.Snapshot.Stats
	fmt.Fprintf(w, "source    %g %g %g\n", res.Source[0], res.Source[1], res.Source[2])
	fmt.Fprintf(w, "faces     %d in %d parts\n", res.Faces, len(res.Parts))
	fmt.Fprintf(w, "beams     %d\n", st.Beams)
	for _, order := range st.Orders() {
		fmt.Fprintf(w, "  order %d %d\n", order, st.ByOrder[order])
	}
	fmt.Fprintf(w, "anomalies %d\n", len(res.Anomalies))
	if res.Snapshot.Truncated {
		fmt.Fprintln(w, "truncated")
	}
}
