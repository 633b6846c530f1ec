// Command zipflate builds a ZIP archive from one or more input files using
// a multi-threaded DEFLATE engine.
//
// Usage:
//
//	zipflate [-m store|deflate] [-l 0..3] [-t N] [--deflate_static] [-v] <target.zip> <source...>
package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/deepteams/zipflate"
	"github.com/deepteams/zipflate/internal/huffman"
	"github.com/deepteams/zipflate/internal/lz77"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "zipflate: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("zipflate", flag.ContinueOnError)
	method := fs.String("m", "deflate", "compression method: store or deflate")
	level := fs.Int("l", 2, "match-finder effort level 0-3")
	workers := fs.Int("t", 0, "worker count (0 = GOMAXPROCS)")
	forceFixed := fs.Bool("deflate_static", false, "force static Huffman tables, skip dynamic trees")
	useXXHash := fs.Bool("xxhash", false, "use xxhash instead of the built-in 3-byte hash in the match finder")
	verbose := fs.Bool("v", false, "print progress to stderr")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: zipflate [-m store|deflate] [-l 0..3] [-t N] [--deflate_static] [-v] <target.zip> <source...>\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 2 {
		fs.Usage()
		return fmt.Errorf("missing target archive or source files")
	}

	opts, err := parseOptions(*method, *level, *workers, *forceFixed, *useXXHash)
	if err != nil {
		return err
	}

	targetPath := fs.Arg(0)
	sourcePaths := fs.Args()[1:]

	sources, totalBytes, err := loadSources(sourcePaths)
	if err != nil {
		return err
	}

	var reporter *progressReporter
	if *verbose {
		fmt.Fprintln(os.Stderr, huffman.CapabilityLine())
		reporter = newProgressReporter(os.Stderr, totalBytes)
		opts.OnProgress = reporter.update
		defer reporter.finish()
	}

	var archive bytes.Buffer
	if err := zipflate.BuildArchive(&archive, sources, opts); err != nil {
		return err
	}
	if err := os.WriteFile(targetPath, archive.Bytes(), 0666); err != nil {
		return fmt.Errorf("writing %q: %w", targetPath, err)
	}
	if reporter != nil {
		reporter.done()
	}
	return nil
}

func parseOptions(method string, level, workers int, forceFixed, useXXHash bool) (zipflate.Options, error) {
	opts := zipflate.DefaultOptions()
	switch method {
	case "store":
		opts.Method = zipflate.MethodStore
	case "deflate":
		opts.Method = zipflate.MethodDeflate
	default:
		return opts, fmt.Errorf("invalid -m value %q: want store or deflate", method)
	}
	if level < int(lz77.Level0) || level > int(lz77.Level3) {
		return opts, fmt.Errorf("invalid -l value %d: want 0-3", level)
	}
	opts.Level = lz77.Level(level)
	if workers < 0 {
		return opts, fmt.Errorf("invalid -t value %d: want >= 0", workers)
	}
	opts.Workers = workers
	opts.ForceFixed = forceFixed
	opts.UseXXHash = useXXHash
	return opts, nil
}

// loadSources reads each path's content, recording it (and the total byte
// count across all sources, used to size the progress bar) as a
// zipflate.FileSource named by its path exactly as given, with separators
// converted to forward slashes. The path is not rewritten relative to the
// current working directory, so an absolute argument yields an absolute
// entry name.
func loadSources(paths []string) ([]zipflate.FileSource, uint64, error) {
	sources := make([]zipflate.FileSource, 0, len(paths))
	var totalBytes uint64
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, 0, fmt.Errorf("reading %q: %w", p, err)
		}
		info, err := os.Stat(p)
		if err != nil {
			return nil, 0, fmt.Errorf("stat %q: %w", p, err)
		}
		name := filepath.ToSlash(p)
		sources = append(sources, zipflate.FileSource{
			Name:    name,
			Data:    data,
			ModTime: info.ModTime(),
			Mode:    info.Mode(),
		})
		totalBytes += uint64(len(data))
	}
	return sources, totalBytes, nil
}
