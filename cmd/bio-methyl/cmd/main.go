package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/grailbio/base/cmdutil"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/epiallele/extract"
	"v.io/x/lib/cmdline"
)

// summarize prints one line per alignment file of res to w.
func summarize(w io.Writer, res *extract.Result) {
	for _, o := range res.Outcomes {
		if !o.OK() {
			fmt.Fprintf(w, "%s\tFAILED\t%v\n", o.Path, o.Err)
			continue
		}
		fmt.Fprintf(w, "%s\tOK\treads=%d\tskipped=%d\n", o.Path, o.Sample.NumReads(), o.Sample.SkippedLines())
	}
}

func runExtract(ctx context.Context, w io.Writer, refPath string, alignPaths []string, opts processOpts) error {
	res, err := process(ctx, refPath, alignPaths, opts.outDir, "", opts)
	if res != nil {
		summarize(w, res)
	}
	if err != nil {
		return err
	}
	if n := len(res.Failed()); n > 0 {
		return errors.E(fmt.Sprintf("%d of %d alignment files failed", n, len(res.Outcomes)))
	}
	return nil
}

func newCmdExtract() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "extract",
		Short:    "Extract methylation patterns of alignment files against one reference",
		ArgsName: "alignment...",
	}
	var opts processOpts
	opts.register(&cmd.Flags)
	refPath := cmd.Flags.String("fasta", "", "Reference FASTA path (required)")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if *refPath == "" {
			return env.UsageErrorf("-fasta is required")
		}
		if len(argv) == 0 {
			return env.UsageErrorf("extract takes at least one alignment path")
		}
		return runExtract(vcontext.Background(), env.Stdout, *refPath, argv, opts)
	})
	return cmd
}

func runBatch(ctx context.Context, w io.Writer, dir string, opts processOpts) error {
	pairs, err := extract.FindPairs(ctx, dir)
	if err != nil {
		return err
	}
	if len(pairs) == 0 {
		return errors.E(errors.NotExist, fmt.Sprintf("%s: no reference/alignment pairs found", dir))
	}
	var failed int
	for _, p := range pairs {
		log.Printf("%s: %s with %d alignment files", p.Region, p.Reference, len(p.Alignments))
		res, err := process(ctx, p.Reference, p.Alignments, file.Join(opts.outDir, p.Region), p.Region, opts)
		if res != nil {
			summarize(w, res)
		}
		switch {
		case err != nil:
			log.Error.Printf("%s: %v", p.Region, err)
			fmt.Fprintf(w, "%s\tFAILED\t%v\n", p.Region, err)
			failed++
		case len(res.Failed()) > 0:
			fmt.Fprintf(w, "%s\tPARTIAL\t%d of %d alignment files failed\n", p.Region, len(res.Failed()), len(res.Outcomes))
			failed++
		default:
			fmt.Fprintf(w, "%s\tOK\n", p.Region)
		}
	}
	log.Printf("%d of %d regions processed successfully", len(pairs)-failed, len(pairs))
	if failed > 0 {
		return errors.E(fmt.Sprintf("%d of %d regions failed", failed, len(pairs)))
	}
	return nil
}

func newCmdBatch() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "batch",
		Short:    "Pair references with alignment files by RegionN token in a directory and extract each pair",
		ArgsName: "dir",
	}
	var opts processOpts
	opts.register(&cmd.Flags)
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 1 {
			return env.UsageErrorf("batch takes one directory argument, but got %v", argv)
		}
		return runBatch(vcontext.Background(), env.Stdout, argv[0], opts)
	})
	return cmd
}

// Run is the bio-methyl entry point.
func Run() {
	shutdown := grail.Init()
	cmdline.HideGlobalFlagsExcept()
	env := cmdline.EnvFromOS()
	err := cmdline.ParseAndRun(&cmdline.Command{
		Name:     "bio-methyl",
		Short:    "Per-read CpG methylation analysis of bisulfite sequencing alignments",
		LookPath: false,
		Children: []*cmdline.Command{
			newCmdExtract(),
			newCmdBatch(),
		},
	}, env, os.Args[1:])
	code := cmdline.ExitCode(err, env.Stderr)
	shutdown()
	os.Exit(code)
}
