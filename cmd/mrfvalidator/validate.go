package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/reoring/mrfvalidator"
	"github.com/reoring/mrfvalidator/diag"
	"github.com/reoring/mrfvalidator/extract"
	"github.com/reoring/mrfvalidator/i18n"
	"github.com/reoring/mrfvalidator/profile"
	"github.com/reoring/mrfvalidator/schema"
)

const (
	defaultOutputDir = "/output"
	outputFile       = "output.txt"
	errorsFile       = "errors.json"
	// exitSetup mirrors the status the tool used for unusable paths.
	exitSetup = 255
)

// errorTreeFormat matches the four-space layout of saved error trees.
var errorTreeFormat = extract.WriterOptions{Indent: "    "}

type validateFlags struct {
	bufferSize    int
	schemaName    string
	failFast      bool
	profilesFile  string
	lang          string
	driver        string
	maxDepth      int
	maxBytes      int64
	duplicateKeys string
	assertFormat  bool
}

func newValidateCmd(g *globalFlags) *cobra.Command {
	f := &validateFlags{}
	cmd := &cobra.Command{
		Use:   "validate <schema-path> <data-path> [output-path]",
		Short: "Validates a data file against a schema and extracts profile sections",
		Long: "Validates the data file against the JSON Schema (JSON or YAML) and writes " +
			"output.txt, errors.json and the profile's extracted files into output-path " +
			"(default " + defaultOutputDir + "). An empty output-path prints to the terminal.",
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := defaultOutputDir
			if len(args) == 3 {
				out = args[2]
			}
			return runValidate(cmd, g, f, args[0], args[1], out)
		},
	}
	fl := cmd.Flags()
	fl.IntVarP(&f.bufferSize, "buffer-size", "b", mrfvalidator.DefaultBufferSize, "buffer size in bytes")
	fl.StringVarP(&f.schemaName, "schema-name", "s", "", "document kind selecting the extraction profile")
	fl.BoolVarP(&f.failFast, "fail-fast", "f", false, "stop validating after the first error")
	fl.StringVar(&f.profilesFile, "profiles", "", "YAML file adding or replacing extraction profiles")
	fl.StringVar(&f.lang, "lang", "en", "language of diagnostic messages")
	fl.StringVar(&f.driver, "driver", "json", "JSON tokenizer: json, or gojson for trusted well-formed input")
	fl.IntVar(&f.maxDepth, "max-depth", 0, "maximum nesting depth (0 = unlimited)")
	fl.Int64Var(&f.maxBytes, "max-bytes", 0, "maximum input size in bytes (0 = unlimited)")
	fl.StringVar(&f.duplicateKeys, "duplicate-keys", "ignore", "duplicate key handling: ignore, warn or error")
	fl.BoolVar(&f.assertFormat, "assert-format", false, "treat the format keyword as an assertion")
	return cmd
}

// outputs are the report destinations of one run.
type outputs struct {
	dir    string
	out    io.Writer
	errOut io.Writer
	tree   io.Writer
	files  []*os.File
}

func openOutputs(cmd *cobra.Command, dir string) (*outputs, error) {
	if dir == "" {
		return &outputs{dir: ".", out: cmd.OutOrStdout(), errOut: cmd.ErrOrStderr(), tree: cmd.ErrOrStderr()}, nil
	}
	st, err := os.Stat(dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	case !st.IsDir():
		return nil, fmt.Errorf("could not use directory '%s' for output: path already exists and is not a directory", dir)
	}
	o := &outputs{dir: dir}
	txt, err := os.Create(filepath.Join(dir, outputFile))
	if err != nil {
		return nil, fmt.Errorf("could not open output file in '%s' for output: %w", dir, err)
	}
	o.files = append(o.files, txt)
	o.out, o.errOut = txt, txt
	tree, err := os.Create(filepath.Join(dir, errorsFile))
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Could not create error json file. JSON errors will be written to main output file.\n")
		o.tree = txt
		return o, nil
	}
	o.files = append(o.files, tree)
	o.tree = tree
	return o, nil
}

func (o *outputs) Close() error {
	var errs []error
	for _, f := range o.files {
		errs = append(errs, f.Close())
	}
	return errors.Join(errs...)
}

func runValidate(cmd *cobra.Command, g *globalFlags, f *validateFlags, schemaPath, dataPath, outDir string) (err error) {
	log, err := g.logger(cmd.ErrOrStderr())
	if err != nil {
		return exitWith(1, err)
	}
	opt, err := f.options()
	if err != nil {
		return exitWith(1, err)
	}
	opt.Logger = log

	o, err := openOutputs(cmd, outDir)
	if err != nil {
		return exitWith(exitSetup, err)
	}
	defer func() { err = errors.Join(err, o.Close()) }()

	v, err := schema.CompileFile(schemaPath, schema.Options{
		FailFast:     f.failFast,
		AssertFormat: f.assertFormat,
		Language:     i18n.Match(f.lang),
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintf(o.out, "Schema file '%s' not found\n", schemaPath)
			return exitWith(exitSetup, nil)
		}
		fmt.Fprintf(o.errOut, "Schema file '%s' is not a valid schema\n", schemaPath)
		fmt.Fprintf(o.errOut, "Error: %v\n", err)
		return exitWith(1, nil)
	}

	if f.schemaName != "" {
		p, err := f.lookupProfile()
		if err != nil {
			fmt.Fprintf(o.errOut, "%v\n", err)
			return exitWith(1, nil)
		}
		opt.Profile = &p
		opt.OutputDir = o.dir
	}

	in, err := mrfvalidator.OpenInput(dataPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintf(o.out, "JSON file '%s' not found\n", dataPath)
			return exitWith(exitSetup, nil)
		}
		return exitWith(1, err)
	}
	defer in.Close()

	res, err := mrfvalidator.Validate(cmd.Context(), v, in, opt)
	if res != nil {
		tr := i18n.For(f.lang)
		for _, it := range res.Issues {
			fmt.Fprintf(o.errOut, "Warning: %s\n", it.Localize(tr))
		}
	}
	switch {
	case errors.Is(err, mrfvalidator.ErrMalformedDocument), errors.Is(err, mrfvalidator.ErrLimitExceeded):
		fmt.Fprintf(o.errOut, "Input is not a valid JSON\n")
		fmt.Fprintf(o.errOut, "Error: %v\n", inputError(err, f.lang))
		return exitWith(1, nil)
	case err != nil:
		return exitWith(1, err)
	}

	if res.Valid {
		fmt.Fprintf(o.out, "Input JSON is valid.\n")
		return nil
	}
	if err := report(o, res, i18n.Catalog(f.lang)); err != nil {
		return exitWith(1, err)
	}
	return exitWith(1, nil)
}

// report writes the verdict, the top-level summary, the raw error tree and the
// flattened diagnostics.
func report(o *outputs, res *mrfvalidator.Result, cat diag.Catalog) error {
	s := res.Outcome.Summary
	fmt.Fprintf(o.out, "Input JSON is invalid.\n")
	fmt.Fprintf(o.errOut, "Invalid schema: %s\n", s.SchemaPointer)
	fmt.Fprintf(o.errOut, "Invalid keyword: %s\n", s.Keyword)
	fmt.Fprintf(o.errOut, "Invalid code: %d\n", s.Code)
	fmt.Fprintf(o.errOut, "Invalid message: %s\n", s.Message)
	fmt.Fprintf(o.errOut, "Invalid document: %s\n", s.DocumentPointer)
	if err := diag.WriteTree(o.tree, res.Outcome.Tree, errorTreeFormat); err != nil {
		return err
	}
	return diag.WriteText(o.out, res.Diagnostics(cat))
}

func inputError(err error, lang string) string {
	if iss, ok := mrfvalidator.AsIssues(err); ok && len(iss) > 0 {
		return iss[0].Localize(i18n.For(lang))
	}
	return err.Error()
}

func (f *validateFlags) options() (mrfvalidator.Options, error) {
	drv, err := mrfvalidator.DriverByName(f.driver)
	if err != nil {
		return mrfvalidator.Options{}, err
	}
	dup, err := mrfvalidator.ParseSeverity(f.duplicateKeys)
	if err != nil {
		return mrfvalidator.Options{}, err
	}
	return mrfvalidator.Options{
		Driver:     drv,
		BufferSize: f.bufferSize,
		Strictness: mrfvalidator.Strictness{OnDuplicateKey: dup},
		Limits:     mrfvalidator.Limits{MaxDepth: f.maxDepth, MaxBytes: f.maxBytes},
		FailFast:   f.failFast,
		Writer:     extract.DefaultWriterOptions,
	}, nil
}

func (f *validateFlags) lookupProfile() (profile.Profile, error) {
	set, err := loadProfiles(f.profilesFile)
	if err != nil {
		return profile.Profile{}, err
	}
	return set.Lookup(f.schemaName)
}

func loadProfiles(path string) (*profile.Set, error) {
	set := profile.Builtin()
	if path == "" {
		return set, nil
	}
	extra, err := profile.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return set.Merge(extra), nil
}
