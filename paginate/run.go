package paginate

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gosimple/slug"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"folio/archive"
	"folio/common"
	"folio/layout"
	"folio/state"
)

// Run is the action of the paginate command.
func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("paginate")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	if src, err = filepath.Abs(src); err != nil {
		return err
	}

	dst := cmd.Args().Get(1)
	if len(dst) == 0 {
		if dst, err = os.Getwd(); err != nil {
			return fmt.Errorf("unable to get working directory: %w", err)
		}
	}
	if dst, err = filepath.Abs(dst); err != nil {
		return err
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Mailformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	format := env.Cfg.Output.Format
	if f := cmd.String("format"); f != "" {
		if format, err = common.ParseOutputFmt(f); err != nil {
			log.Warn("Unknown output format requested, switching to text", zap.Error(err))
			format = common.OutputFmtText
		}
	}

	env.Overwrite = cmd.Bool("overwrite")
	env.ForceXML = cmd.Bool("xml")
	env.ExtraSheets = cmd.StringSlice("css")
	if cmd.Bool("preview") {
		env.Cfg.Output.Preview.Enable = true
	}

	log.Info("Processing starting", zap.String("source", src), zap.String("destination", dst), zap.Stringer("format", format))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	return process(ctx, src, dst, format, log)
}

// process determines the input type (directory, archive, path inside an
// archive or single document) and handles it accordingly.
func process(ctx context.Context, src, dst string, format common.OutputFmt, log *zap.Logger) error {
	var head, tail string
	for head = src; len(head) != 0; head, tail = filepath.Split(head) {
		if err := ctx.Err(); err != nil {
			return err
		}

		head = strings.TrimSuffix(head, string(filepath.Separator))

		fi, err := os.Stat(head)
		if err != nil {
			// does not exists - probably path in archive
			continue
		}

		if fi.Mode().IsDir() {
			if len(tail) != 0 {
				// directory cannot have tail - it would be simple file
				return fmt.Errorf("input source was not found (%s) => (%s)", head, strings.TrimPrefix(src, head))
			}
			if err := processDir(ctx, head, dst, format, log); err != nil {
				return fmt.Errorf("unable to process directory: %w", err)
			}
			break
		}

		if !fi.Mode().IsRegular() {
			return fmt.Errorf("unexpected path mode for (%s) => (%s)", head, strings.TrimPrefix(src, head))
		}

		isArchive, err := isArchiveFile(head)
		if err != nil {
			return fmt.Errorf("unable to check archive type: %w", err)
		}
		if isArchive {
			// we need to look inside to see if path makes sense
			tail = strings.TrimPrefix(strings.TrimPrefix(src, head), string(filepath.Separator))
			if err := processArchive(ctx, head, filepath.ToSlash(tail), "", dst, format, log); err != nil {
				return fmt.Errorf("unable to process archive: %w", err)
			}
			break
		}

		env := state.EnvFromContext(ctx)
		if (archive.IsDocument(head) || env.ForceXML) && len(tail) == 0 {
			data, err := os.ReadFile(head)
			if err != nil {
				return fmt.Errorf("unable to read document: %w", err)
			}
			s := &Source{Name: head, Data: data, Fetch: DirFetcher(head), XML: env.ForceXML}
			if err := processDocument(ctx, s, filepath.Base(head), dst, format, log); err != nil {
				log.Error("Unable to process file", zap.String("file", head), zap.Error(err))
			}
			break
		}
		return fmt.Errorf("input was not recognized as a document (%s)", head)
	}
	if len(head) == 0 {
		return fmt.Errorf("input source was not found (%s)", src)
	}
	return nil
}

// processDir walks directory tree finding documents and archives and
// processes them.
func processDir(ctx context.Context, dir, dst string, format common.OutputFmt, log *zap.Logger) (err error) {
	count := 0
	defer func() {
		if err == nil && count == 0 {
			log.Debug("Nothing to process", zap.String("dir", dir))
		}
	}()

	env := state.EnvFromContext(ctx)
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err != nil {
			log.Warn("Skipping path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		rel := strings.TrimPrefix(strings.TrimPrefix(path, dir), string(filepath.Separator))

		isArchive, err := isArchiveFile(path)
		if err != nil {
			log.Warn("Skipping file", zap.String("file", path), zap.Error(err))
			return nil
		}
		if isArchive {
			count++
			if err := processArchive(ctx, path, "", filepath.Dir(rel), dst, format, log); err != nil {
				log.Error("Unable to process archive", zap.String("file", path), zap.Error(err))
			}
			return nil
		}
		if !archive.IsDocument(path) {
			log.Debug("Skipping file, not recognized as document or archive", zap.String("file", path))
			return nil
		}

		count++
		data, err := os.ReadFile(path)
		if err != nil {
			log.Error("Unable to process file", zap.String("file", path), zap.Error(err))
			return nil
		}
		s := &Source{Name: path, Data: data, Fetch: DirFetcher(path), XML: env.ForceXML}
		if err := processDocument(ctx, s, rel, dst, format, log); err != nil {
			log.Error("Unable to process file", zap.String("file", path), zap.Error(err))
		}
		return nil
	})
}

// processArchive lays out every document of the bundle under pathIn.
// Resources are served from the bundle.
func processArchive(ctx context.Context, file, pathIn, pathOut, dst string, format common.OutputFmt, log *zap.Logger) (err error) {
	count := 0
	defer func() {
		if err == nil && count == 0 {
			log.Debug("Nothing to process", zap.String("archive", file))
		}
	}()

	b, err := archive.Load(file)
	if err != nil {
		return err
	}
	env := state.EnvFromContext(ctx)
	pathIn = strings.Trim(pathIn, "/")
	for _, name := range b.Documents() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if pathIn != "" && name != pathIn && !strings.HasPrefix(name, pathIn+"/") {
			continue
		}
		count++
		data, err := b.ReadFile(name)
		if err != nil {
			log.Error("Unable to process file in archive", zap.String("archive", file), zap.String("file", name), zap.Error(err))
			continue
		}
		s := &Source{Name: path.Join(filepath.ToSlash(file), name), Data: data, Fetch: b.Fetcher(name), XML: env.ForceXML}
		if err := processDocument(ctx, s, filepath.Join(pathOut, filepath.FromSlash(name)), dst, format, log); err != nil {
			log.Error("Unable to process file in archive", zap.String("archive", file), zap.String("file", name), zap.Error(err))
		}
	}
	if pathIn != "" && count == 0 {
		return fmt.Errorf("no document %q in %s", pathIn, file)
	}
	return nil
}

// processDocument lays out a single document. rel is the document path
// relative to the processed directory or archive, dst the output directory.
func processDocument(ctx context.Context, src *Source, rel, dst string, format common.OutputFmt, log *zap.Logger) (rerr error) {
	env := state.EnvFromContext(ctx)

	var (
		outputName string
		pages      int
	)
	log.Info("Pagination starting", zap.String("from", src.Name))
	defer func(start time.Time) {
		// layout of broken documents must not stop a batch
		if r := recover(); r != nil {
			log.Error("Pagination ended with panic",
				zap.Any("panic", r), zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName), zap.ByteString("stack", debug.Stack()))
			rerr = fmt.Errorf("pagination panic: %v", r)
		} else if rerr == nil {
			log.Info("Pagination completed", zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName), zap.Int("pages", pages))
		}
	}(time.Now())

	res, err := Layout(src, OptionsFromConfig(env.Cfg, env.ExtraSheets), log)
	if err != nil {
		return err
	}
	pages = len(res.Pages)

	outputName = buildOutputPath(res, rel, dst, format, env)
	if _, err := os.Stat(outputName); err == nil {
		if !env.Overwrite {
			return fmt.Errorf("output file already exists: %s", outputName)
		}
		log.Warn("Overwriting existing file", zap.String("file", outputName))
		if err = os.Remove(outputName); err != nil {
			return err
		}
	} else if !os.IsNotExist(err) {
		return err
	} else if err := os.MkdirAll(filepath.Dir(outputName), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}

	data, err := Encode(res, rel, format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outputName, data, 0644); err != nil {
		return fmt.Errorf("unable to write output: %w", err)
	}

	if env.Cfg.Output.Preview.Enable {
		for _, p := range res.Pages {
			img, err := RenderPage(res, p, env.Cfg.Output.Preview.Scale, log)
			if err != nil {
				log.Warn("Unable to render preview", zap.Int("page", p.Index+1), zap.Error(err))
				continue
			}
			if err := SavePage(img, previewPath(outputName, p.Index)); err != nil {
				log.Warn("Unable to render preview", zap.Int("page", p.Index+1), zap.Error(err))
			}
		}
	}

	// Store pagination result for debugging
	if env.Rpt != nil {
		id := slug.Make(rel)
		env.Rpt.Store(fmt.Sprintf("result-%s%s", id, format.Ext()), outputName)
		if format != common.OutputFmtText {
			env.Rpt.StoreData(fmt.Sprintf("pages-%s.txt", id), []byte(layout.Dump(res.Pages)))
		}
		for i, s := range res.Sheets {
			env.Rpt.StoreData(fmt.Sprintf("sheets-%s/%02d-%s.css", id, i+1, slug.Make(s.Source)), []byte(s.Sheet.String()))
		}
	}
	return nil
}

// Encode serializes the pages of res in the requested format.
func Encode(res *Result, source string, format common.OutputFmt) ([]byte, error) {
	switch format {
	case common.OutputFmtIon:
		return EncodeIon(NewExport(res, source))
	case common.OutputFmtSqlite:
		return EncodeSqlite(NewExport(res, source))
	default:
		return []byte(layout.Dump(res.Pages)), nil
	}
}

// Styles is the action of the styles command. It prints computed styles of
// a document.
func Styles(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("styles")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input document has been specified")
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("unable to read document: %w", err)
	}
	s := &Source{Name: src, Data: data, Fetch: DirFetcher(src), XML: cmd.Bool("xml")}
	res, err := Cascade(s, OptionsFromConfig(env.Cfg, cmd.StringSlice("css")), log)
	if err != nil {
		return err
	}
	out := DumpStyles(res)

	dst := cmd.Args().Get(1)
	if len(dst) == 0 {
		w := cmd.Root().Writer
		if w == nil {
			w = os.Stdout
		}
		_, err = fmt.Fprint(w, out)
		return err
	}
	if _, err := os.Stat(dst); err == nil && !cmd.Bool("overwrite") {
		return fmt.Errorf("output file already exists: %s", dst)
	}
	if err := os.WriteFile(dst, []byte(out), 0644); err != nil {
		return fmt.Errorf("unable to write styles: %w", err)
	}
	env.Rpt.StoreData("styles.txt", []byte(out))
	return nil
}
