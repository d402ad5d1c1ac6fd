package paginate

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"
	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"folio/common"
	"folio/config"
	"folio/state"
)

// Values is a struct that holds variables we make available for template
// expansion.
type Values struct {
	Context string
	Source  string
	Title   string
	Lang    string
	Pages   int
	Format  string
	RunID   string
}

func expandTemplate(name config.TemplateFieldName, field string, values Values) (string, error) {
	tmpl, err := template.New(string(name)).Funcs(sprig.FuncMap()).Parse(field)
	if err != nil {
		return "", fmt.Errorf("unable to parse template field %s: %w", name, err)
	}
	values.Context = string(name)

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, values); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

// buildOutputPath returns the output file path for a document. src is the
// document path relative to the processed directory or archive, its
// directories are kept under dst. The file name comes from the configured
// template and falls back to the source name.
func buildOutputPath(res *Result, src, dst string, format common.OutputFmt, env *state.LocalEnv) string {
	outDir := filepath.Join(dst, filepath.Dir(src))
	defaultFile := buildDefaultFileName(src, env) + format.Ext()

	tmpl := env.Cfg.Output.NameTemplate
	if tmpl == "" {
		return filepath.Join(outDir, defaultFile)
	}
	expanded, err := expandTemplate(config.NameTemplateFieldName, tmpl, Values{
		Source: strings.TrimSuffix(filepath.Base(src), filepath.Ext(src)),
		Title:  res.Title,
		Lang:   res.Lang,
		Pages:  len(res.Pages),
		Format: format.String(),
		RunID:  env.RunID.String(),
	})
	if err != nil {
		env.Log.Warn("Unable to prepare output filename", zap.Error(err))
		return filepath.Join(outDir, defaultFile)
	}
	if expanded == "" {
		return filepath.Join(outDir, defaultFile)
	}
	return assemblePathWithSubdirs(outDir, filepath.FromSlash(expanded), format.Ext(), env)
}

func buildDefaultFileName(src string, env *state.LocalEnv) string {
	baseName := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	if env.Cfg.Output.FileNameTransliterate {
		baseName = slug.Make(baseName)
	}
	return config.CleanFileName(baseName)
}

// assemblePathWithSubdirs takes an expanded template name (which may contain
// path separators for subdirectories) and assembles it into a full output
// path, cleaning and transliterating segments as needed.
func assemblePathWithSubdirs(outDir, expandedName, ext string, env *state.LocalEnv) string {
	pathSegments := splitAndCleanPath(expandedName)
	if len(pathSegments) == 0 {
		return outDir
	}

	dirParts := make([]string, 0, len(pathSegments)+1)
	dirParts = append(dirParts, outDir)
	for _, segment := range pathSegments[:len(pathSegments)-1] {
		dirParts = append(dirParts, cleanPathSegment(segment, env))
	}
	dirParts = append(dirParts, cleanPathSegment(pathSegments[len(pathSegments)-1], env)+ext)
	return filepath.Join(dirParts...)
}

func splitAndCleanPath(path string) []string {
	path = strings.TrimSuffix(path, string(os.PathSeparator))
	segments := make([]string, 0, 8)

	for head, tail := filepath.Split(path); tail != ""; head, tail = filepath.Split(head) {
		segments = slices.Insert(segments, 0, tail)
		head = strings.TrimSuffix(head, string(os.PathSeparator))
		if head == "" {
			break
		}
	}
	return segments
}

func cleanPathSegment(segment string, env *state.LocalEnv) string {
	if env.Cfg.Output.FileNameTransliterate {
		segment = slug.Make(segment)
	}
	return config.CleanFileName(segment)
}

// previewPath returns the name of the preview image of page index next to
// the output file.
func previewPath(output string, index int) string {
	base := strings.TrimSuffix(output, filepath.Ext(output))
	return fmt.Sprintf("%s-page-%03d.png", base, index+1)
}
