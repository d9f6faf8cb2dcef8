package commands

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/urfave/cli/v3"
)

// sourcePatterns match the delimited files tabula can open, plain and
// compressed.
var sourcePatterns = []string{
	"*.{csv,tsv,txt,psv}",
	"*.{csv,tsv,txt,psv}.{gz,gzip,bz2,zst,zstd,xz}",
}

// SourceFileCompleter returns a ShellCompleteFunc that suggests delimited
// files as positional completions. Set this as the ShellComplete field on any
// cli.Command that takes a <file> argument.
//
// When the user's last typed argument starts with "-", it falls back to the
// default flag completion behavior.
func SourceFileCompleter() cli.ShellCompleteFunc {
	return func(ctx context.Context, cmd *cli.Command) {
		var last string
		if args := cmd.Args(); args.Present() {
			last = args.Slice()[args.Len()-1]
			if strings.HasPrefix(last, "-") {
				cli.DefaultCompleteWithFlags(ctx, cmd)
				return
			}
		}

		dir := "."
		if i := strings.LastIndex(last, "/"); i >= 0 {
			dir = last[:i+1]
		}

		w := cmd.Root().Writer
		for _, name := range completeSources(os.DirFS(dir), dir) {
			_, _ = fmt.Fprintln(w, name)
		}
	}
}

// completeSources lists directories and source files directly under fsys.
// Names are prefixed with dir unless dir is the current directory.
func completeSources(fsys fs.FS, dir string) []string {
	prefix := dir
	if prefix == "." {
		prefix = ""
	}

	var out []string

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil
	}
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			out = append(out, path.Join(prefix, e.Name())+"/")
		}
	}

	for _, pattern := range sourcePatterns {
		files, err := doublestar.Glob(fsys, pattern)
		if err != nil {
			continue
		}
		for _, f := range files {
			out = append(out, prefix+f)
		}
	}

	return out
}
